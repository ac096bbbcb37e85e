// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboardui

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed help.md
var helpSource string

var (
	helpParser     goldmark.Markdown
	helpParserOnce sync.Once
)

// renderHelp renders the embedded help text for a terminal of the
// given width.
func renderHelp(model Model, width int) string {
	helpParserOnce.Do(func() { helpParser = goldmark.New() })
	source := []byte(helpSource)
	document := helpParser.Parser().Parse(text.NewReader(source))

	renderer := &helpRenderer{model: model, source: source, width: max(20, width)}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// helpRenderer walks a goldmark AST and writes styled terminal text.
// It covers the block and inline kinds the help text uses.
type helpRenderer struct {
	model  Model
	source []byte
	width  int

	output strings.Builder
	inline strings.Builder
	bold   int
}

func (renderer *helpRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	theme := renderer.model.theme
	switch node := node.(type) {
	case *ast.Heading:
		if entering {
			renderer.inline.Reset()
			break
		}
		heading := renderer.model.style(theme.HeaderForeground).Bold(true).Render(renderer.inline.String())
		renderer.output.WriteString(heading + "\n\n")

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			renderer.inline.Reset()
			break
		}
		_, inList := node.Parent().(*ast.ListItem)
		prefix := ""
		if inList {
			prefix = "  • "
		}
		wrapped := ansi.Wordwrap(renderer.inline.String(), renderer.width-len([]rune(prefix)), "")
		for index, line := range strings.Split(wrapped, "\n") {
			if index > 0 && inList {
				line = "    " + line
			} else {
				line = prefix + line
			}
			renderer.output.WriteString(line + "\n")
		}
		if !inList {
			renderer.output.WriteString("\n")
		}

	case *ast.List:
		if !entering {
			renderer.output.WriteString("\n")
		}

	case *ast.FencedCodeBlock:
		if entering {
			renderer.renderCode(node)
			return ast.WalkSkipChildren, nil
		}

	case *ast.Text:
		if entering {
			renderer.writeText(string(node.Segment.Value(renderer.source)))
			if node.SoftLineBreak() {
				renderer.inline.WriteString(" ")
			}
		}

	case *ast.Emphasis:
		if node.Level == 2 {
			if entering {
				renderer.bold++
			} else {
				renderer.bold--
			}
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if segment, ok := child.(*ast.Text); ok {
					code.Write(segment.Segment.Value(renderer.source))
				}
			}
			renderer.inline.WriteString(renderer.model.style(theme.HeaderForeground).Render(code.String()))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (renderer *helpRenderer) writeText(content string) {
	style := renderer.model.style(renderer.model.theme.NormalText)
	if renderer.bold > 0 {
		style = renderer.model.style(renderer.model.theme.StatusColor(content)).Bold(true)
	}
	renderer.inline.WriteString(style.Render(content))
}

// renderCode highlights a fenced block with Chroma, falling back to
// faint text for unknown languages.
func (renderer *helpRenderer) renderCode(node *ast.FencedCodeBlock) {
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(renderer.source))
	}

	var highlighted strings.Builder
	language := string(node.Language(renderer.source))
	if err := quick.Highlight(&highlighted, code.String(), language, "terminal256", "monokai"); err != nil {
		highlighted.Reset()
		highlighted.WriteString(renderer.model.style(renderer.model.theme.FaintText).Render(code.String()))
	}
	for _, line := range strings.Split(strings.TrimRight(highlighted.String(), "\n"), "\n") {
		renderer.output.WriteString("    " + line + "\n")
	}
	renderer.output.WriteString("\n")
}
