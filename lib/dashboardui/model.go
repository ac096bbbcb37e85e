// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboardui

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/orchdash/orchdash/lib/channel"
	"github.com/orchdash/orchdash/lib/dashboard"
	"github.com/orchdash/orchdash/lib/surface"
	"github.com/orchdash/orchdash/lib/vtree"
)

// documentReadyMsg reports that the mailbox holds a document.
type documentReadyMsg struct{}

// ConnStateMsg reports a change of the channel's connection state.
type ConnStateMsg struct {
	State channel.ConnState
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	app      *dashboard.App
	mailbox  *dashboard.Mailbox
	endpoint string
	logger   *slog.Logger

	keys     KeyMap
	theme    Theme
	renderer *lipgloss.Renderer

	width  int
	height int
	ready  bool

	// cursor is the selected row; selectedKey is that row's key, used
	// to keep the selection on the same component across renders.
	cursor      int
	selectedKey string

	connState channel.ConnState

	filter   Filter
	showHelp bool

	notice    *logRecordMsg
	noticeSeq int
}

// NewModel creates a model over app. Documents put in mailbox are
// applied on the UI goroutine. endpoint is shown in the title line.
func NewModel(app *dashboard.App, mailbox *dashboard.Mailbox, endpoint string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	// The output is always a terminal, so skip profile detection,
	// which yields no color when stdout is not a TTY at start-up.
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)
	return Model{
		app:       app,
		mailbox:   mailbox,
		endpoint:  endpoint,
		logger:    logger,
		keys:      DefaultKeyMap,
		theme:     DefaultTheme,
		renderer:  renderer,
		connState: channel.StateConnecting,
		filter:    newFilter(),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return listenForDocument(model.mailbox)
}

// listenForDocument returns a tea.Cmd that blocks until the mailbox
// is signalled.
func listenForDocument(mailbox *dashboard.Mailbox) tea.Cmd {
	return func() tea.Msg {
		<-mailbox.Ready()
		return documentReadyMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true

	case documentReadyMsg:
		if document, ok := model.mailbox.Take(); ok {
			model.app.ApplyState(document)
			model.reselect()
		}
		return model, listenForDocument(model.mailbox)

	case ConnStateMsg:
		model.connState = message.State

	case logRecordMsg:
		model.noticeSeq++
		model.notice = &message
		seq := model.noticeSeq
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{Seq: seq}
		})

	case logRecordFadeMsg:
		if message.Seq == model.noticeSeq {
			model.notice = nil
		}
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.filter.Active {
		return model.handleFilterKey(message)
	}
	if model.showHelp {
		if key.Matches(message, model.keys.Quit) {
			return model, tea.Quit
		}
		model.showHelp = false
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Help):
		model.showHelp = true

	case key.Matches(message, model.keys.FilterActivate):
		model.filter.Active = true

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.reselect()
		}

	case key.Matches(message, model.keys.Up):
		model.moveCursor(model.cursor - 1)

	case key.Matches(message, model.keys.Down):
		model.moveCursor(model.cursor + 1)

	case key.Matches(message, model.keys.Home):
		model.moveCursor(0)

	case key.Matches(message, model.keys.End):
		model.moveCursor(len(model.visible()) - 1)

	case key.Matches(message, model.keys.Stop):
		model.activate(dashboard.ControlStop, surface.Event{Type: vtree.Click})

	case key.Matches(message, model.keys.Start):
		model.activate(dashboard.ControlStart, surface.Event{Type: vtree.Click})

	case key.Matches(message, model.keys.Revive):
		row, ok := model.selectedRow()
		if !ok {
			return model, nil
		}
		element, err := model.app.Surface().Lookup(dashboard.ControlPath(row, dashboard.ControlRevive))
		if err != nil {
			return model, nil
		}
		model.activate(dashboard.ControlRevive, surface.Event{
			Type:    vtree.Change,
			Checked: !element.BoolProp("checked"),
		})
	}
	return model, nil
}

// handleFilterKey routes input to the filter query while it has
// focus.
func (model Model) handleFilterKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.filter.Clear()
	case tea.KeyEnter:
		model.filter.Active = false
	case tea.KeyBackspace:
		model.filter.HandleBackspace()
	case tea.KeySpace:
		model.filter.HandleRune(' ')
	case tea.KeyRunes:
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
	}
	model.reselect()
	return model, nil
}

// activate delivers event to a control of the selected row. Disabled
// and missing controls are ignored.
func (model *Model) activate(control dashboard.Control, event surface.Event) {
	row, ok := model.selectedRow()
	if !ok {
		return
	}
	if _, err := model.app.Activate(dashboard.ControlPath(row, control), event); err != nil {
		model.logger.Warn("activate failed", "row", row, "error", err)
	}
}

// selectedRow returns the surface row index under the cursor.
func (model *Model) selectedRow() (int, bool) {
	visible := model.visible()
	if model.cursor >= len(visible) {
		return 0, false
	}
	return visible[model.cursor], true
}

func (model *Model) moveCursor(target int) {
	visible := model.visible()
	if len(visible) == 0 {
		model.cursor, model.selectedKey = 0, ""
		return
	}
	model.cursor = max(0, min(target, len(visible)-1))
	model.selectedKey = model.rows()[visible[model.cursor]].Key()
}

// reselect moves the cursor to the row that was selected before the
// last change, or clamps it when that row is gone or filtered out.
func (model *Model) reselect() {
	rows := model.rows()
	for index, row := range model.visible() {
		if rows[row].Key() == model.selectedKey {
			model.cursor = index
			return
		}
	}
	model.moveCursor(model.cursor)
}

// rows returns the live table rows, nil before the first snapshot.
func (model Model) rows() []*surface.Element {
	body, err := model.app.Surface().Lookup(dashboard.RowsPath)
	if err != nil {
		return nil
	}
	rows := make([]*surface.Element, body.Len())
	for index := range rows {
		rows[index] = body.Child(index)
	}
	return rows
}

// visible returns the indices of the rows that pass the filter.
func (model *Model) visible() []int {
	rows := model.rows()
	indices := make([]int, 0, len(rows))
	for index, row := range rows {
		if model.filter.Matches(row.Child(0).TextContent()) {
			indices = append(indices, index)
		}
	}
	return indices
}

// Selected returns the cursor position among the visible rows.
func (model Model) Selected() int { return model.cursor }

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	lines := []string{model.renderTitle()}
	if filterLine := model.filter.View(model); filterLine != "" {
		lines = append(lines, filterLine)
	}
	switch {
	case model.showHelp:
		lines = append(lines, "")
		lines = append(lines, strings.Split(renderHelp(model, model.width), "\n")...)
	case model.app.Document() == nil:
		lines = append(lines, "", model.style(model.theme.FaintText).Render("Waiting for state..."))
	default:
		lines = append(lines, model.renderTable(len(lines))...)
	}

	// Crop or pad so the status bar sits on the last line.
	if len(lines) > model.height-1 {
		lines = lines[:max(0, model.height-1)]
	}
	for len(lines) < model.height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, model.renderStatusBar())

	for index, line := range lines {
		lines[index] = ansi.Truncate(line, model.width, "")
	}
	return strings.Join(lines, "\n")
}

func (model Model) style(color lipgloss.Color) lipgloss.Style {
	return model.renderer.NewStyle().Foreground(color)
}

func (model Model) renderTitle() string {
	title := model.style(model.theme.HeaderForeground).Bold(true).Render("orchdash")
	state := model.style(model.theme.ConnStateColor(model.connState)).Render("● " + string(model.connState))
	endpoint := model.style(model.theme.FaintText).Render(model.endpoint)
	return title + "  " + state + "  " + endpoint
}

// cells are the display strings of one row, in column order.
type cells struct {
	name   string
	delay  string
	revive string
	status string
	stop   bool
	start  bool
}

func (model Model) readRow(row int, element *surface.Element) cells {
	lookup := func(control dashboard.Control) *surface.Element {
		found, err := model.app.Surface().Lookup(dashboard.ControlPath(row, control))
		if err != nil {
			return nil
		}
		return found
	}
	result := cells{
		name:   element.Child(0).TextContent(),
		delay:  element.Child(1).TextContent(),
		status: element.Child(3).TextContent(),
		revive: "[ ]",
	}
	if revive := lookup(dashboard.ControlRevive); revive != nil && revive.BoolProp("checked") {
		result.revive = "[x]"
	}
	if stop := lookup(dashboard.ControlStop); stop != nil {
		result.stop = !stop.Disabled()
	}
	if start := lookup(dashboard.ControlStart); start != nil {
		result.start = !start.Disabled()
	}
	return result
}

// renderTable renders the header and the visible rows. used is the
// number of lines already taken above the table.
func (model Model) renderTable(used int) []string {
	rows := model.rows()
	visible := model.visible()
	data := make([]cells, len(visible))
	for index, row := range visible {
		data[index] = model.readRow(row, rows[row])
	}

	titles := make([]string, len(dashboard.Columns))
	for index, column := range dashboard.Columns {
		titles[index] = column.Title
	}

	nameWidth := ansi.StringWidth(titles[0])
	delayWidth := ansi.StringWidth(titles[1])
	for _, row := range data {
		nameWidth = max(nameWidth, ansi.StringWidth(row.name))
		delayWidth = max(delayWidth, ansi.StringWidth(row.delay))
	}
	if model.width > 0 {
		nameWidth = min(nameWidth, max(10, model.width/3))
	}
	statusWidth := max(ansi.StringWidth(titles[3]), len("STARTING"))
	reviveWidth := ansi.StringWidth(titles[2])

	header := "  " + pad(titles[0], nameWidth) + "  " + pad(titles[1], delayWidth) + "  " +
		pad(titles[2], reviveWidth) + "  " + pad(titles[3], statusWidth) + "  " + titles[4]
	lines := []string{"", model.style(model.theme.HeaderForeground).Bold(true).Render(header)}

	switch {
	case len(rows) == 0:
		return append(lines, model.style(model.theme.FaintText).Render("  No components"))
	case len(data) == 0:
		return append(lines, model.style(model.theme.FaintText).Render("  No components match the filter"))
	}

	// Keep the cursor visible between the header and the status bar.
	available := max(1, model.height-used-len(lines)-1)
	offset := max(0, model.cursor-available+1)
	end := min(len(data), offset+available)

	for index := offset; index < end; index++ {
		row := data[index]
		marker := "  "
		if index == model.cursor {
			marker = "▸ "
		}
		name := pad(ansi.Truncate(row.name, nameWidth, "…"), nameWidth)
		status := model.style(model.theme.StatusColor(row.status)).Render(pad(row.status, statusWidth))
		line := marker + name + "  " + pad(row.delay, delayWidth) + "  " + pad(row.revive, reviveWidth) +
			"  " + status + "  " + model.button("stop", row.stop) + " " + model.button("start", row.start)
		if index == model.cursor {
			line = model.renderer.NewStyle().Bold(true).Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (model Model) button(label string, enabled bool) string {
	if !enabled {
		return model.style(model.theme.FaintText).Faint(true).Render(label)
	}
	return model.style(model.theme.NormalText).Render(label)
}

func (model Model) renderStatusBar() string {
	if model.notice != nil {
		color := model.theme.NormalText
		switch {
		case model.notice.Level >= slog.LevelError:
			color = model.theme.ErrorText
		case model.notice.Level >= slog.LevelWarn:
			color = model.theme.WarnText
		}
		return model.style(color).Render(model.notice.Summary)
	}
	return model.style(model.theme.HelpText).Render(model.keys.helpLine())
}

// pad right-pads text to width display cells.
func pad(text string, width int) string {
	gap := width - ansi.StringWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}
