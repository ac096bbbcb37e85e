// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package vtree

import "testing"

func TestHParsesSelector(t *testing.T) {
	node := H("span.fa.fa-times")
	if node.Tag() != "span" {
		t.Errorf("Tag() = %q, want span", node.Tag())
	}
	classes := node.Classes()
	if len(classes) != 2 || classes[0] != "fa" || classes[1] != "fa-times" {
		t.Errorf("Classes() = %v, want [fa fa-times]", classes)
	}
	if !node.HasClass("fa-times") || node.HasClass("fa-play") {
		t.Error("HasClass disagrees with the selector")
	}
}

func TestHParts(t *testing.T) {
	node := H("button",
		Key("row-1"),
		Props{"disabled": true, "title": "stop"},
		On{Click: {Name: "stop", Target: 3}},
		Text("go"),
		nil,
		Children{H("span"), nil, H("em")},
	)
	if node.Key() != "row-1" {
		t.Errorf("Key() = %q", node.Key())
	}
	if !node.BoolProp("disabled") {
		t.Error("disabled should be true")
	}
	if node.StringProp("title") != "stop" {
		t.Errorf("title = %q", node.StringProp("title"))
	}
	props := node.Props()
	if len(props) != 2 || props[0].Name != "disabled" || props[1].Name != "title" {
		t.Errorf("Props() not sorted by name: %v", props)
	}
	action, ok := node.Binding(Click)
	if !ok || action != (Action{Name: "stop", Target: 3}) {
		t.Errorf("Binding(Click) = %v, %v", action, ok)
	}
	if _, ok := node.Binding(Change); ok {
		t.Error("no change binding expected")
	}
	if node.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (text, span, em)", node.Len())
	}
	if !node.Child(0).IsText() || node.Child(0).Text() != "go" {
		t.Errorf("first child = %s", Format(node.Child(0)))
	}
}

func TestPropsLaterValueWins(t *testing.T) {
	node := H("input", Props{"checked": false}, Props{"checked": true})
	if len(node.Props()) != 1 || !node.BoolProp("checked") {
		t.Errorf("Props() = %v, want a single checked=true", node.Props())
	}
}

func TestPropsRejectUnsupportedTypes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a slice-valued property")
		}
	}()
	H("div", Props{"bad": []int{1}})
}

func TestEqual(t *testing.T) {
	build := func(target int) *Node {
		return H("tr", Key("1"),
			H("td.col-status", Text("RUNNING")),
			H("td", H("button", On{Click: {Name: "stop", Target: target}})),
		)
	}
	if !Equal(build(1), build(1)) {
		t.Error("identical builds should be equal")
	}
	if Equal(build(1), build(2)) {
		t.Error("builds with different binding targets should differ")
	}
	if !Equal(nil, nil) || Equal(build(1), nil) {
		t.Error("nil handling is wrong")
	}
}

func TestTextContentAndFormat(t *testing.T) {
	node := H("td.col-status", Text("RUN"), H("b", Text("NING")))
	if got := node.TextContent(); got != "RUNNING" {
		t.Errorf("TextContent() = %q", got)
	}
	node = H("button.btn", Props{"disabled": true}, On{Click: {Name: "start", Target: 0}}, Text("x"))
	want := `<button class="btn" disabled="true" onclick="start(0)">x</button>`
	if got := Format(node); got != want {
		t.Errorf("Format() = %s\nwant %s", got, want)
	}
}
