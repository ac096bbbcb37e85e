// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sample struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Delay float64 `json:"delay"`
	Value *bool   `json:"value,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "cbor"} {
		codec, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if codec.Name() != name {
			t.Fatalf("ByName(%q).Name() = %q", name, codec.Name())
		}
	}
	if _, err := ByName("xml"); err == nil {
		t.Fatal("ByName(xml) should fail")
	}
}

func TestBySubprotocol(t *testing.T) {
	for _, subprotocol := range Subprotocols() {
		codec, ok := BySubprotocol(subprotocol)
		if !ok || codec.Subprotocol() != subprotocol {
			t.Fatalf("BySubprotocol(%q) = %v, %v", subprotocol, codec, ok)
		}
	}
	if _, ok := BySubprotocol("chat"); ok {
		t.Fatal("unknown subprotocol resolved")
	}
}

func TestJSONUsesJSONTags(t *testing.T) {
	data, err := JSON.Marshal(sample{ID: 3, Name: "svc", Delay: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":3,"name":"svc","delay":1.5}`
	if string(data) != want {
		t.Fatalf("JSON = %s, want %s", data, want)
	}
}

func TestCBORFieldNamesFollowJSONTags(t *testing.T) {
	data, err := CBOR.Marshal(sample{ID: 3, Name: "svc"})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := CBOR.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["name"] != "svc" {
		t.Fatalf("decoded = %v", decoded)
	}
	if _, ok := decoded["value"]; ok {
		t.Fatal("omitempty not honored")
	}
}

func TestCBORDeterministic(t *testing.T) {
	first, err := CBOR.Marshal(map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, err := CBOR.Marshal(map[string]int{"c": 3, "a": 1, "b": 2})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("encoding is not deterministic")
		}
	}
}

func TestBinaryFlag(t *testing.T) {
	if JSON.Binary() || !CBOR.Binary() {
		t.Fatal("JSON must be text and CBOR binary")
	}
}
