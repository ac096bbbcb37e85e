// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
)

// Codec marshals wire frames for one encoding.
type Codec interface {
	// Name is the configuration name: "json" or "cbor".
	Name() string

	// Subprotocol is the websocket subprotocol announcing this
	// encoding.
	Subprotocol() string

	// Binary reports whether frames travel as websocket binary
	// messages rather than text messages.
	Binary() bool

	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	// JSON is the text encoding.
	JSON Codec = jsonCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary}

	// CBOR is the binary encoding.
	CBOR Codec
)

func init() {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err := cbor.DecOptions{
		// Decoding into any must produce map[string]any, not
		// map[any]any; orchdash never uses non-string keys.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
	CBOR = cborCodec{enc: encMode, dec: decMode}
}

// ByName returns the codec for a configuration name.
func ByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return nil, fmt.Errorf("unknown encoding %q (want json or cbor)", name)
}

// BySubprotocol returns the codec announced by a websocket
// subprotocol.
func BySubprotocol(subprotocol string) (Codec, bool) {
	for _, candidate := range []Codec{JSON, CBOR} {
		if candidate.Subprotocol() == subprotocol {
			return candidate, true
		}
	}
	return nil, false
}

// Subprotocols lists every supported subprotocol, preferred first.
func Subprotocols() []string {
	return []string{JSON.Subprotocol(), CBOR.Subprotocol()}
}

type jsonCodec struct {
	api jsoniter.API
}

func (jsonCodec) Name() string        { return "json" }
func (jsonCodec) Subprotocol() string { return "orchdash.json" }
func (jsonCodec) Binary() bool        { return false }

func (c jsonCodec) Marshal(v any) ([]byte, error) { return c.api.Marshal(v) }

func (c jsonCodec) Unmarshal(data []byte, v any) error { return c.api.Unmarshal(data, v) }

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func (cborCodec) Name() string        { return "cbor" }
func (cborCodec) Subprotocol() string { return "orchdash.cbor" }
func (cborCodec) Binary() bool        { return true }

func (c cborCodec) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
