package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes frames. The zero negotiation default is
// JSON; clients that prefer a binary wire negotiate msgpack at
// handshake.
type Codec interface {
	// Name is the codec's negotiation token.
	Name() string

	// Encode marshals a frame.
	Encode(f *Frame) ([]byte, error)

	// Decode unmarshals and validates a frame.
	Decode(data []byte) (*Frame, error)
}

// JSONCodec is the default frame codec.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return "json" }

// Encode implements Codec.
func (JSONCodec) Encode(f *Frame) ([]byte, error) {
	return json.Marshal(f)
}

// Decode implements Codec.
func (JSONCodec) Decode(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("protocol: decode json frame: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// MsgpackCodec is the binary frame codec.
type MsgpackCodec struct{}

// Name implements Codec.
func (MsgpackCodec) Name() string { return "msgpack" }

// Encode implements Codec.
func (MsgpackCodec) Encode(f *Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

// Decode implements Codec.
func (MsgpackCodec) Decode(data []byte) (*Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("protocol: decode msgpack frame: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// CodecByName resolves a negotiation token. Unknown names fall back
// to JSON.
func CodecByName(name string) Codec {
	if name == (MsgpackCodec{}).Name() {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}
