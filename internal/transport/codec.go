// Package transport exposes the services over the Connect RPC protocol.
//
// Handlers are registered with connect.NewUnaryHandler over plain
// request/response structs and a JSON codec, so the wire format is Connect
// unary JSON without generated bindings.
package transport

import "encoding/json"

// jsonCodec implements connect.Codec for plain structs.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
