package server

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec lets connect carry plain Go structs. It is registered under the
// "json" name so clients using application/json or application/connect+json
// reach it.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// WithJSON is the codec option shared by handlers and clients.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
