// Package codec abstracts the byte encoding used by storage adapters.
package codec

import "encoding/json"

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec encodes compact JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (JSONCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

// IndentedJSONCodec encodes human-readable JSON.
type IndentedJSONCodec struct{}

func (IndentedJSONCodec) Marshal(v any) ([]byte, error)   { return json.MarshalIndent(v, "", "  ") }
func (IndentedJSONCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

var (
	_ Codec = JSONCodec{}
	_ Codec = IndentedJSONCodec{}
)
