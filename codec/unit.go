package codec

import "fmt"

// Unit encodes to an empty byte slice and decodes only an empty byte
// slice; used for sets (duplicate-sort databases whose "value" carries
// no information beyond membership).
type Unit struct{}

func (Unit) Encode(struct{}) ([]byte, error) { return nil, nil }

func (Unit) Decode(b []byte) (struct{}, error) {
	if len(b) != 0 {
		return struct{}{}, fmt.Errorf("codec: unit value must be empty, got %d bytes", len(b))
	}
	return struct{}{}, nil
}
