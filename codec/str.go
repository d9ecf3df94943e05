package codec

import (
	"fmt"
	"unicode/utf8"
)

// Str is a zero-copy codec for UTF-8 strings; decode validates the
// input is well-formed UTF-8 before converting.
type Str struct{}

func (Str) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (Str) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("codec: value is not valid UTF-8")
	}
	return string(b), nil
}
