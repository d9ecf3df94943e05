package codec

import "github.com/goccy/go-json"

// JSON is a serialized-by-crate codec wrapper (spec.md's catalog entry
// "Serialized-by-crate wrappers — one wrapper per format") backed by
// goccy/go-json for its drop-in encoding/json-compatible but faster
// marshal/unmarshal path.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON[T]) Decode(b []byte) (T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
