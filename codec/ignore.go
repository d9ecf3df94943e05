package codec

// Ignore decodes any bytes to struct{}, discarding them; used when a
// caller only needs existence/counting and wants to skip the cost of a
// real value decode during iteration.
type Ignore struct{}

func (Ignore) Decode(b []byte) (struct{}, error) { return struct{}{}, nil }
