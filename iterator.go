package heed

import "github.com/meilisearch/heed-sub001/codec"

// direction selects forward or reverse traversal, kept orthogonal to
// bounds and duplicate mode per spec.md §9 Design Notes.
type direction int

const (
	forward direction = iota
	backward
)

// Iterator is the read-only iterator family member: forward/reverse,
// full/range/prefix all reduce to this one algorithmic skeleton keyed
// by its bounds, direction, and duplicate mode (spec.md §4.6).
type Iterator[K any, V any] struct {
	cursor *rawCursor
	keyC   codec.Decoder[K]
	valC   codec.Decoder[V]

	lower, upper Bound
	dir          direction
	dupMode      DupMode

	primed bool
	done   bool
}

func newIterator[K any, V any](cursor *rawCursor, keyC codec.Decoder[K], valC codec.Decoder[V], lower, upper Bound, dir direction, dupMode DupMode) *Iterator[K, V] {
	return &Iterator[K, V]{cursor: cursor, keyC: keyC, valC: valC, lower: lower, upper: upper, dir: dir, dupMode: dupMode}
}

// Close releases the underlying cursor. Must be called once iteration
// is done; draining the iterator with Next does not close the cursor.
func (it *Iterator[K, V]) Close() { it.cursor.Close() }

func (it *Iterator[K, V]) primeForward() (entry, bool, error) {
	if it.lower.unbounded {
		return it.cursor.First()
	}
	e, ok, err := it.cursor.MoveOnKeyGreaterThanOrEqualTo(it.lower.bytes)
	if err != nil || !ok {
		return e, ok, err
	}
	if !it.lower.inclusive && DefaultCompare(e.key, it.lower.bytes) == 0 {
		return it.cursor.Next(it.dupMode)
	}
	return e, ok, nil
}

func (it *Iterator[K, V]) primeBackward() (entry, bool, error) {
	if it.upper.unbounded {
		return it.cursor.Last()
	}
	e, ok, err := it.cursor.MoveOnKeyGreaterThanOrEqualTo(it.upper.bytes)
	if err != nil {
		return e, ok, err
	}
	if !ok {
		// No key >= upper bound exists; the last key in the database,
		// if any, is within range.
		return it.cursor.Last()
	}
	if it.upper.inclusive && DefaultCompare(e.key, it.upper.bytes) == 0 {
		return e, ok, nil
	}
	return it.cursor.Prev(it.dupMode)
}

func (it *Iterator[K, V]) pastUpper(key []byte) bool {
	if it.upper.unbounded {
		return false
	}
	c := DefaultCompare(key, it.upper.bytes)
	if it.upper.inclusive {
		return c > 0
	}
	return c >= 0
}

func (it *Iterator[K, V]) pastLower(key []byte) bool {
	if it.lower.unbounded {
		return false
	}
	c := DefaultCompare(key, it.lower.bytes)
	if it.lower.inclusive {
		return c < 0
	}
	return c <= 0
}

// Next advances the iterator, returning ok=false once the range is
// exhausted. Decode errors are surfaced as err with ok=true so the
// caller can distinguish "no more entries" from "bad entry" (spec.md
// §4.1's decode-may-fail contract, threaded through iteration).
func (it *Iterator[K, V]) Next() (key K, val V, ok bool, err error) {
	if it.done {
		return key, val, false, nil
	}

	var e entry
	var found bool
	if !it.primed {
		it.primed = true
		if it.dir == forward {
			e, found, err = it.primeForward()
		} else {
			e, found, err = it.primeBackward()
		}
	} else {
		if it.dir == forward {
			e, found, err = it.cursor.Next(it.dupMode)
		} else {
			e, found, err = it.cursor.Prev(it.dupMode)
		}
	}
	if err != nil {
		it.done = true
		return key, val, true, err
	}
	if !found {
		it.done = true
		return key, val, false, nil
	}

	if it.dir == forward && it.pastUpper(e.key) {
		it.done = true
		return key, val, false, nil
	}
	if it.dir == backward && it.pastLower(e.key) {
		it.done = true
		return key, val, false, nil
	}

	key, err = it.keyC.Decode(e.key)
	if err != nil {
		return key, val, true, wrapErr(CodeDecoding, "decode key", err)
	}
	val, err = it.valC.Decode(e.val)
	if err != nil {
		return key, val, true, wrapErr(CodeDecoding, "decode value", err)
	}
	return key, val, true, nil
}

// Last repositions directly to the farthest in-range entry rather than
// traversing forward to find it — O(log n) via a single seek, as
// spec.md §4.6 requires.
func (it *Iterator[K, V]) Last() (key K, val V, ok bool, err error) {
	var e entry
	var found bool
	if it.dir == forward {
		e, found, err = it.primeBackwardBound(it.upper)
	} else {
		e, found, err = it.primeForwardBound(it.lower)
	}
	if err != nil || !found {
		return key, val, found, err
	}
	if (it.dir == forward && it.pastLower(e.key)) || (it.dir == backward && it.pastUpper(e.key)) {
		// The range holds no entry at all.
		it.primed = true
		it.done = true
		return key, val, false, nil
	}
	key, err = it.keyC.Decode(e.key)
	if err != nil {
		return key, val, true, wrapErr(CodeDecoding, "decode key", err)
	}
	val, err = it.valC.Decode(e.val)
	if err != nil {
		return key, val, true, wrapErr(CodeDecoding, "decode value", err)
	}
	it.primed = true
	it.done = true
	return key, val, true, nil
}

func (it *Iterator[K, V]) primeBackwardBound(upper Bound) (entry, bool, error) {
	if upper.unbounded {
		return it.cursor.Last()
	}
	e, ok, err := it.cursor.MoveOnKeyGreaterThanOrEqualTo(upper.bytes)
	if err != nil {
		return e, ok, err
	}
	if !ok {
		return it.cursor.Last()
	}
	if upper.inclusive && DefaultCompare(e.key, upper.bytes) == 0 {
		return e, ok, nil
	}
	return it.cursor.Prev(Any)
}

func (it *Iterator[K, V]) primeForwardBound(lower Bound) (entry, bool, error) {
	if lower.unbounded {
		return it.cursor.First()
	}
	e, ok, err := it.cursor.MoveOnKeyGreaterThanOrEqualTo(lower.bytes)
	if err != nil || !ok {
		return e, ok, err
	}
	if !lower.inclusive && DefaultCompare(e.key, lower.bytes) == 0 {
		return it.cursor.Next(Any)
	}
	return e, ok, nil
}

// RwIterator is the mutating iterator variant, adding the write-only
// cursor operations spec.md §4.6 specifies for read-write iterators.
type RwIterator[K any, V any] struct {
	Iterator[K, V]
	keyEnc codec.Encoder[K]
	valEnc codec.Encoder[V]
}

func newRwIterator[K any, V any](cursor *rawCursor, keyC codec.Codec[K], valC codec.Codec[V], lower, upper Bound, dir direction, dupMode DupMode) *RwIterator[K, V] {
	return &RwIterator[K, V]{
		Iterator: *newIterator[K, V](cursor, keyC, valC, lower, upper, dir, dupMode),
		keyEnc:   keyC,
		valEnc:   valC,
	}
}

// DeleteCurrent removes the entry the iterator is currently positioned on.
func (it *RwIterator[K, V]) DeleteCurrent() error {
	return it.cursor.DeleteCurrent()
}

// PutCurrent overwrites the value at the iterator's current key.
func (it *RwIterator[K, V]) PutCurrent(key K, val V) error {
	kb, err := it.keyEnc.Encode(key)
	if err != nil {
		return wrapErr(CodeEncoding, "encode key", err)
	}
	vb, err := it.valEnc.Encode(val)
	if err != nil {
		return wrapErr(CodeEncoding, "encode value", err)
	}
	return it.cursor.PutCurrent(kb, vb)
}

// PutCurrentReserved reserves size bytes at the current position for fill to write into.
func (it *RwIterator[K, V]) PutCurrentReserved(key K, size int, fill func(*ReservedSpace) error) error {
	kb, err := it.keyEnc.Encode(key)
	if err != nil {
		return wrapErr(CodeEncoding, "encode key", err)
	}
	return it.cursor.PutCurrentReserved(kb, size, fill)
}

// PutCurrentWithFlags overwrites with explicit put flags.
func (it *RwIterator[K, V]) PutCurrentWithFlags(flags PutFlags, key K, val V) error {
	kb, err := it.keyEnc.Encode(key)
	if err != nil {
		return wrapErr(CodeEncoding, "encode key", err)
	}
	vb, err := it.valEnc.Encode(val)
	if err != nil {
		return wrapErr(CodeEncoding, "encode value", err)
	}
	return it.cursor.PutCurrentWithFlags(flags, kb, vb)
}

// Append inserts (key, val) requiring key sort strictly after the
// greatest existing key.
func (it *RwIterator[K, V]) Append(key K, val V) error {
	kb, err := it.keyEnc.Encode(key)
	if err != nil {
		return wrapErr(CodeEncoding, "encode key", err)
	}
	vb, err := it.valEnc.Encode(val)
	if err != nil {
		return wrapErr(CodeEncoding, "encode value", err)
	}
	return it.cursor.Append(kb, vb)
}
