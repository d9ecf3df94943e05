// Copyright 2024 The Erigon Authors
// (original work, adapted)

// Package mathutil holds the small arithmetic helpers the engine wrapper
// needs for page-size and bounds arithmetic; split out of the teacher's
// common/math package, trimmed to what this module actually calls.
package mathutil

import "math/bits"

// Integer limit values. Nothing in this module references them.
const (
	MaxUint32 = 1<<32 - 1
	MaxUint16 = 1<<16 - 1
)

// CeilDiv returns ceil(x/y), used when checking that a map size divides
// evenly into OS pages (spec invariant: map_size must be a page multiple).
func CeilDiv(x, y int64) int64 {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

// SafeAdd returns x+y and reports whether the addition overflowed.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}
