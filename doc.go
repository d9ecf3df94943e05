// Package heed is a strongly-typed wrapper over a memory-mapped,
// copy-on-write B+tree key-value engine (the MDBX/LMDB family, bound
// here through github.com/erigontech/mdbx-go).
//
// On top of the raw engine it adds: a compile-time codec system
// (package codec) binding typed key/value schemas to named
// sub-databases; read-only and read-write transactions, including
// nested write transactions; cursors and a matrix of forward/reverse,
// full/range/prefix, duplicate-aware iterators; installable key and
// duplicate-value comparators; a reserved-space writer for zero-copy
// in-place value construction; and an optional transparent
// page-encryption hook.
//
// Borrowed data returned by Get, iterators, and cursors is only valid
// for the lifetime of the transaction that produced it; Env.View gives
// a continuation-shaped way to use it safely without a long-lived
// transaction handle.
package heed
