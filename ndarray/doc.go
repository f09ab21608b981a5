// Package ndarray provides the host-side dense array model used when
// marshaling array arguments and results across the VM boundary.
//
// An Array couples an element type, a shape, and flat typed storage. Rank-0
// arrays carry a single scalar element and are what integer and float
// arguments are promoted to when a function signature declares a
// zero-rank array parameter.
//
// AsArray performs duck-typed conversion: anything that already is an
// *Array, exposes one via an NDArray() method, or is a Go scalar or typed
// slice can be treated as array-like. Conversion is attempted explicitly
// rather than switching over a closed set of host types.
//
// Half-precision element types are backed by github.com/x448/float16 and
// github.com/d4l3k/go-bfloat16.
package ndarray
