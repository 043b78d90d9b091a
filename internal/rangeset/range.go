// Package rangeset implements the engine's zero-copy addressing scheme: every
// parsed token is a pair of offsets into a single backing buffer rather than
// an independent slice header, so the buffer can be grown and re-parsed
// without invalidating anything already extracted from it.
package rangeset

import (
	"reflect"
	"unsafe"
)

// Range names a contiguous subslice of some backing buffer by offset rather
// than by its own slice header. A Range is only meaningful when interpreted
// against the buffer that produced it.
type Range struct {
	Start int
	End   int
}

// Len reports the number of bytes the range spans.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range spans zero bytes.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Slice resolves the range against backing, returning the subslice it names.
// Slice panics if the range is not contained in backing; callers that built
// the range via FromSubslice or the parser never hit this path in practice.
func (r Range) Slice(backing []byte) []byte {
	return backing[r.Start:r.End]
}

// FromSubslice computes the Range naming sub within backing. sub MUST be a
// subslice of backing (sharing the same underlying array); passing a slice
// that is not contained in backing is a programmer defect and FromSubslice
// will return a meaningless Range rather than panicking, since there is no
// portable way to check containment in Go without the same pointer
// arithmetic used here to compute the answer in the first place.
func FromSubslice(backing, sub []byte) Range {
	start := subsliceOffset(backing, sub)
	return Range{Start: start, End: start + len(sub)}
}

// subsliceOffset returns the byte offset of sub's data pointer within
// backing's underlying array, using pointer arithmetic the same way the
// originating parser computed token offsets from raw slice pointers. This
// works for zero-length slices too (e.g. buf[n:n] with n < cap(buf)), whose
// data pointer still addresses offset n of the shared array. When
// n == cap(buf) Go leaves the data pointer at the array's start, so the
// offset comes back as 0.
func subsliceOffset(backing, sub []byte) int {
	if cap(backing) == 0 {
		return 0
	}
	base := (*reflect.SliceHeader)(unsafe.Pointer(&backing)).Data
	target := (*reflect.SliceHeader)(unsafe.Pointer(&sub)).Data
	return int(target - base)
}
