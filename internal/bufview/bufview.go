// Package bufview contains bounds-checked, endian-aware accessors over a
// caller-owned byte slice. Every read returns an ok flag instead of
// panicking so callers can turn a short buffer into a precisely-offset
// decode error rather than a runtime panic.
package bufview

import (
	"encoding/binary"
	"math"
)

// AddOverflowSafe adds a and b, reporting ok = false when the result would
// overflow int. Hive offsets are untrusted 32-bit values; arithmetic on them
// must never wrap silently into an in-bounds-looking value.
func AddOverflowSafe(a, b int) (sum int, ok bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice b[off:off+n], or ok=false if it does not fit.
func Slice(b []byte, off, n int) (out []byte, ok bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// U16LE reads a little-endian uint16 at off, reporting ok=false if short.
func U16LE(b []byte, off int) (uint16, bool) {
	s, ok := Slice(b, off, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(s), true
}

// U32LE reads a little-endian uint32 at off, reporting ok=false if short.
func U32LE(b []byte, off int) (uint32, bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(s), true
}

// U64LE reads a little-endian uint64 at off, reporting ok=false if short.
func U64LE(b []byte, off int) (uint64, bool) {
	s, ok := Slice(b, off, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(s), true
}

// I32LE reads a little-endian int32 at off, reporting ok=false if short.
func I32LE(b []byte, off int) (int32, bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(s)), true
}
