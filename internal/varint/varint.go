// Package varint implements the minimal-width little-endian integer codec
// used for cell keys and values: a value is stored in the smallest number
// of bytes that can hold it, and the width itself is carried alongside the
// value (see the cell format in the parent package).
package varint

import "golang.org/x/exp/constraints"

// MaxWidth is the largest byte width the codec ever produces for a 64-bit value.
const MaxWidth = 8

// Width returns the number of little-endian bytes needed to hold v.
//
// Zero is special-cased: callers pick zeroWidth themselves, because the same
// codec serves two fields with different zero conventions in a cell — a key
// of 0 is still a one-byte key (zeroWidth=1), while a value of 0 is stored
// in zero bytes (zeroWidth=0). See the cell format's discussion of this.
func Width[T constraints.Unsigned](v T, zeroWidth uint8) uint8 {
	if v == 0 {
		return zeroWidth
	}
	var w uint8
	for n := uint64(v); n > 0; n >>= 8 {
		w++
	}
	if w > MaxWidth {
		w = MaxWidth
	}
	return w
}

// Encode writes the little-endian bytes of v into dst, using exactly
// len(dst) bytes. The caller is responsible for sizing dst to the width
// reported by Width; Encode never fails and never touches bytes beyond
// len(dst).
func Encode[T constraints.Unsigned](v T, dst []byte) {
	n := uint64(v)
	for i := range dst {
		dst[i] = byte(n)
		n >>= 8
	}
}

// Decode reads len(src) little-endian bytes and zero-extends them into a T.
func Decode[T constraints.Unsigned](src []byte) T {
	var n uint64
	for i := len(src) - 1; i >= 0; i-- {
		n <<= 8
		n |= uint64(src[i])
	}
	return T(n)
}
