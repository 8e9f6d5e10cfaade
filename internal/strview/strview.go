// Package strview decodes the two string flavours a hive cell can hold —
// Latin-1 (one byte per code point) and UTF-16LE — into Unicode scalar
// values, and implements the Windows-compatible case fold used for every
// subkey/value name comparison and for the "lh" hash.
//
// Case folding is deliberately BMP-only: code points above U+FFFF are left
// untouched, because the Offline Registry Library this format matches does
// not fold supplementary-plane letters (e.g. the Deseret letters U+10410 and
// U+10438 are distinct names, never merged).
package strview

import (
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Flavor selects which on-disk string encoding a name or string value uses.
type Flavor int

const (
	// Latin1 stores one byte per code point (ISO-8859-1: code point == byte).
	Latin1 Flavor = iota
	// UTF16LE stores two bytes per code unit, little-endian, with surrogate
	// pairs combining into supplementary code points.
	UTF16LE
)

// latin1Decoder performs the identity ISO-8859-1 -> UTF-8 conversion:
// every byte 0x00-0xFF maps directly onto the matching code point, which is
// what the Latin-1 name form requires (no Windows-1252-style
// Euro-sign-at-0x80 reinterpretation).
var latin1Decoder = charmap.ISO8859_1.NewDecoder()

// UpperFold returns the Windows simple-upcase fold of r: the BMP one-to-one
// uppercase mapping for r <= U+FFFF, and r unchanged otherwise.
func UpperFold(r rune) rune {
	if r > unicode.MaxRune || r > 0xFFFF {
		return r
	}
	return unicode.ToUpper(r)
}

// RuneSeq is a restartable, lazy iterator over the scalar values stored in a
// name or string value. Calling Decode again returns a fresh cursor.
type RuneSeq struct {
	data   []byte
	flavor Flavor
	pos    int
}

// Decode returns a lazy rune sequence over raw, interpreted per flavor. No
// intermediate string or []rune is built; Next decodes one code point (or
// surrogate pair) at a time directly from raw.
func Decode(raw []byte, flavor Flavor) RuneSeq {
	return RuneSeq{data: raw, flavor: flavor}
}

// Next returns the next scalar value, or ok=false at end of input.
func (s *RuneSeq) Next() (r rune, ok bool) {
	switch s.flavor {
	case Latin1:
		if s.pos >= len(s.data) {
			return 0, false
		}
		r = rune(s.data[s.pos])
		s.pos++
		return r, true
	default: // UTF16LE
		if s.pos+1 >= len(s.data) {
			return 0, false
		}
		lo := rune(s.data[s.pos]) | rune(s.data[s.pos+1])<<8
		s.pos += 2
		if utf16.IsSurrogate(lo) && s.pos+1 < len(s.data) {
			hi := rune(s.data[s.pos]) | rune(s.data[s.pos+1])<<8
			if combined := utf16.DecodeRune(lo, hi); combined != unicode.ReplacementChar {
				s.pos += 2
				return combined, true
			}
		}
		// Unpaired surrogate (or pair that didn't combine): compare as its
		// raw code unit value rather than rejecting it.
		return lo, true
	}
}

// Len reports the number of code units (not scalar values) backing the
// sequence: bytes for Latin-1, UTF-16 code units for UTF16LE.
func (s RuneSeq) Len() int {
	if s.flavor == Latin1 {
		return len(s.data)
	}
	return len(s.data) / 2
}

// EqualFold reports whether raw (interpreted per flavor) case-insensitively
// equals query, per the BMP-only fold described in the package doc.
func EqualFold(raw []byte, flavor Flavor, query string) bool {
	a := Decode(raw, flavor)
	for _, qr := range query {
		ar, ok := a.Next()
		if !ok {
			return false
		}
		if UpperFold(ar) != UpperFold(qr) {
			return false
		}
	}
	_, trailing := a.Next()
	return !trailing
}

// CompareFold returns -1, 0, or 1 comparing raw (interpreted per flavor)
// against query under the same fold as EqualFold. The ordering is total and
// transitive: it compares folded scalar values pairwise, falling back to
// sequence length.
func CompareFold(raw []byte, flavor Flavor, query string) int {
	a := Decode(raw, flavor)
	qs := []rune(query)
	i := 0
	for {
		ar, ok := a.Next()
		if !ok {
			if i < len(qs) {
				return -1
			}
			return 0
		}
		if i >= len(qs) {
			return 1
		}
		af, qf := UpperFold(ar), UpperFold(qs[i])
		switch {
		case af < qf:
			return -1
		case af > qf:
			return 1
		}
		i++
	}
}

// HashFold is the Windows Registry "lh" subkey-list hash: an accumulator
// seeded at 0, updated per character as acc = acc*37 + upperFold(char),
// truncated to 32 bits. Computed directly over a query string, decoded to
// runes by ranging over it.
func HashFold(name string) uint32 {
	var acc uint32
	for _, r := range name {
		acc = acc*37 + uint32(UpperFold(r))
	}
	return acc
}

// HashFoldRaw computes the same hash directly over a stored name's raw
// bytes (interpreted per flavor), giving the "lh" hint that name carries
// without first decoding it to a Go string.
func HashFoldRaw(raw []byte, flavor Flavor) uint32 {
	var acc uint32
	seq := Decode(raw, flavor)
	for {
		r, ok := seq.Next()
		if !ok {
			return acc
		}
		acc = acc*37 + uint32(UpperFold(r))
	}
}

// DecodeToUTF8 materializes raw (interpreted per flavor) as a Go string.
// Used where an owned, caller-facing string is explicitly requested (key and
// value names, class names, REG_SZ/REG_EXPAND_SZ/REG_MULTI_SZ elements) —
// never on the hot lookup path, which stays on the lazy RuneSeq above.
func DecodeToUTF8(raw []byte, flavor Flavor) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if flavor == Latin1 {
		out, err := latin1Decoder.Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	var b []rune
	seq := Decode(raw, flavor)
	for {
		r, ok := seq.Next()
		if !ok {
			break
		}
		b = append(b, r)
	}
	return string(b), nil
}
