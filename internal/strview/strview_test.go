package strview_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regfhive/internal/strview"
)

func TestEqualFoldASCIICaseInsensitive(t *testing.T) {
	raw := []byte("SOFTWARE")
	require.True(t, strview.EqualFold(raw, strview.Latin1, "software"))
	require.True(t, strview.EqualFold(raw, strview.Latin1, "SOFTWARE"))
	require.False(t, strview.EqualFold(raw, strview.Latin1, "softwarex"))
}

func TestEqualFoldUTF16LE(t *testing.T) {
	raw := []byte{'h', 0, 'i', 0}
	require.True(t, strview.EqualFold(raw, strview.UTF16LE, "HI"))
	require.False(t, strview.EqualFold(raw, strview.UTF16LE, "hix"))
}

func TestUpperFoldIsBMPOnly(t *testing.T) {
	// U+10414 DESERET CAPITAL LETTER DEE and U+1043C DESERET SMALL LETTER
	// DEE are a case pair above the BMP; this format's fold does not merge
	// them.
	const (
		deseretCapital = rune(0x10414)
		deseretSmall   = rune(0x1043C)
	)
	require.NotEqual(t, strview.UpperFold(deseretSmall), strview.UpperFold(deseretCapital))
	require.Equal(t, deseretSmall, strview.UpperFold(deseretSmall))
}

func TestHashFoldIgnoresASCIICase(t *testing.T) {
	require.Equal(t, strview.HashFold("Software"), strview.HashFold("SOFTWARE"))
	require.Equal(t, strview.HashFold("Software"), strview.HashFold("software"))
}

func TestDecodeToUTF8Latin1(t *testing.T) {
	// 0xE9 is U+00E9 (e acute) under strict Latin-1/ISO-8859-1, not the
	// Windows-1252 reinterpretation of that byte range.
	s, err := strview.DecodeToUTF8([]byte{0xE9}, strview.Latin1)
	require.NoError(t, err)
	require.Equal(t, "é", s)
}

func TestDecodeToUTF8SurrogatePair(t *testing.T) {
	// U+1F600 encoded as a UTF-16LE surrogate pair.
	raw := []byte{0x3D, 0xD8, 0x00, 0xDE}
	s, err := strview.DecodeToUTF8(raw, strview.UTF16LE)
	require.NoError(t, err)
	require.Equal(t, "\U0001F600", s)
}

func TestCompareFoldOrdersByLength(t *testing.T) {
	require.Equal(t, -1, strview.CompareFold([]byte("AB"), strview.Latin1, "ABC"))
	require.Equal(t, 1, strview.CompareFold([]byte("ABC"), strview.Latin1, "AB"))
	require.Equal(t, 0, strview.CompareFold([]byte("abc"), strview.Latin1, "ABC"))
}

func TestFullwidthLettersFoldWithinBMP(t *testing.T) {
	// U+FF21 FULLWIDTH A and U+FF41 fullwidth a are a BMP case pair, so
	// unlike the Deseret letters they DO compare equal.
	capital := []byte{0x21, 0xFF}
	small := []byte{0x41, 0xFF}
	require.True(t, strview.EqualFold(capital, strview.UTF16LE, "ａ"))
	require.True(t, strview.EqualFold(small, strview.UTF16LE, "Ａ"))
}

func TestHashFoldRawMatchesHashFold(t *testing.T) {
	utf16 := []byte{'S', 0, 'o', 0, 'f', 0, 't', 0}
	require.Equal(t, strview.HashFold("soft"), strview.HashFoldRaw(utf16, strview.UTF16LE))

	latin1 := []byte{0xE4, 0xF6, 0xFC}
	require.Equal(t, strview.HashFold("äöü"), strview.HashFoldRaw(latin1, strview.Latin1))
}
