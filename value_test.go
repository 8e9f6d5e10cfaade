package regfhive_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	regfhive "github.com/joshuapare/regfhive"
	"github.com/joshuapare/regfhive/internal/testhive"
	"github.com/joshuapare/regfhive/internal/wire"
)

// buildValueFixture builds a root key carrying one value of every typed
// kind this package reads: an inline REG_DWORD, an out-of-line
// REG_DWORD_BIG_ENDIAN, a REG_QWORD, a REG_MULTI_SZ, a REG_EXPAND_SZ, and a
// small REG_BINARY.
func buildValueFixture(t *testing.T) regfhive.KeyNode {
	t.Helper()
	b := testhive.New()

	var vkOffs []uint32

	// Inline REG_DWORD: value fits in the 4-byte data-offset field itself.
	vkOffs = append(vkOffs, b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegDWORD,
		wire.VKDataInlineBit|4, 0x2A, []byte("Count"))))

	beData := []byte{0x00, 0x00, 0x00, 0x2A}
	beOff := b.AddCell(beData)
	vkOffs = append(vkOffs, b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegDWORDBigEndian,
		4, beOff, []byte("CountBE"))))

	qwData := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	qwOff := b.AddCell(qwData)
	vkOffs = append(vkOffs, b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegQWORD,
		8, qwOff, []byte("Big"))))

	multi := append(append(append(testhive.UTF16LEZ("a"), testhive.UTF16LEZ("bb")...), testhive.UTF16LEZ("ccc")...), 0, 0)
	multiOff := b.AddCell(multi)
	vkOffs = append(vkOffs, b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegMultiSZ,
		uint32(len(multi)), multiOff, []byte("Multi"))))

	expand := testhive.UTF16LEZ("%PATH%")
	expandOff := b.AddCell(expand)
	vkOffs = append(vkOffs, b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegExpandSZ,
		uint32(len(expand)), expandOff, []byte("Template"))))

	bin := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	binOff := b.AddCell(bin)
	vkOffs = append(vkOffs, b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegBinary,
		uint32(len(bin)), binOff, []byte("Bin"))))

	valueListOff := b.AddCell(testhive.ValueList(vkOffs))

	root := testhive.NK(wire.NKFlagCompressedName|wire.NKFlagIsRoot, 0,
		wire.InvalidOffset, 0, wire.InvalidOffset, uint32(len(vkOffs)), valueListOff, wire.InvalidOffset,
		wire.InvalidOffset, 0, []byte("Root"))
	rootOff := b.AddCell(root)

	buf := b.Build(rootOff, false)
	h, err := regfhive.Open(buf)
	require.NoError(t, err)
	root2, err := h.RootKeyNode()
	require.NoError(t, err)
	return root2
}

func TestInlineDword(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("Count")
	require.NoError(t, err)
	require.True(t, found)
	d, err := v.DwordData()
	require.NoError(t, err)
	require.Equal(t, uint32(0x2A), d)
}

func TestDwordBigEndian(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("CountBE")
	require.NoError(t, err)
	require.True(t, found)
	d, err := v.DwordData()
	require.NoError(t, err)
	require.Equal(t, uint32(0x2A), d)
}

func TestQword(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("Big")
	require.NoError(t, err)
	require.True(t, found)
	q, err := v.QwordData()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0807060504030201), q)
}

func TestMultiString(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("Multi")
	require.NoError(t, err)
	require.True(t, found)

	it, err := v.MultiStringData()
	require.NoError(t, err)

	var got []string
	for {
		s, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, s)
	}
	require.Equal(t, []string{"a", "bb", "ccc"}, got)
}

func TestExpandString(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("Template")
	require.NoError(t, err)
	require.True(t, found)
	s, err := v.StringData()
	require.NoError(t, err)
	require.Equal(t, "%PATH%", s)
}

func TestBinaryData(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("Bin")
	require.NoError(t, err)
	require.True(t, found)
	data, err := v.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}, data)
}

func TestWrongTypeAccessorRejected(t *testing.T) {
	root := buildValueFixture(t)
	v, found, err := root.Value("Bin")
	require.NoError(t, err)
	require.True(t, found)

	_, err = v.DwordData()
	require.True(t, isKind(err, regfhive.UnexpectedDataType))
}

func isKind(err error, kind regfhive.ErrorKind) bool {
	de, ok := err.(*regfhive.DecodeError)
	return ok && de.Kind == kind
}

func TestLinkStringData(t *testing.T) {
	b := testhive.New()
	target := testhive.UTF16LEZ(`\Registry\Machine\Software\Classes`)
	targetOff := b.AddCell(target)
	vkOff := b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegLink,
		uint32(len(target)), targetOff, []byte("SymbolicLinkValue")))
	valueListOff := b.AddCell(testhive.ValueList([]uint32{vkOff}))

	root := testhive.NK(wire.NKFlagCompressedName|wire.NKFlagIsRoot, 0,
		wire.InvalidOffset, 0, wire.InvalidOffset, 1, valueListOff, wire.InvalidOffset,
		wire.InvalidOffset, 0, []byte("Root"))
	rootOff := b.AddCell(root)

	h, err := regfhive.Open(b.Build(rootOff, false))
	require.NoError(t, err)
	root2, err := h.RootKeyNode()
	require.NoError(t, err)

	v, found, err := root2.Value("SymbolicLinkValue")
	require.NoError(t, err)
	require.True(t, found)
	s, err := v.StringData()
	require.NoError(t, err)
	require.Equal(t, `\Registry\Machine\Software\Classes`, s)
}

func TestOddLengthStringRejected(t *testing.T) {
	b := testhive.New()
	data := []byte{'a', 0, 'b'}
	dataOff := b.AddCell(data)
	vkOff := b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegSZ, uint32(len(data)), dataOff, []byte("Odd")))
	valueListOff := b.AddCell(testhive.ValueList([]uint32{vkOff}))

	root := testhive.NK(wire.NKFlagCompressedName|wire.NKFlagIsRoot, 0,
		wire.InvalidOffset, 0, wire.InvalidOffset, 1, valueListOff, wire.InvalidOffset,
		wire.InvalidOffset, 0, []byte("Root"))
	rootOff := b.AddCell(root)

	h, err := regfhive.Open(b.Build(rootOff, false))
	require.NoError(t, err)
	root2, err := h.RootKeyNode()
	require.NoError(t, err)

	v, found, err := root2.Value("Odd")
	require.NoError(t, err)
	require.True(t, found)
	_, err = v.StringData()
	require.True(t, isKind(err, regfhive.InvalidStringSize))
}

func TestMultiStringWithoutTrailingTerminator(t *testing.T) {
	b := testhive.New()
	// "a", then "bb" running to the end of the data with no terminator at
	// all; iteration stops at buffer end and still yields both strings.
	data := append(testhive.UTF16LEZ("a"), testhive.UTF16LE("bb")...)
	dataOff := b.AddCell(data)
	vkOff := b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegMultiSZ, uint32(len(data)), dataOff, []byte("Ragged")))
	valueListOff := b.AddCell(testhive.ValueList([]uint32{vkOff}))

	root := testhive.NK(wire.NKFlagCompressedName|wire.NKFlagIsRoot, 0,
		wire.InvalidOffset, 0, wire.InvalidOffset, 1, valueListOff, wire.InvalidOffset,
		wire.InvalidOffset, 0, []byte("Root"))
	rootOff := b.AddCell(root)

	h, err := regfhive.Open(b.Build(rootOff, false))
	require.NoError(t, err)
	root2, err := h.RootKeyNode()
	require.NoError(t, err)

	v, found, err := root2.Value("Ragged")
	require.NoError(t, err)
	require.True(t, found)

	it, err := v.MultiStringData()
	require.NoError(t, err)
	var got []string
	for {
		s, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, s)
	}
	require.Equal(t, []string{"a", "bb"}, got)
}

func TestZeroLengthData(t *testing.T) {
	b := testhive.New()
	vkOff := b.AddCell(testhive.VK(wire.VKFlagCompressedName, wire.RegBinary, 0, wire.InvalidOffset, []byte("Empty")))
	valueListOff := b.AddCell(testhive.ValueList([]uint32{vkOff}))

	root := testhive.NK(wire.NKFlagCompressedName|wire.NKFlagIsRoot, 0,
		wire.InvalidOffset, 0, wire.InvalidOffset, 1, valueListOff, wire.InvalidOffset,
		wire.InvalidOffset, 0, []byte("Root"))
	rootOff := b.AddCell(root)

	h, err := regfhive.Open(b.Build(rootOff, false))
	require.NoError(t, err)
	root2, err := h.RootKeyNode()
	require.NoError(t, err)

	v, found, err := root2.Value("Empty")
	require.NoError(t, err)
	require.True(t, found)
	data, err := v.Data()
	require.NoError(t, err)
	require.Empty(t, data)
}
