package regfhive

import (
	"encoding/binary"
	"io"

	"github.com/joshuapare/regfhive/internal/bufview"
	"github.com/joshuapare/regfhive/internal/strview"
	"github.com/joshuapare/regfhive/internal/wire"
)

// Value is a decoded "vk" cell: a value's name, declared type, and a
// pointer to (or inline copy of) its data.
type Value struct {
	h      *Hive
	absOff int // absolute offset of the vk payload, for SetInPlace

	nameRaw  []byte
	dataType uint32
	dataLen  uint32 // masked, high bit stripped
	inline   bool
	dataOff  uint32 // relative cell offset, or the 4 raw inline bytes packed LE
	flags    uint16
}

func parseValue(h *Hive, payload []byte, absOff int) (Value, error) {
	if len(payload) < wire.VKFixedHeaderSize {
		return Value{}, newErrf(InvalidValueKeySignature, absOff, "vk payload too small: %d bytes", len(payload))
	}
	if payload[0] != 'v' || payload[1] != 'k' {
		return Value{}, newErrf(InvalidValueKeySignature, absOff, "got %q", payload[:2])
	}

	nameLen, _ := bufview.U16LE(payload, wire.VKNameLenOffset)
	rawDataLen, _ := bufview.U32LE(payload, wire.VKDataLenOffset)
	dataOff, _ := bufview.U32LE(payload, wire.VKDataOffOffset)
	dataType, _ := bufview.U32LE(payload, wire.VKTypeOffset)
	flags, _ := bufview.U16LE(payload, wire.VKFlagsOffset)

	nameRaw, ok := bufview.Slice(payload, wire.VKNameOffset, int(nameLen))
	if !ok {
		return Value{}, newErrf(InvalidNameLength, absOff+wire.VKNameOffset,
			"declared name length %d exceeds payload", nameLen)
	}

	return Value{
		h:        h,
		absOff:   absOff,
		nameRaw:  nameRaw,
		dataType: dataType,
		dataLen:  rawDataLen & wire.VKDataLengthMask,
		inline:   rawDataLen&wire.VKDataInlineBit != 0,
		dataOff:  dataOff,
		flags:    flags,
	}, nil
}

func (v Value) nameFlavor() strview.Flavor {
	if v.flags&wire.VKFlagCompressedName != 0 {
		return strview.Latin1
	}
	return strview.UTF16LE
}

// NameRaw returns the value name's undecoded bytes and storage flavor.
func (v Value) NameRaw() ([]byte, strview.Flavor) { return v.nameRaw, v.nameFlavor() }

// Name decodes the value name to UTF-8. An empty name denotes the key's
// unnamed ("default") value.
func (v Value) Name() (string, error) {
	return strview.DecodeToUTF8(v.nameRaw, v.nameFlavor())
}

// DataType returns the raw REG_* type tag (wire.RegSZ, wire.RegDWORD, ...).
func (v Value) DataType() uint32 { return v.dataType }

// DataSize returns the value's declared data length in bytes.
func (v Value) DataSize() uint32 { return v.dataLen }

// Flags returns the raw vk flags bitfield.
func (v Value) Flags() uint16 { return v.flags }

// IsTombstone reports whether the value is a deleted-but-not-yet-reclaimed
// placeholder.
func (v Value) IsTombstone() bool { return v.flags&wire.VKFlagTombstone != 0 }

// Data returns the value's raw bytes. Inline values are copied out of the
// vk's data-offset field into a new slice. Other values of length at or
// under wire.DBChunkSize borrow directly from the hive's backing buffer;
// larger values are reassembled from a Big Data record and newly allocated.
func (v Value) Data() ([]byte, error) {
	if v.inline {
		if v.dataLen > 4 {
			return nil, newErrf(InvalidDataSize, v.absOff, "inline data length %d exceeds 4 bytes", v.dataLen)
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v.dataOff)
		return b[:v.dataLen], nil
	}
	if v.dataLen == 0 {
		return nil, nil
	}

	payload, absOff, err := v.h.resolveCell(v.dataOff)
	if err != nil {
		return nil, err
	}

	if v.dataLen <= wire.DBChunkSize {
		data, ok := bufview.Slice(payload, 0, int(v.dataLen))
		if !ok {
			return nil, newErrf(InvalidDataSize, absOff,
				"data cell (%d bytes) shorter than declared length %d", len(payload), v.dataLen)
		}
		return data, nil
	}

	return parseBigData(v.h, payload, absOff, v.dataLen)
}

// StringData decodes a REG_SZ, REG_EXPAND_SZ, or REG_LINK value as
// UTF-16LE, trimming one trailing NUL code unit if present. It does not
// expand %VAR% tokens or resolve link targets.
func (v Value) StringData() (string, error) {
	switch v.dataType {
	case wire.RegSZ, wire.RegExpandSZ, wire.RegLink:
	default:
		return "", newErrf(UnexpectedDataType, v.absOff,
			"type %d is not REG_SZ/REG_EXPAND_SZ/REG_LINK", v.dataType)
	}
	raw, err := v.Data()
	if err != nil {
		return "", err
	}
	if len(raw)%2 != 0 {
		return "", newErrf(InvalidStringSize, v.absOff, "string data length %d is odd", len(raw))
	}
	raw = trimTrailingUTF16NUL(raw)
	return strview.DecodeToUTF8(raw, strview.UTF16LE)
}

func trimTrailingUTF16NUL(raw []byte) []byte {
	if len(raw) >= 2 && raw[len(raw)-2] == 0 && raw[len(raw)-1] == 0 {
		return raw[:len(raw)-2]
	}
	return raw
}

// MultiStringData returns a lazy iterator over a REG_MULTI_SZ value's
// NUL-terminated UTF-16LE strings.
func (v Value) MultiStringData() (*MultiStringIter, error) {
	if v.dataType != wire.RegMultiSZ {
		return nil, newErrf(UnexpectedDataType, v.absOff, "type %d is not REG_MULTI_SZ", v.dataType)
	}
	raw, err := v.Data()
	if err != nil {
		return nil, err
	}
	return &MultiStringIter{raw: raw}, nil
}

// MultiStringIter walks the embedded NUL-terminated UTF-16LE strings of a
// REG_MULTI_SZ value, stopping at an empty string or the end of the buffer.
type MultiStringIter struct {
	raw  []byte
	pos  int
	done bool
}

func (it *MultiStringIter) Next() (string, error) {
	if it.done || it.pos+2 > len(it.raw) {
		it.done = true
		return "", io.EOF
	}
	start := it.pos
	terminated := false
	for it.pos+2 <= len(it.raw) {
		u, _ := bufview.U16LE(it.raw, it.pos)
		it.pos += 2
		if u == 0 {
			terminated = true
			break
		}
	}
	end := it.pos
	if terminated {
		end -= 2
	}
	if end <= start {
		it.done = true
		return "", io.EOF
	}
	s, err := strview.DecodeToUTF8(it.raw[start:end], strview.UTF16LE)
	if err != nil {
		it.done = true
		return "", err
	}
	return s, nil
}

// DwordData decodes a REG_DWORD or REG_DWORD_BIG_ENDIAN value.
func (v Value) DwordData() (uint32, error) {
	if v.dataType != wire.RegDWORD && v.dataType != wire.RegDWORDBigEndian {
		return 0, newErrf(UnexpectedDataType, v.absOff, "type %d is not REG_DWORD", v.dataType)
	}
	raw, err := v.Data()
	if err != nil {
		return 0, err
	}
	if len(raw) != 4 {
		return 0, newErrf(InvalidDataSize, v.absOff, "dword data length %d, want 4", len(raw))
	}
	if v.dataType == wire.RegDWORDBigEndian {
		return binary.BigEndian.Uint32(raw), nil
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// QwordData decodes a REG_QWORD value.
func (v Value) QwordData() (uint64, error) {
	if v.dataType != wire.RegQWORD {
		return 0, newErrf(UnexpectedDataType, v.absOff, "type %d is not REG_QWORD", v.dataType)
	}
	raw, err := v.Data()
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, newErrf(InvalidDataSize, v.absOff, "qword data length %d, want 8", len(raw))
	}
	return binary.LittleEndian.Uint64(raw), nil
}
