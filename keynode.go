package regfhive

import (
	"io"
	"strings"

	"github.com/joshuapare/regfhive/internal/bufview"
	"github.com/joshuapare/regfhive/internal/strview"
	"github.com/joshuapare/regfhive/internal/wire"
)

// KeyNode is a decoded "nk" cell: a registry key's metadata, plus pointers
// to its subkey list and value list. It borrows entirely from the Hive's
// backing buffer.
type KeyNode struct {
	h   *Hive
	off int

	flags         uint16
	lastWrite     uint64
	parentOff     uint32
	subkeyCount   uint32
	subkeyListOff uint32
	valueCount    uint32
	valueListOff  uint32
	securityOff   uint32
	classNameOff  uint32
	classNameLen  uint16

	nameRaw []byte
}

func parseKeyNode(h *Hive, payload []byte, absOff int) (KeyNode, error) {
	if len(payload) < wire.NKFixedHeaderSize {
		return KeyNode{}, newErrf(InvalidKeyNodeSignature, absOff, "nk payload too small: %d bytes", len(payload))
	}
	if payload[0] != 'n' || payload[1] != 'k' {
		return KeyNode{}, newErrf(InvalidKeyNodeSignature, absOff, "got %q", payload[:2])
	}

	flags, _ := bufview.U16LE(payload, wire.NKFlagsOffset)
	lastWrite, _ := bufview.U64LE(payload, wire.NKLastWriteOffset)
	parentOff, _ := bufview.U32LE(payload, wire.NKParentOffset)
	subkeyCount, _ := bufview.U32LE(payload, wire.NKSubkeyCountOffset)
	subkeyListOff, _ := bufview.U32LE(payload, wire.NKSubkeyListOffset)
	valueCount, _ := bufview.U32LE(payload, wire.NKValueCountOffset)
	valueListOff, _ := bufview.U32LE(payload, wire.NKValueListOffset)
	securityOff, _ := bufview.U32LE(payload, wire.NKSecurityOffset)
	classNameOff, _ := bufview.U32LE(payload, wire.NKClassNameOffset)
	classNameLen, _ := bufview.U16LE(payload, wire.NKClassLenOffset)
	nameLen, _ := bufview.U16LE(payload, wire.NKNameLenOffset)

	nameRaw, ok := bufview.Slice(payload, wire.NKNameOffset, int(nameLen))
	if !ok {
		return KeyNode{}, newErrf(InvalidNameLength, absOff+wire.NKNameLenOffset,
			"declared name length %d exceeds payload", nameLen)
	}

	return KeyNode{
		h:             h,
		off:           absOff,
		flags:         flags,
		lastWrite:     lastWrite,
		parentOff:     parentOff,
		subkeyCount:   subkeyCount,
		subkeyListOff: subkeyListOff,
		valueCount:    valueCount,
		valueListOff:  valueListOff,
		securityOff:   securityOff,
		classNameOff:  classNameOff,
		classNameLen:  classNameLen,
		nameRaw:       nameRaw,
	}, nil
}

// Offset returns the absolute file offset of the key node's payload, for
// correlating a node with DecodeError offsets or external tooling.
func (k KeyNode) Offset() int { return k.off }

// Flags returns the raw nk flags bitfield (compressed name, is-root,
// is-symlink, hive-entry, hive-exit, no-delete, predefined-handle,
// virtual-source/target/store).
func (k KeyNode) Flags() uint16 { return k.flags }

func (k KeyNode) IsCompressedName() bool { return k.flags&wire.NKFlagCompressedName != 0 }
func (k KeyNode) IsRoot() bool           { return k.flags&wire.NKFlagIsRoot != 0 }
func (k KeyNode) IsSymlink() bool        { return k.flags&wire.NKFlagIsSymlink != 0 }

func (k KeyNode) nameFlavor() strview.Flavor {
	if k.IsCompressedName() {
		return strview.Latin1
	}
	return strview.UTF16LE
}

// NameRaw returns the key name's undecoded bytes and its storage flavor, for
// zero-copy comparisons.
func (k KeyNode) NameRaw() ([]byte, strview.Flavor) { return k.nameRaw, k.nameFlavor() }

// Name decodes the key name to a UTF-8 string.
func (k KeyNode) Name() (string, error) {
	return strview.DecodeToUTF8(k.nameRaw, k.nameFlavor())
}

// LastWritten returns the key's last-written timestamp as a raw Windows
// FILETIME (100ns ticks since 1601-01-01 UTC); conversion is left to the
// caller.
func (k KeyNode) LastWritten() uint64 { return k.lastWrite }

// ClassName decodes the optional class-name cell (always UTF-16LE),
// truncated to the declared class-name length. found is false when the key
// has no class name.
func (k KeyNode) ClassName() (name string, found bool, err error) {
	if k.classNameLen == 0 || k.classNameOff == wire.InvalidOffset {
		return "", false, nil
	}
	payload, absOff, err := k.h.resolveCell(k.classNameOff)
	if err != nil {
		return "", false, err
	}
	data, ok := bufview.Slice(payload, 0, int(k.classNameLen))
	if !ok {
		return "", false, newErrf(InvalidDataSize, absOff,
			"class name cell (%d bytes) shorter than declared length %d", len(payload), k.classNameLen)
	}
	s, err := strview.DecodeToUTF8(data, strview.UTF16LE)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// SubkeyCount returns the stable subkey count declared by the key node.
func (k KeyNode) SubkeyCount() uint32 { return k.subkeyCount }

// ValueCount returns the declared value count.
func (k KeyNode) ValueCount() uint32 { return k.valueCount }

// Subkeys returns a lazy, restartable iterator over every direct child key,
// in on-disk order, transparently flattening any "ri" indirection.
func (k KeyNode) Subkeys() *SubkeyIter {
	it := &SubkeyIter{h: k.h}
	if k.subkeyCount == 0 || k.subkeyListOff == wire.InvalidOffset {
		it.done = true
		return it
	}
	lst, err := parseSubkeyList(k.h, k.subkeyListOff)
	if err != nil {
		it.done = true
		it.err = err
		return it
	}
	it.stack = []listFrame{{lst: lst}}
	return it
}

// Values returns a lazy, restartable iterator over the key's values, in
// on-disk order (values are not sorted).
func (k KeyNode) Values() *ValueIter {
	it := &ValueIter{h: k.h}
	if k.valueCount == 0 || k.valueListOff == wire.InvalidOffset {
		it.done = true
		return it
	}
	vl, err := parseValueList(k.h, k.valueListOff, k.valueCount)
	if err != nil {
		it.done = true
		it.err = err
		return it
	}
	it.list = vl
	return it
}

// Subkey looks up a single direct child by name, case-insensitively.
// found is false (err nil) when no child has that name.
func (k KeyNode) Subkey(name string) (child KeyNode, found bool, err error) {
	if k.subkeyCount == 0 || k.subkeyListOff == wire.InvalidOffset {
		return KeyNode{}, false, nil
	}
	lst, err := parseSubkeyList(k.h, k.subkeyListOff)
	if err != nil {
		return KeyNode{}, false, err
	}
	return lookupSubkey(k.h, lst, name, 0)
}

// Subpath resolves a backslash-separated chain of subkey names, ignoring
// empty path components, returning the final key node.
func (k KeyNode) Subpath(path string) (KeyNode, bool, error) {
	cur := k
	for _, part := range strings.Split(path, `\`) {
		if part == "" {
			continue
		}
		next, found, err := cur.Subkey(part)
		if err != nil || !found {
			return KeyNode{}, found, err
		}
		cur = next
	}
	return cur, true, nil
}

// Value looks up a value by name via a linear scan (values are not sorted
// on disk), case-insensitively.
func (k KeyNode) Value(name string) (v Value, found bool, err error) {
	it := k.Values()
	for {
		val, err := it.Next()
		if err == io.EOF {
			return Value{}, false, nil
		}
		if err != nil {
			return Value{}, false, err
		}
		raw, flavor := val.NameRaw()
		if strview.EqualFold(raw, flavor, name) {
			return val, true, nil
		}
	}
}
