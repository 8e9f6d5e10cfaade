package regfhive

import (
	"io"
	"sort"

	"github.com/joshuapare/regfhive/internal/bufview"
	"github.com/joshuapare/regfhive/internal/strview"
	"github.com/joshuapare/regfhive/internal/wire"
)

// maxSubkeyListDepth bounds "ri" recursion. The real format never nests more
// than a couple of levels deep; this is a generous ceiling against a crafted
// or cyclic hive rather than a realistic depth.
const maxSubkeyListDepth = 32

type listKind int

const (
	listLF listKind = iota
	listLH
	listLI
	listRI
)

// subkeyList is a decoded view over one lf/lh/li/ri cell: a signature, an
// entry count, and a flat array of entries whose shape depends on kind.
type subkeyList struct {
	kind listKind
	buf  []byte
	n    int
}

func parseSubkeyList(h *Hive, relOffset uint32) (subkeyList, error) {
	payload, absOff, err := h.resolveCell(relOffset)
	if err != nil {
		return subkeyList{}, err
	}
	if len(payload) < wire.ListEntriesOffset {
		return subkeyList{}, newErrf(InvalidSubkeyListSignature, absOff,
			"list payload too small: %d bytes", len(payload))
	}

	var kind listKind
	switch {
	case payload[0] == 'l' && payload[1] == 'f':
		kind = listLF
	case payload[0] == 'l' && payload[1] == 'h':
		kind = listLH
	case payload[0] == 'l' && payload[1] == 'i':
		kind = listLI
	case payload[0] == 'r' && payload[1] == 'i':
		kind = listRI
	default:
		return subkeyList{}, newErrf(InvalidSubkeyListSignature, absOff, "got %q", payload[:2])
	}

	count, _ := bufview.U16LE(payload, wire.ListCountOffset)
	entrySize := wire.LIRIEntrySize
	if kind == listLF || kind == listLH {
		entrySize = wire.LFLHEntrySize
	}
	need := int(count) * entrySize
	entries, ok := bufview.Slice(payload, wire.ListEntriesOffset, need)
	if !ok {
		return subkeyList{}, newErrf(InvalidSubkeyCount, absOff+wire.ListEntriesOffset,
			"declared count %d overruns cell", count)
	}

	return subkeyList{kind: kind, buf: entries, n: int(count)}, nil
}

func (l subkeyList) count() int { return l.n }

func (l subkeyList) entryCellOffset(i int) uint32 {
	off := i * entryStride(l.kind)
	v, _ := bufview.U32LE(l.buf, off)
	return v
}

func entryStride(k listKind) int {
	if k == listLF || k == listLH {
		return wire.LFLHEntrySize
	}
	return wire.LIRIEntrySize
}

// entryKey returns the lf/lh sort key for entry i, packed so that ascending
// numeric order matches the on-disk sort order. For lf, the four raw hint
// bytes are packed big-endian (preserving byte-lexicographic order); for lh,
// the stored hash is already a plain little-endian uint32.
func (l subkeyList) entryKey(i int) uint32 {
	off := i*entryStride(l.kind) + 4
	switch l.kind {
	case listLF:
		b, _ := bufview.Slice(l.buf, off, 4)
		return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	case listLH:
		v, _ := bufview.U32LE(l.buf, off)
		return v
	default:
		return 0
	}
}

// lfHintKey computes the lf probe key for name the same way the on-disk
// hint is built: the first four characters, upper-cased where ASCII and
// zero elsewhere, zero-padded, packed big-endian.
func lfHintKey(name string) uint32 {
	var b [4]byte
	i := 0
	for _, r := range name {
		if i >= 4 {
			break
		}
		if r <= 0x7F {
			b[i] = asciiUpper(byte(r))
		}
		i++
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func asciiUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// lookupSubkey resolves name against lst, recursing into "ri" indirection
// blocks up to maxSubkeyListDepth deep.
func lookupSubkey(h *Hive, lst subkeyList, name string, depth int) (KeyNode, bool, error) {
	if depth > maxSubkeyListDepth {
		return KeyNode{}, false, newErr(RecursionLimit, 0, "subkey list nesting exceeds limit")
	}

	switch lst.kind {
	case listLF, listLH:
		var probe uint32
		if lst.kind == listLF {
			probe = lfHintKey(name)
		} else {
			probe = strview.HashFold(name)
		}
		lo := sort.Search(lst.count(), func(i int) bool { return lst.entryKey(i) >= probe })
		for i := lo; i < lst.count() && lst.entryKey(i) == probe; i++ {
			kn, match, err := matchSubkeyEntry(h, lst, i, name)
			if err != nil {
				return KeyNode{}, false, err
			}
			if match {
				return kn, true, nil
			}
		}
		return KeyNode{}, false, nil

	case listLI:
		for i := 0; i < lst.count(); i++ {
			kn, match, err := matchSubkeyEntry(h, lst, i, name)
			if err != nil {
				return KeyNode{}, false, err
			}
			if match {
				return kn, true, nil
			}
		}
		return KeyNode{}, false, nil

	case listRI:
		for i := 0; i < lst.count(); i++ {
			sub, err := parseSubkeyList(h, lst.entryCellOffset(i))
			if err != nil {
				return KeyNode{}, false, err
			}
			kn, found, err := lookupSubkey(h, sub, name, depth+1)
			if err != nil || found {
				return kn, found, err
			}
		}
		return KeyNode{}, false, nil
	}
	return KeyNode{}, false, nil
}

func matchSubkeyEntry(h *Hive, lst subkeyList, i int, name string) (KeyNode, bool, error) {
	payload, absOff, err := h.resolveCell(lst.entryCellOffset(i))
	if err != nil {
		return KeyNode{}, false, err
	}
	kn, err := parseKeyNode(h, payload, absOff)
	if err != nil {
		return KeyNode{}, false, err
	}
	raw, flavor := kn.NameRaw()
	if strview.EqualFold(raw, flavor, name) {
		return kn, true, nil
	}
	return KeyNode{}, false, nil
}

// listFrame is one stack entry of a SubkeyIter: a list plus the next index
// to visit within it.
type listFrame struct {
	lst subkeyList
	idx int
}

// SubkeyIter lazily flattens a key's subkey list — including any "ri"
// indirection — into a sequence of child KeyNodes in on-disk order.
type SubkeyIter struct {
	h     *Hive
	stack []listFrame
	done  bool
	err   error
}

// Next returns the next child key node, io.EOF once exhausted, or a decode
// error at the offending step (after which the iterator is exhausted).
func (it *SubkeyIter) Next() (KeyNode, error) {
	if it.done {
		if it.err != nil {
			err := it.err
			it.err = nil
			return KeyNode{}, err
		}
		return KeyNode{}, io.EOF
	}

	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.idx >= top.lst.count() {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		if top.lst.kind == listRI {
			off := top.lst.entryCellOffset(top.idx)
			top.idx++
			if len(it.stack) >= maxSubkeyListDepth {
				it.done = true
				return KeyNode{}, newErr(RecursionLimit, 0, "subkey list nesting exceeds limit")
			}
			sub, err := parseSubkeyList(it.h, off)
			if err != nil {
				it.done = true
				return KeyNode{}, err
			}
			it.stack = append(it.stack, listFrame{lst: sub})
			continue
		}

		off := top.lst.entryCellOffset(top.idx)
		top.idx++
		payload, absOff, err := it.h.resolveCell(off)
		if err != nil {
			it.done = true
			return KeyNode{}, err
		}
		kn, err := parseKeyNode(it.h, payload, absOff)
		if err != nil {
			it.done = true
			return KeyNode{}, err
		}
		return kn, nil
	}

	it.done = true
	return KeyNode{}, io.EOF
}
