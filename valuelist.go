package regfhive

import (
	"io"

	"github.com/joshuapare/regfhive/internal/bufview"
)

// valueList is the flat array of VK cell offsets a key node points to. It
// carries no header of its own; length comes from the key node's declared
// value count.
type valueList struct {
	buf []byte
	n   int
}

func parseValueList(h *Hive, relOffset uint32, count uint32) (valueList, error) {
	payload, absOff, err := h.resolveCell(relOffset)
	if err != nil {
		return valueList{}, err
	}
	need := int(count) * 4
	entries, ok := bufview.Slice(payload, 0, need)
	if !ok {
		return valueList{}, newErrf(InvalidValueCount, absOff,
			"declared value count %d overruns cell", count)
	}
	return valueList{buf: entries, n: int(count)}, nil
}

func (l valueList) count() int { return l.n }

func (l valueList) entryCellOffset(i int) uint32 {
	v, _ := bufview.U32LE(l.buf, i*4)
	return v
}

// ValueIter lazily walks a key's value list in on-disk order (values are
// never sorted).
type ValueIter struct {
	h    *Hive
	list valueList
	idx  int
	done bool
	err  error
}

// Next returns the next value, io.EOF once exhausted, or a decode error at
// the offending step (after which the iterator is exhausted).
func (it *ValueIter) Next() (Value, error) {
	if it.done {
		if it.err != nil {
			err := it.err
			it.err = nil
			return Value{}, err
		}
		return Value{}, io.EOF
	}
	if it.idx >= it.list.count() {
		it.done = true
		return Value{}, io.EOF
	}

	off := it.list.entryCellOffset(it.idx)
	it.idx++
	payload, absOff, err := it.h.resolveCell(off)
	if err != nil {
		it.done = true
		return Value{}, err
	}
	v, err := parseValue(it.h, payload, absOff)
	if err != nil {
		it.done = true
		return Value{}, err
	}
	return v, nil
}
