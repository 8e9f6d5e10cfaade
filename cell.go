package regfhive

import (
	"github.com/joshuapare/regfhive/internal/bufview"
	"github.com/joshuapare/regfhive/internal/wire"
)

// resolveCell dereferences relOffset — an HCELL_INDEX relative to the start
// of the hive-bins area — and returns the cell's payload
// bytes (header stripped) plus the absolute file offset of the payload's
// first byte, for callers that need to derive further offsets from it (e.g.
// Value.SetInPlace).
//
// Every dereference locates the enclosing hive bin
// by walking bin headers from the start of the bins area, validates that
// bin's signature and recorded self-offset, then validates the cell framing
// (allocated, size a multiple of 8, within the bin's remaining payload)
// before handing back the payload.
func (h *Hive) resolveCell(relOffset uint32) (payload []byte, absOffset int, err error) {
	abs, ok := bufview.AddOverflowSafe(wire.HeaderSize, int(relOffset))
	if !ok || abs < wire.HeaderSize || abs+wire.CellHeaderSize > len(h.data) {
		return nil, 0, newErrf(CellOffsetOutOfRange, abs, "relative offset 0x%X", relOffset)
	}

	binStart, binSize, err := h.findBin(abs)
	if err != nil {
		return nil, 0, err
	}
	binEnd := binStart + binSize

	rawSize, ok := bufview.I32LE(h.data, abs)
	if !ok {
		return nil, 0, newErr(InvalidCellSize, abs, "cell header truncated")
	}
	if rawSize == 0 {
		return nil, 0, newErr(InvalidCellSize, abs, "size is zero")
	}
	size := int(rawSize)
	if size > 0 {
		return nil, 0, newErr(CellNotAllocated, abs, "cell header is positive (free)")
	}
	size = -size

	if size%wire.CellAlignment != 0 {
		return nil, 0, newErrf(InvalidCellSize, abs, "size %d is not a multiple of %d", size, wire.CellAlignment)
	}
	if end, ok := bufview.AddOverflowSafe(abs, size); !ok || end > binEnd {
		return nil, 0, newErrf(InvalidCellSize, abs, "size %d overruns bin payload ending at 0x%X", size, binEnd)
	}

	payloadOff := abs + wire.CellHeaderSize
	return h.data[payloadOff : abs+size], payloadOff, nil
}

// findBin walks hive-bin headers starting at offset 4096, validating each in
// turn, until it finds the bin whose extent contains abs. It returns that
// bin's absolute start offset and total size.
func (h *Hive) findBin(abs int) (binStart, binSize int, err error) {
	pos := wire.HeaderSize
	for pos < len(h.data) {
		sig, ok := bufview.Slice(h.data, pos, 4)
		if !ok || string(sig) != string(wire.HBINSignature) {
			return 0, 0, newErrf(InvalidBinSignature, pos, "got %q", sig)
		}

		echo, ok := bufview.U32LE(h.data, pos+wire.HBINOffsetFieldOff)
		if !ok || int(echo) != pos-wire.HeaderSize {
			return 0, 0, newErrf(InvalidBinSignature, pos+wire.HBINOffsetFieldOff,
				"self-offset echo 0x%X does not match actual bin offset 0x%X", echo, pos-wire.HeaderSize)
		}

		sz, ok := bufview.U32LE(h.data, pos+wire.HBINSizeFieldOff)
		if !ok || sz == 0 || sz%wire.BinAlignment != 0 {
			return 0, 0, newErrf(InvalidBinSize, pos+wire.HBINSizeFieldOff, "size 0x%X", sz)
		}
		end, ok := bufview.AddOverflowSafe(pos, int(sz))
		if !ok || end > len(h.data) {
			return 0, 0, newErrf(InvalidBinSize, pos+wire.HBINSizeFieldOff,
				"bin of size 0x%X at 0x%X exceeds buffer", sz, pos)
		}

		if abs >= pos && abs < end {
			return pos, int(sz), nil
		}
		pos = end
	}
	return 0, 0, newErrf(CellOffsetOutOfRange, abs, "offset is not inside any hive bin")
}
