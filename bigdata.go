package regfhive

import (
	"github.com/joshuapare/regfhive/internal/bufview"
	"github.com/joshuapare/regfhive/internal/wire"
)

// parseBigData reassembles a value's data from a "db" record: a small
// header pointing at a flat array of segment cell offsets, each holding up
// to wire.DBChunkSize bytes, the last one partial. The result is freshly
// allocated since it stitches multiple non-contiguous cells together.
func parseBigData(h *Hive, dbPayload []byte, absOff int, totalLen uint32) ([]byte, error) {
	if len(dbPayload) < wire.DBHeaderSize {
		return nil, newErrf(InvalidBigDataSignature, absOff, "db payload too small: %d bytes", len(dbPayload))
	}
	if dbPayload[0] != 'd' || dbPayload[1] != 'b' {
		return nil, newErrf(InvalidBigDataSignature, absOff, "got %q", dbPayload[:2])
	}

	count, _ := bufview.U16LE(dbPayload, wire.DBCountOffset)
	listOff, _ := bufview.U32LE(dbPayload, wire.DBListOffset)

	listPayload, listAbsOff, err := h.resolveCell(listOff)
	if err != nil {
		return nil, err
	}
	segs, ok := bufview.Slice(listPayload, 0, int(count)*4)
	if !ok {
		return nil, newErrf(InvalidBigDataSignature, listAbsOff,
			"segment list too small for %d segments", count)
	}

	out := make([]byte, totalLen)
	var pos, remaining uint32 = 0, totalLen
	for i := 0; i < int(count) && remaining > 0; i++ {
		segCellOff, _ := bufview.U32LE(segs, i*4)
		segPayload, segAbsOff, err := h.resolveCell(segCellOff)
		if err != nil {
			return nil, err
		}
		chunk := remaining
		if chunk > wire.DBChunkSize {
			chunk = wire.DBChunkSize
		}
		data, ok := bufview.Slice(segPayload, 0, int(chunk))
		if !ok {
			return nil, newErrf(InvalidDataSize, segAbsOff,
				"big data segment (%d bytes) shorter than required %d", len(segPayload), chunk)
		}
		copy(out[pos:], data)
		pos += chunk
		remaining -= chunk
	}
	if remaining > 0 {
		return nil, newErrf(InvalidDataSize, absOff,
			"big data segments cover %d of %d declared bytes", totalLen-remaining, totalLen)
	}
	return out, nil
}
