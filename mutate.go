package regfhive

import "github.com/joshuapare/regfhive/internal/wire"

// SetInPlace overwrites a value's existing data cell with newData, byte for
// byte, without touching any length field, allocating a cell, or relocating
// anything. It is the only mutation this package performs:
// the new payload must be exactly as long as the value's current data, and
// the value must not be inline or Big Data, each of which would require a
// structural change this package refuses to make.
func (v Value) SetInPlace(newData []byte) error {
	if v.inline {
		return newErr(ReadOnly, v.absOff, "value data is stored inline in the vk cell")
	}
	if v.dataLen > wire.DBChunkSize {
		return newErr(ReadOnly, v.absOff, "value data is a Big Data record")
	}
	if uint32(len(newData)) != v.dataLen {
		return newErrf(ReadOnly, v.absOff,
			"new length %d does not match existing length %d", len(newData), v.dataLen)
	}
	if v.dataLen == 0 {
		// Nothing to overwrite, and the data-offset field is unused.
		return nil
	}

	payload, absOff, err := v.h.resolveCell(v.dataOff)
	if err != nil {
		return err
	}
	if len(payload) < len(newData) {
		return newErrf(InvalidDataSize, absOff, "data cell (%d bytes) shorter than %d", len(payload), len(newData))
	}
	copy(payload, newData)
	return nil
}
