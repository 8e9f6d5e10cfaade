// Package testhive assembles synthetic, byte-exact regf buffers for tests.
// It is deliberately low-level: every cell is built from the same wire
// offsets the decoder itself uses, so a passing test is a statement about
// the decoder's reading of the format, not about a second, independent
// encoder's idea of it.
package testhive

import (
	"encoding/binary"

	"github.com/joshuapare/regfhive/internal/wire"
)

// Builder lays out one hive bin as a flat, growing byte slice, handing back
// relative cell offsets (relative to the start of the bins area, i.e. to
// absolute offset wire.HeaderSize) as cells are added.
type Builder struct {
	bin []byte
}

// New starts a builder with its bin header reserved (filled in by Build).
func New() *Builder {
	return &Builder{bin: make([]byte, wire.HBINHeaderSize)}
}

// NextOffset previews the relative offset AddCell would assign to a cell
// added right now, so a caller can build a cell that references its own
// offset (e.g. a cyclic "ri" list, for recursion-limit tests).
func (b *Builder) NextOffset() uint32 { return uint32(len(b.bin)) }

// AddCell appends body as an allocated cell (negative size prefix, padded to
// an 8-byte multiple) and returns its relative offset.
func (b *Builder) AddCell(body []byte) uint32 {
	relOffset := uint32(len(b.bin))

	raw := 4 + len(body)
	padded := raw
	if rem := padded % wire.CellAlignment; rem != 0 {
		padded += wire.CellAlignment - rem
	}

	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(int32(-padded)))

	b.bin = append(b.bin, header...)
	b.bin = append(b.bin, body...)
	b.bin = append(b.bin, make([]byte, padded-raw)...)
	return relOffset
}

// Build assembles the full hive buffer: the base header followed by this
// builder's single bin, padded to a 4096-byte multiple. rootCellOff is the
// relative offset of the root nk cell. When mismatchSeq is true, the header
// carries mismatched sequence numbers and a checksum computed over that
// mismatched state (for OpenLax tests); Open must reject it.
func (b *Builder) Build(rootCellOff uint32, mismatchSeq bool) []byte {
	binSize := len(b.bin)
	if rem := binSize % wire.BinAlignment; rem != 0 {
		b.bin = append(b.bin, make([]byte, wire.BinAlignment-rem)...)
		binSize = len(b.bin)
	}

	copy(b.bin[0:4], wire.HBINSignature)
	binary.LittleEndian.PutUint32(b.bin[4:8], 0) // self-offset echo: first and only bin
	binary.LittleEndian.PutUint32(b.bin[8:12], uint32(binSize))

	buf := make([]byte, wire.HeaderSize+binSize)
	copy(buf[0:4], wire.REGFSignature)

	seq1 := uint32(7)
	seq2 := uint32(7)
	if mismatchSeq {
		seq2 = 8
	}
	binary.LittleEndian.PutUint32(buf[wire.REGFPrimarySeqOffset:], seq1)
	binary.LittleEndian.PutUint32(buf[wire.REGFSecondarySeqOffset:], seq2)
	binary.LittleEndian.PutUint64(buf[wire.REGFLastWriteOffset:], 0x01D5000000000000)
	binary.LittleEndian.PutUint32(buf[wire.REGFMajorVersionOffset:], wire.REGFMajorVersionSupported)
	binary.LittleEndian.PutUint32(buf[wire.REGFMinorVersionOffset:], 5)
	binary.LittleEndian.PutUint32(buf[wire.REGFFileTypeOffset:], wire.REGFFileTypePrimary)
	binary.LittleEndian.PutUint32(buf[wire.REGFFileFormatOffset:], wire.REGFFileFormatDirect)
	binary.LittleEndian.PutUint32(buf[wire.REGFRootCellOffset:], rootCellOff)
	binary.LittleEndian.PutUint32(buf[wire.REGFDataSizeOffset:], uint32(binSize))
	binary.LittleEndian.PutUint32(buf[wire.REGFClusterOffset:], 1)

	copy(buf[wire.HeaderSize:], b.bin)

	var sum uint32
	for i := 0; i < wire.REGFChecksumDwords; i++ {
		sum ^= binary.LittleEndian.Uint32(buf[i*4:])
	}
	binary.LittleEndian.PutUint32(buf[wire.REGFChecksumOffset:], sum)

	return buf
}

// NK builds an "nk" cell body. classNameOff/classNameLen are wire.InvalidOffset/0
// when the key has no class name.
func NK(flags uint16, lastWrite uint64, parentOff, subkeyCount, subkeyListOff, valueCount, valueListOff, securityOff, classNameOff uint32, classNameLen uint16, name []byte) []byte {
	body := make([]byte, wire.NKNameOffset+len(name))
	body[0], body[1] = 'n', 'k'
	binary.LittleEndian.PutUint16(body[wire.NKFlagsOffset:], flags)
	binary.LittleEndian.PutUint64(body[wire.NKLastWriteOffset:], lastWrite)
	binary.LittleEndian.PutUint32(body[wire.NKParentOffset:], parentOff)
	binary.LittleEndian.PutUint32(body[wire.NKSubkeyCountOffset:], subkeyCount)
	binary.LittleEndian.PutUint32(body[wire.NKVolSubkeyCountOffset:], 0)
	binary.LittleEndian.PutUint32(body[wire.NKSubkeyListOffset:], subkeyListOff)
	binary.LittleEndian.PutUint32(body[wire.NKVolSubkeyListOffset:], wire.InvalidOffset)
	binary.LittleEndian.PutUint32(body[wire.NKValueCountOffset:], valueCount)
	binary.LittleEndian.PutUint32(body[wire.NKValueListOffset:], valueListOff)
	binary.LittleEndian.PutUint32(body[wire.NKSecurityOffset:], securityOff)
	binary.LittleEndian.PutUint32(body[wire.NKClassNameOffset:], classNameOff)
	binary.LittleEndian.PutUint16(body[wire.NKNameLenOffset:], uint16(len(name)))
	binary.LittleEndian.PutUint16(body[wire.NKClassLenOffset:], classNameLen)
	copy(body[wire.NKNameOffset:], name)
	return body
}

// VK builds a "vk" cell body. rawDataLen must already carry
// wire.VKDataInlineBit if the value is inline.
func VK(flags uint16, dataType uint32, rawDataLen uint32, dataOff uint32, name []byte) []byte {
	body := make([]byte, wire.VKNameOffset+len(name))
	body[0], body[1] = 'v', 'k'
	binary.LittleEndian.PutUint16(body[wire.VKNameLenOffset:], uint16(len(name)))
	binary.LittleEndian.PutUint32(body[wire.VKDataLenOffset:], rawDataLen)
	binary.LittleEndian.PutUint32(body[wire.VKDataOffOffset:], dataOff)
	binary.LittleEndian.PutUint32(body[wire.VKTypeOffset:], dataType)
	binary.LittleEndian.PutUint16(body[wire.VKFlagsOffset:], flags)
	copy(body[wire.VKNameOffset:], name)
	return body
}

// LFLHEntry is one hinted entry of an lf/lh list.
type LFLHEntry struct {
	CellOffset uint32
	Hint       [4]byte // raw lf hint bytes, or an lh hash packed little-endian
}

func lflh(sig []byte, entries []LFLHEntry) []byte {
	body := make([]byte, wire.ListEntriesOffset+len(entries)*wire.LFLHEntrySize)
	copy(body[0:2], sig)
	binary.LittleEndian.PutUint16(body[wire.ListCountOffset:], uint16(len(entries)))
	for i, e := range entries {
		off := wire.ListEntriesOffset + i*wire.LFLHEntrySize
		binary.LittleEndian.PutUint32(body[off:], e.CellOffset)
		copy(body[off+4:off+8], e.Hint[:])
	}
	return body
}

// LF builds an "lf" subkey list body.
func LF(entries []LFLHEntry) []byte { return lflh(wire.LFSignature, entries) }

// LH builds an "lh" subkey list body.
func LH(entries []LFLHEntry) []byte { return lflh(wire.LHSignature, entries) }

func flatList(sig []byte, offsets []uint32) []byte {
	body := make([]byte, wire.ListEntriesOffset+len(offsets)*wire.LIRIEntrySize)
	copy(body[0:2], sig)
	binary.LittleEndian.PutUint16(body[wire.ListCountOffset:], uint16(len(offsets)))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(body[wire.ListEntriesOffset+i*4:], off)
	}
	return body
}

// LI builds an "li" subkey list body.
func LI(offsets []uint32) []byte { return flatList(wire.LISignature, offsets) }

// RI builds an "ri" indirection list body, each entry pointing at a
// sub-list cell.
func RI(subListOffsets []uint32) []byte { return flatList(wire.RISignature, subListOffsets) }

// ValueList builds a key's flat value-list body (no header of its own).
func ValueList(vkOffsets []uint32) []byte {
	body := make([]byte, len(vkOffsets)*4)
	for i, off := range vkOffsets {
		binary.LittleEndian.PutUint32(body[i*4:], off)
	}
	return body
}

// DB builds a Big Data record header pointing at segListOff, a cell holding
// segCount plain uint32 offsets to the actual data segments.
func DB(segCount uint16, segListOff uint32) []byte {
	body := make([]byte, wire.DBHeaderSize)
	body[0], body[1] = 'd', 'b'
	binary.LittleEndian.PutUint16(body[wire.DBCountOffset:], segCount)
	binary.LittleEndian.PutUint32(body[wire.DBListOffset:], segListOff)
	return body
}

// UTF16LE encodes an ASCII string as UTF-16LE bytes (test convenience; no
// surrogate handling needed for the plain-ASCII names tests use here).
func UTF16LE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

// UTF16LEZ is UTF16LE with a trailing NUL code unit appended.
func UTF16LEZ(s string) []byte { return append(UTF16LE(s), 0, 0) }
