// Package regfhive is a read-only decoder for Windows NT registry hive
// files (the "regf" on-disk format, NT 4.0 through modern Windows 10).
//
// # Overview
//
// A Hive wraps a caller-supplied, fully resident byte slice and exposes the
// tree of registry keys, their values, and the typed data those values
// carry, as views into that slice. Every derived view — KeyNode, Value,
// subkey and value iterators — borrows from the same backing buffer; the
// only copies are the data Value.Data returns for an inline or Big Data
// value, and strings decoded to UTF-8 (names, class names, string data).
//
// # Opening a hive
//
//	h, err := regfhive.Open(data)
//	if err != nil {
//	    var de *regfhive.DecodeError
//	    if errors.As(err, &de) {
//	        log.Fatalf("corrupt hive at offset 0x%X: %v", de.Offset, de)
//	    }
//	}
//	root, err := h.RootKeyNode()
//
// Open validates the header strictly (signature, sequence numbers,
// checksum, version, file type/format, and primary file size against the
// supplied buffer). OpenLax skips the sequence-number and checksum checks
// for salvage of hives with a stale secondary copy of the header, while
// still enforcing every structural invariant.
//
// # What this package does not do
//
// It never writes to the buffer except through Value.SetInPlace (see
// mutate.go), never grows a hive, allocates cells, rebalances an index,
// reconciles a transaction log, interprets security descriptors, resolves
// REG_LINK targets, or expands REG_EXPAND_SZ placeholders. How the caller
// obtained the buffer — file I/O, a boot-time block read — is entirely its
// own concern.
package regfhive

import (
	"github.com/joshuapare/regfhive/internal/bufview"
	"github.com/joshuapare/regfhive/internal/wire"
)

// Header is the subset of the base ("regf") block's fields a reader needs,
// decoded and validated once at Open/OpenLax time.
type Header struct {
	Sequence1        uint32
	Sequence2        uint32
	LastWrittenRaw   uint64 // Windows FILETIME, left to the caller to convert
	MajorVersion     uint32
	MinorVersion     uint32
	FileType         uint32
	FileFormat       uint32
	RootCellOffset   uint32 // relative to the first hive bin (offset 4096)
	PrimaryFileSize  uint32
	ClusteringFactor uint32
	Checksum         uint32
}

// Hive is a validated view over a caller-owned byte slice holding a
// complete regf file. All KeyNode, Value, and data views derived from it
// share its lifetime: none may outlive the backing slice.
type Hive struct {
	data   []byte
	header Header
}

// Open validates buf as a regf hive: signature, sequence-number equality,
// header checksum, primary file size, and supported version/type/format.
// Use OpenLax to tolerate a sequence mismatch or bad checksum for salvage.
func Open(buf []byte) (*Hive, error) {
	return open(buf, true)
}

// OpenLax validates buf like Open but does not require Sequence1 ==
// Sequence2 or a matching checksum. Every other structural check still
// applies.
func OpenLax(buf []byte) (*Hive, error) {
	return open(buf, false)
}

func open(buf []byte, strict bool) (*Hive, error) {
	if len(buf) < wire.HeaderSize {
		return nil, newErrf(InsufficientBuffer, 0,
			"buffer length %d is smaller than the %d-byte base header", len(buf), wire.HeaderSize)
	}

	sig, _ := bufview.Slice(buf, wire.REGFSignatureOffset, 4)
	if string(sig) != string(wire.REGFSignature) {
		return nil, newErrf(InvalidSignature, wire.REGFSignatureOffset, "got %q", sig)
	}

	seq1, _ := bufview.U32LE(buf, wire.REGFPrimarySeqOffset)
	seq2, _ := bufview.U32LE(buf, wire.REGFSecondarySeqOffset)
	if strict && seq1 != seq2 {
		return nil, newErrf(SequenceNumberMismatch, wire.REGFSecondarySeqOffset,
			"primary=%d secondary=%d", seq1, seq2)
	}

	stored, _ := bufview.U32LE(buf, wire.REGFChecksumOffset)
	computed := headerChecksum(buf)
	if strict && computed != stored {
		return nil, newErrf(InvalidChecksum, wire.REGFChecksumOffset,
			"computed=0x%08X stored=0x%08X", computed, stored)
	}

	major, _ := bufview.U32LE(buf, wire.REGFMajorVersionOffset)
	minor, _ := bufview.U32LE(buf, wire.REGFMinorVersionOffset)
	if major != wire.REGFMajorVersionSupported || !wire.SupportedMinorVersions[minor] {
		return nil, newErrf(UnsupportedVersion, wire.REGFMajorVersionOffset,
			"version %d.%d", major, minor)
	}

	fileType, _ := bufview.U32LE(buf, wire.REGFFileTypeOffset)
	if fileType != wire.REGFFileTypePrimary {
		return nil, newErrf(InvalidFileType, wire.REGFFileTypeOffset, "got %d", fileType)
	}

	fileFormat, _ := bufview.U32LE(buf, wire.REGFFileFormatOffset)
	if fileFormat != wire.REGFFileFormatDirect {
		return nil, newErrf(InvalidFileFormat, wire.REGFFileFormatOffset, "got %d", fileFormat)
	}

	primarySize, _ := bufview.U32LE(buf, wire.REGFDataSizeOffset)
	if primarySize%wire.BinAlignment != 0 {
		return nil, newErrf(InvalidPrimaryFileSize, wire.REGFDataSizeOffset,
			"%d is not a multiple of %d", primarySize, wire.BinAlignment)
	}
	if end, ok := bufview.AddOverflowSafe(wire.HeaderSize, int(primarySize)); !ok || end > len(buf) {
		return nil, newErrf(InvalidPrimaryFileSize, wire.REGFDataSizeOffset,
			"%d does not fit in a %d-byte buffer", primarySize, len(buf))
	}

	lastWrite, _ := bufview.U64LE(buf, wire.REGFLastWriteOffset)
	rootOff, _ := bufview.U32LE(buf, wire.REGFRootCellOffset)
	cluster, _ := bufview.U32LE(buf, wire.REGFClusterOffset)

	return &Hive{
		data: buf,
		header: Header{
			Sequence1:        seq1,
			Sequence2:        seq2,
			LastWrittenRaw:   lastWrite,
			MajorVersion:     major,
			MinorVersion:     minor,
			FileType:         fileType,
			FileFormat:       fileFormat,
			RootCellOffset:   rootOff,
			PrimaryFileSize:  primarySize,
			ClusteringFactor: cluster,
			Checksum:         stored,
		},
	}, nil
}

// headerChecksum computes the XOR of the first REGFChecksumDwords
// little-endian uint32s of the base header.
func headerChecksum(buf []byte) uint32 {
	var sum uint32
	for i := 0; i < wire.REGFChecksumDwords; i++ {
		v, _ := bufview.U32LE(buf, i*4)
		sum ^= v
	}
	return sum
}

// Header returns the validated base-header fields.
func (h *Hive) Header() Header { return h.header }

// Bytes returns the full backing buffer. Callers must not retain slices
// derived from it beyond the Hive's own lifetime assumptions.
func (h *Hive) Bytes() []byte { return h.data }

// RootKeyNode decodes and returns the key node at the hive's root cell.
func (h *Hive) RootKeyNode() (KeyNode, error) {
	payload, absOff, err := h.resolveCell(h.header.RootCellOffset)
	if err != nil {
		return KeyNode{}, err
	}
	return parseKeyNode(h, payload, absOff)
}
