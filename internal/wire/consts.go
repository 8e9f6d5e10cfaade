// Package wire holds the byte offsets, signatures, and size constants of the
// regf on-disk layout. It is data only — no decoding logic — so the layout
// lives in exactly one place.
package wire

var (
	// REGFSignature is the four-byte signature at the start of every hive.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}
	// HBINSignature starts every hive bin.
	HBINSignature = []byte{'h', 'b', 'i', 'n'}
	// NKSignature identifies a key-node cell payload.
	NKSignature = []byte{'n', 'k'}
	// VKSignature identifies a value-key cell payload.
	VKSignature = []byte{'v', 'k'}
	// LFSignature, LHSignature, LISignature, RISignature identify the four
	// subkey-list variants.
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}
	RISignature = []byte{'r', 'i'}
	// DBSignature identifies a Big Data record.
	DBSignature = []byte{'d', 'b'}
)

const (
	// HeaderSize is the size of the base (REGF) header and the fixed offset
	// where the first hive bin begins.
	HeaderSize = 4096

	// HBINHeaderSize is the size of one hive-bin header.
	HBINHeaderSize = 0x20
	// HBINOffsetFieldOff is the self-location field (bin start - 0x1000).
	HBINOffsetFieldOff = 0x04
	// HBINSizeFieldOff is the total-bin-size field.
	HBINSizeFieldOff = 0x08

	// CellHeaderSize is the signed 32-bit length preceding every cell.
	CellHeaderSize = 4
	// CellAlignment is the required 8-byte alignment of cell sizes.
	CellAlignment = 8

	// Alignment is always relative to 4096-byte bins.
	BinAlignment = 0x1000

	// InvalidOffset marks an unused HCELL_INDEX field (0xFFFFFFFF).
	InvalidOffset = 0xFFFFFFFF
)

// --- REGF base header ---
const (
	REGFSignatureOffset    = 0x000
	REGFPrimarySeqOffset   = 0x004
	REGFSecondarySeqOffset = 0x008
	REGFLastWriteOffset    = 0x00C // FILETIME, 8 bytes
	REGFMajorVersionOffset = 0x014
	REGFMinorVersionOffset = 0x018
	REGFFileTypeOffset     = 0x01C
	REGFFileFormatOffset   = 0x020
	REGFRootCellOffset     = 0x024
	REGFDataSizeOffset     = 0x028 // primary_file_size
	REGFClusterOffset      = 0x02C
	REGFFileNameOffset     = 0x030
	REGFFileNameSize       = 64
	REGFChecksumOffset     = 0x1FC

	// REGFChecksumDwords is the number of little-endian uint32s (offsets
	// 0x000..0x1FB, i.e. up to but excluding the checksum field itself at
	// 0x1FC) XORed to produce the stored checksum.
	REGFChecksumDwords = 127

	REGFMajorVersionSupported = 1
)

// SupportedMinorVersions lists the minor versions this decoder accepts.
var SupportedMinorVersions = map[uint32]bool{3: true, 4: true, 5: true}

const (
	REGFFileTypePrimary  = 0
	REGFFileFormatDirect = 1
)

// --- NK (key node) record ---
const (
	NKSignatureOffset      = 0x00
	NKFlagsOffset          = 0x02
	NKLastWriteOffset      = 0x04 // FILETIME, 8 bytes
	NKSpareOffset          = 0x0C
	NKParentOffset         = 0x10
	NKSubkeyCountOffset    = 0x14
	NKVolSubkeyCountOffset = 0x18
	NKSubkeyListOffset     = 0x1C
	NKVolSubkeyListOffset  = 0x20
	NKValueCountOffset     = 0x24
	NKValueListOffset      = 0x28
	NKSecurityOffset       = 0x2C
	NKClassNameOffset      = 0x30
	NKMaxNameLenOffset     = 0x34
	NKMaxClassLenOffset    = 0x38
	NKMaxValueNameOffset   = 0x3C
	NKMaxValueDataOffset   = 0x40
	NKWorkVarOffset        = 0x44
	NKNameLenOffset        = 0x48
	NKClassLenOffset       = 0x4A
	NKNameOffset           = 0x4C

	NKFixedHeaderSize = NKNameOffset
)

// NK flag bits. Bit assignments follow the commonly
// documented regf layout; NKFlagIsRoot aliases NKFlagHiveEntry, since a
// primary hive's root cell is conventionally marked as the hive's entry
// point rather than carrying a separate "root" bit.
const (
	NKFlagVolatile         = 0x0001
	NKFlagHiveExit         = 0x0002
	NKFlagHiveEntry        = 0x0004
	NKFlagIsRoot           = NKFlagHiveEntry
	NKFlagNoDelete         = 0x0008
	NKFlagIsSymlink        = 0x0010
	NKFlagCompressedName   = 0x0020
	NKFlagPredefinedHandle = 0x0040
	NKFlagVirtualSource    = 0x0100
	NKFlagVirtualTarget    = 0x0200
	NKFlagVirtualStore     = 0x0400
)

// --- Subkey-list headers: shared by lf/lh/li/ri ---
const (
	ListSignatureOffset = 0x00
	ListCountOffset     = 0x02
	ListEntriesOffset   = 0x04

	// LFLHEntrySize is one (cell offset uint32, 4-byte hint/hash) entry.
	LFLHEntrySize = 8
	// LIRIEntrySize is one bare cell-offset entry.
	LIRIEntrySize = 4
)

// --- VK (value key) record ---
const (
	VKSignatureOffset = 0x00
	VKNameLenOffset   = 0x02
	VKDataLenOffset   = 0x04
	VKDataOffOffset   = 0x08
	VKTypeOffset      = 0x0C
	VKFlagsOffset     = 0x10
	VKSpareOffset     = 0x12
	VKNameOffset      = 0x14

	VKFixedHeaderSize = VKNameOffset

	VKDataInlineBit  = uint32(0x80000000)
	VKDataLengthMask = uint32(0x7FFFFFFF)

	VKFlagCompressedName = 0x0001
	VKFlagTombstone      = 0x0002
)

// Registry value type tags.
const (
	RegNone                     uint32 = 0
	RegSZ                       uint32 = 1
	RegExpandSZ                 uint32 = 2
	RegBinary                   uint32 = 3
	RegDWORD                    uint32 = 4
	RegDWORDBigEndian           uint32 = 5
	RegLink                     uint32 = 6
	RegMultiSZ                  uint32 = 7
	RegResourceList             uint32 = 8
	RegFullResourceDescriptor   uint32 = 9
	RegResourceRequirementsList uint32 = 10
	RegQWORD                    uint32 = 11
)

// --- DB (Big Data) record ---
const (
	DBSignatureOffset = 0x00
	DBCountOffset     = 0x02
	DBListOffset      = 0x04
	DBUnknownOffset   = 0x08
	DBHeaderSize      = 0x0C

	// DBChunkSize is the maximum payload of one Big Data segment, and the
	// inline/Big-Data threshold: a value whose length is <= this fits in one
	// data cell; a value one byte longer is forced into a Big Data record.
	DBChunkSize = 16344
)
