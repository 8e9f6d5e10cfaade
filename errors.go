package regfhive

import "fmt"

// ErrorKind classifies a decode failure. Every DecodeError carries both a
// Kind and the byte Offset into the backing buffer where validation failed.
type ErrorKind int

const (
	_ ErrorKind = iota

	// Header validation.
	InvalidSignature
	SequenceNumberMismatch
	InvalidChecksum
	InvalidPrimaryFileSize
	UnsupportedVersion
	InvalidFileType
	InvalidFileFormat
	InsufficientBuffer

	// Bin validation.
	InvalidBinSignature
	InvalidBinSize

	// Cell validation.
	InvalidCellSize
	CellOffsetOutOfRange
	CellNotAllocated

	// Record validation.
	InvalidKeyNodeSignature
	InvalidValueKeySignature
	InvalidSubkeyListSignature
	InvalidBigDataSignature
	InvalidNameLength
	InvalidDataSize
	InvalidStringSize
	SubkeyOffsetOutOfRange
	InvalidSubkeyCount
	InvalidValueCount
	RecursionLimit

	// Typed-read mismatches.
	UnexpectedDataType

	// Mutation.
	ReadOnly
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidSignature:
		return "InvalidSignature"
	case SequenceNumberMismatch:
		return "SequenceNumberMismatch"
	case InvalidChecksum:
		return "InvalidChecksum"
	case InvalidPrimaryFileSize:
		return "InvalidPrimaryFileSize"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case InvalidFileType:
		return "InvalidFileType"
	case InvalidFileFormat:
		return "InvalidFileFormat"
	case InsufficientBuffer:
		return "InsufficientBuffer"
	case InvalidBinSignature:
		return "InvalidBinSignature"
	case InvalidBinSize:
		return "InvalidBinSize"
	case InvalidCellSize:
		return "InvalidCellSize"
	case CellOffsetOutOfRange:
		return "CellOffsetOutOfRange"
	case CellNotAllocated:
		return "CellNotAllocated"
	case InvalidKeyNodeSignature:
		return "InvalidKeyNodeSignature"
	case InvalidValueKeySignature:
		return "InvalidValueKeySignature"
	case InvalidSubkeyListSignature:
		return "InvalidSubkeyListSignature"
	case InvalidBigDataSignature:
		return "InvalidBigDataSignature"
	case InvalidNameLength:
		return "InvalidNameLength"
	case InvalidDataSize:
		return "InvalidDataSize"
	case InvalidStringSize:
		return "InvalidStringSize"
	case SubkeyOffsetOutOfRange:
		return "SubkeyOffsetOutOfRange"
	case InvalidSubkeyCount:
		return "InvalidSubkeyCount"
	case InvalidValueCount:
		return "InvalidValueCount"
	case RecursionLimit:
		return "RecursionLimit"
	case UnexpectedDataType:
		return "UnexpectedDataType"
	case ReadOnly:
		return "ReadOnly"
	default:
		return "Unknown"
	}
}

// DecodeError is the single error type every exported decode/validate
// failure returns. Offset pinpoints the faulty field in the caller's
// backing buffer, so corruption can be located without re-deriving the
// traversal that found it.
type DecodeError struct {
	Kind   ErrorKind
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("regfhive: %s at offset 0x%X", e.Kind, e.Offset)
	}
	return fmt.Sprintf("regfhive: %s at offset 0x%X: %s", e.Kind, e.Offset, e.Detail)
}

// Is reports whether target is a *DecodeError with the same Kind, so callers
// can use errors.Is(err, &DecodeError{Kind: regfhive.InvalidChecksum}) without
// matching on Offset or Detail.
func (e *DecodeError) Is(target error) bool {
	other, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(kind ErrorKind, offset int, detail string) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Detail: detail}
}

func newErrf(kind ErrorKind, offset int, format string, args ...any) *DecodeError {
	return newErr(kind, offset, fmt.Sprintf(format, args...))
}
