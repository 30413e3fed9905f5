package pna

// Magic is the 8-byte signature every PNA archive begins with: a high-bit
// byte, "PNA", and a CR/LF/SUB/LF sequence that makes text-mode transfer
// corruption detectable, following the PNG convention this format is based
// on.
var Magic = [8]byte{0x89, 'P', 'N', 'A', 0x0D, 0x0A, 0x1A, 0x0A}

// MaxChunkLength is the default ceiling a chunk reader enforces on a
// declared chunk length before treating the stream as corrupt.
const MaxChunkLength = (1 << 31) - 1

// FormatMajor and FormatMinor are the version numbers this codec writes
// into AHED and the highest major version it will read.
const (
	FormatMajor = 0
	FormatMinor = 0
)

// ChunkType is the 4-byte ASCII type name of a chunk. Byte 0 lowercase means
// ancillary (decoders may skip unknown ones); byte 1 lowercase means
// private/vendor; byte 2 is always uppercase (reserved); byte 3 lowercase
// means safe-to-copy even if not understood.
type ChunkType [4]byte

func (t ChunkType) String() string { return string(t[:]) }

// IsAncillary reports whether an unrecognized chunk of this type may be
// skipped by a decoder instead of aborting.
func (t ChunkType) IsAncillary() bool { return t[0] >= 'a' && t[0] <= 'z' }

// IsPrivate reports whether this type is a vendor-private extension.
func (t ChunkType) IsPrivate() bool { return t[1] >= 'a' && t[1] <= 'z' }

// IsSafeToCopy reports whether an unrecognized chunk of this type may be
// copied unchanged by tools that don't understand it.
func (t ChunkType) IsSafeToCopy() bool { return t[3] >= 'a' && t[3] <= 'z' }

// Standard chunk types.
var (
	// AHED is the archive head chunk: {major, minor, reserved[2], archive_number}.
	AHED = ChunkType{'A', 'H', 'E', 'D'}
	// ANXT marks that the archive continues in the next volume. Empty data.
	ANXT = ChunkType{'A', 'N', 'X', 'T'}
	// AEND is the archive end chunk. Empty data.
	AEND = ChunkType{'A', 'E', 'N', 'D'}

	// FHED is the entry head chunk.
	FHED = ChunkType{'F', 'H', 'E', 'D'}
	// FDAT carries entry payload bytes, post-pipeline.
	FDAT = ChunkType{'F', 'D', 'A', 'T'}
	// FEND closes an entry.
	FEND = ChunkType{'F', 'E', 'N', 'D'}

	// SHED, SDAT, SEND are the solid-block equivalents of FHED/FDAT/FEND.
	SHED = ChunkType{'S', 'H', 'E', 'D'}
	SDAT = ChunkType{'S', 'D', 'A', 'T'}
	SEND = ChunkType{'S', 'E', 'N', 'D'}

	// PHSF carries a PHC-format password hash string.
	PHSF = ChunkType{'p', 'h', 's', 'f'}
)

// DataKind is the type of entry an FHED/SHED chunk describes.
type DataKind uint8

const (
	KindFile DataKind = iota
	KindDirectory
	KindSymlink
	KindHardlink
)

func (k DataKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindHardlink:
		return "hardlink"
	default:
		return "unknown"
	}
}

// Compression selects the codec applied to an entry's payload before
// encryption.
type Compression uint8

const (
	CompressionStore Compression = iota
	CompressionDeflate
	CompressionZstd
	CompressionXz
)

// Encryption selects the cipher, if any, applied after compression.
type Encryption uint8

const (
	EncryptionNone Encryption = iota
	EncryptionAes256
	EncryptionCamellia256
)

// CipherMode selects the block cipher mode of operation.
type CipherMode uint8

const (
	CipherModeNone CipherMode = iota
	CipherModeCtr
	CipherModeCbc
)
