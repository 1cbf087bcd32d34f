package section

import "math"

const (
	// Magic is the four-byte signature at the start of every container file.
	Magic = "BAGC"

	// FormatVersion is the container format version written by this package.
	FormatVersion uint16 = 1

	FlagBigEndian uint16 = 0x0001 // body fields are big-endian
	FlagKnownMask uint16 = FlagBigEndian
)

// offsets and section sizes in the container file
const (
	HeaderSize      = 32
	EntryIndexSize  = 48
	ChunkHeaderSize = 16
	AttributeOffset = HeaderSize // attributes start right after the header

	// ChunkRawFlag marks a chunk whose payload bypassed the entry codec.
	ChunkRawFlag    uint32 = 1 << 31
	chunkLengthMask uint32 = ChunkRawFlag - 1

	// MaxChunkSize is the largest chunk representable in a ChunkHeader.
	MaxChunkSize = int(chunkLengthMask)

	// MaxStringLength is the longest name or attribute value (uint16 length prefix).
	MaxStringLength = math.MaxUint16

	// UnlimitedLength marks an entry that may be extended without bound.
	UnlimitedLength uint64 = math.MaxUint64
)

// ChunkCount returns how many chunks of chunkSize bytes hold length bytes.
// The result is only meaningful when LengthFits reports true.
func ChunkCount(length uint64, chunkSize uint32) uint32 {
	return uint32(chunks(length, chunkSize)) //nolint:gosec
}

// LengthFits reports whether length bytes split into chunkSize chunks stay
// within the uint32 chunk count of an index entry.
func LengthFits(length uint64, chunkSize uint32) bool {
	if chunkSize == 0 {
		return length == 0
	}

	return chunks(length, chunkSize) <= math.MaxUint32
}

func chunks(length uint64, chunkSize uint32) uint64 {
	if length == 0 || chunkSize == 0 {
		return 0
	}

	return length/uint64(chunkSize) + min(length%uint64(chunkSize), 1)
}
