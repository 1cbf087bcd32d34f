package section

import (
	"fmt"

	"github.com/arloliu/bagmeta/endian"
	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/format"
)

// EntryIndex describes one entry in the index section. It is 48 bytes on disk.
type EntryIndex struct {
	// NameID is the xxHash64 of the entry name.
	//
	// Offset: 0, Size: 8 bytes
	NameID uint64

	// Length is the logical byte length of the entry.
	//
	// Offset: 8, Size: 8 bytes
	Length uint64

	// MaxLength is the largest length Extend may reach, UnlimitedLength for none.
	//
	// Offset: 16, Size: 8 bytes
	MaxLength uint64

	// DataOffset is the file offset of the first ChunkHeader.
	//
	// Offset: 24, Size: 8 bytes
	DataOffset uint64

	// ChunkSize is the raw size of every chunk but the last.
	//
	// Offset: 32, Size: 4 bytes
	ChunkSize uint32

	// ChunkCount is the number of chunks stored for the entry.
	//
	// Offset: 36, Size: 4 bytes
	ChunkCount uint32

	// Compression is the codec applied to every chunk.
	//
	// Offset: 40, Size: 1 byte (bytes 41-47 reserved)
	Compression format.CompressionType
}

// Bytes returns the 48-byte on-disk form of the index entry.
func (e *EntryIndex) Bytes(engine endian.EndianEngine) []byte {
	var b [EntryIndexSize]byte
	engine.PutUint64(b[0:8], e.NameID)
	engine.PutUint64(b[8:16], e.Length)
	engine.PutUint64(b[16:24], e.MaxLength)
	engine.PutUint64(b[24:32], e.DataOffset)
	engine.PutUint32(b[32:36], e.ChunkSize)
	engine.PutUint32(b[36:40], e.ChunkCount)
	b[40] = uint8(e.Compression)

	return b[:]
}

// Parse parses an index entry and checks its internal consistency.
func (e *EntryIndex) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != EntryIndexSize {
		return fmt.Errorf("%w: index entry is %d bytes", errs.ErrTruncated, len(data))
	}

	e.NameID = engine.Uint64(data[0:8])
	e.Length = engine.Uint64(data[8:16])
	e.MaxLength = engine.Uint64(data[16:24])
	e.DataOffset = engine.Uint64(data[24:32])
	e.ChunkSize = engine.Uint32(data[32:36])
	e.ChunkCount = engine.Uint32(data[36:40])
	e.Compression = format.CompressionType(data[40])

	if !e.Compression.Valid() {
		return fmt.Errorf("invalid entry compression: %d", data[40])
	}
	if e.ChunkSize == 0 || int(e.ChunkSize) > MaxChunkSize {
		return errs.ErrInvalidChunkSize
	}
	if e.Length > e.MaxLength {
		return errs.ErrExceedsMaxLength
	}
	if !LengthFits(e.Length, e.ChunkSize) || e.ChunkCount != ChunkCount(e.Length, e.ChunkSize) {
		return fmt.Errorf("%w: %d chunks for %d bytes", errs.ErrTruncated, e.ChunkCount, e.Length)
	}

	return nil
}
