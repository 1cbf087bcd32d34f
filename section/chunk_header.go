package section

import (
	"fmt"

	"github.com/arloliu/bagmeta/endian"
	"github.com/arloliu/bagmeta/errs"
)

// ChunkHeader precedes every stored chunk payload.
type ChunkHeader struct {
	// StoredLen is the payload length on disk.
	StoredLen uint32
	// RawLen is the chunk length after decompression.
	RawLen uint32
	// Checksum is the xxHash64 of the raw chunk bytes.
	Checksum uint64
	// Raw is true when the payload bypassed the entry codec.
	Raw bool
}

// Bytes returns the 16-byte on-disk form of the chunk header.
func (c *ChunkHeader) Bytes(engine endian.EndianEngine) []byte {
	var b [ChunkHeaderSize]byte
	stored := c.StoredLen & chunkLengthMask
	if c.Raw {
		stored |= ChunkRawFlag
	}
	engine.PutUint32(b[0:4], stored)
	engine.PutUint32(b[4:8], c.RawLen)
	engine.PutUint64(b[8:16], c.Checksum)

	return b[:]
}

// Parse parses a chunk header.
func (c *ChunkHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < ChunkHeaderSize {
		return fmt.Errorf("%w: chunk header", errs.ErrTruncated)
	}

	stored := engine.Uint32(data[0:4])
	c.Raw = stored&ChunkRawFlag != 0
	c.StoredLen = stored & chunkLengthMask
	c.RawLen = engine.Uint32(data[4:8])
	c.Checksum = engine.Uint64(data[8:16])

	if c.Raw && c.StoredLen != c.RawLen {
		return fmt.Errorf("%w: raw chunk stored %d bytes for %d", errs.ErrTruncated, c.StoredLen, c.RawLen)
	}

	return nil
}
