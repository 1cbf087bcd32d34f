package section

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/bagmeta/endian"
	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/internal/hash"
)

// FileHeader is the fixed 32-byte header at the start of a container file.
type FileHeader struct {
	// Flags is always stored little-endian so the body byte order can be read first.
	Flags   uint16 // byte offset 4-5
	Version uint16 // byte offset 6-7
	// EntryCount is the number of entries in the index.
	EntryCount uint32 // byte offset 8-11
	// AttrCount is the number of root attributes following the header.
	AttrCount uint32 // byte offset 12-15
	// IndexOffset is the byte offset of the first EntryIndex.
	IndexOffset uint64 // byte offset 16-23
}

// NewFileHeader creates a header for an empty container.
func NewFileHeader(bigEndian bool) FileHeader {
	h := FileHeader{Version: FormatVersion}
	if bigEndian {
		h.Flags |= FlagBigEndian
	}

	return h
}

// BigEndian reports whether the body fields are big-endian.
func (h FileHeader) BigEndian() bool {
	return h.Flags&FlagBigEndian != 0
}

// Engine returns the byte order engine for the body of the file.
func (h FileHeader) Engine() endian.EndianEngine {
	return endian.EngineFor(h.BigEndian())
}

// Bytes serializes the header, including its checksum.
func (h FileHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.Engine()

	copy(b[0:4], Magic)
	binary.LittleEndian.PutUint16(b[4:6], h.Flags)
	engine.PutUint16(b[6:8], h.Version)
	engine.PutUint32(b[8:12], h.EntryCount)
	engine.PutUint32(b[12:16], h.AttrCount)
	engine.PutUint64(b[16:24], h.IndexOffset)
	engine.PutUint32(b[28:32], hash.Checksum32(b[0:28]))

	return b
}

// Parse parses the header from exactly HeaderSize bytes.
func (h *FileHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if string(data[0:4]) != Magic {
		return errs.ErrInvalidMagicNumber
	}

	h.Flags = binary.LittleEndian.Uint16(data[4:6])
	if h.Flags&^FlagKnownMask != 0 {
		return fmt.Errorf("%w: unknown flags 0x%04x", errs.ErrUnsupportedVersion, h.Flags)
	}

	engine := h.Engine()
	if got, want := engine.Uint32(data[28:32]), hash.Checksum32(data[0:28]); got != want {
		return fmt.Errorf("%w: header", errs.ErrChecksumMismatch)
	}

	h.Version = engine.Uint16(data[6:8])
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}
	h.EntryCount = engine.Uint32(data[8:12])
	h.AttrCount = engine.Uint32(data[12:16])
	h.IndexOffset = engine.Uint64(data[16:24])

	return nil
}

// ParseFileHeader parses a FileHeader from the start of data.
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < HeaderSize {
		return FileHeader{}, errs.ErrInvalidHeaderSize
	}

	h := FileHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}
