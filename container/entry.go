package container

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/arloliu/bagmeta/compress"
	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/format"
	"github.com/arloliu/bagmeta/internal/hash"
	"github.com/arloliu/bagmeta/section"
)

// storedChunk is one chunk in its on-disk form.
type storedChunk struct {
	header  section.ChunkHeader
	payload []byte
}

// entryState is the in-memory state of an entry, shared by the File and every
// Entry handle opened on it.
type entryState struct {
	name        string
	length      uint64
	maxLength   uint64
	chunkSize   uint32
	compression format.CompressionType

	// data holds the logical bytes once loaded is true.
	data   []byte
	loaded bool

	// chunks mirrors data in stored form while chunksValid is true.
	chunks      []storedChunk
	chunksValid bool
}

// load decodes and verifies the stored chunks. Entries read from disk stay
// undecoded until first access.
func (st *entryState) load() error {
	if st.loaded {
		return nil
	}

	codec, err := compress.GetCodec(st.compression)
	if err != nil {
		return &errs.StorageError{Op: "read", Entry: st.name, Err: err}
	}

	// The index length is untrusted until the chunk headers agree with it.
	var total uint64
	last := len(st.chunks) - 1
	for i, c := range st.chunks {
		if c.header.RawLen > st.chunkSize || (i < last && c.header.RawLen != st.chunkSize) {
			return &errs.StorageError{
				Op: "read", Entry: st.name,
				Err: fmt.Errorf("%w: chunk %d claims %d bytes", errs.ErrTruncated, i, c.header.RawLen),
			}
		}
		total += uint64(c.header.RawLen)
	}
	if total != st.length {
		return &errs.StorageError{
			Op: "read", Entry: st.name,
			Err: fmt.Errorf("%w: chunks hold %d of %d bytes", errs.ErrTruncated, total, st.length),
		}
	}

	var data []byte
	for i, c := range st.chunks {
		raw := c.payload
		if !c.header.Raw {
			raw, err = codec.DecompressLimit(c.payload, int(c.header.RawLen))
			if err != nil {
				return &errs.StorageError{Op: "read", Entry: st.name, Err: fmt.Errorf("chunk %d: %w", i, err)}
			}
		}

		if len(raw) != int(c.header.RawLen) {
			return &errs.StorageError{
				Op: "read", Entry: st.name,
				Err: fmt.Errorf("%w: chunk %d holds %d bytes", errs.ErrTruncated, i, len(raw)),
			}
		}
		if hash.Checksum(raw) != c.header.Checksum {
			return &errs.StorageError{
				Op: "read", Entry: st.name,
				Err: fmt.Errorf("%w: chunk %d", errs.ErrChecksumMismatch, i),
			}
		}
		data = append(data, raw...)
	}

	if data == nil {
		data = []byte{}
	}
	st.data = data
	st.loaded = true

	return nil
}

// encodeChunks splits data into chunks and compresses each of them. Chunks
// that the codec rejects or cannot shrink are stored raw.
func (st *entryState) encodeChunks() error {
	if st.chunksValid {
		return nil
	}

	codec, err := compress.GetCodec(st.compression)
	if err != nil {
		return &errs.StorageError{Op: "write", Entry: st.name, Err: err}
	}

	size := int(st.chunkSize)
	chunks := make([]storedChunk, 0, section.ChunkCount(st.length, st.chunkSize))
	for off := 0; off < len(st.data); off += size {
		raw := st.data[off:min(off+size, len(st.data))]

		payload, err := codec.Compress(raw)
		isRaw := false
		switch {
		case errors.Is(err, compress.ErrIncompressible):
			isRaw = true
		case err != nil:
			return &errs.StorageError{Op: "write", Entry: st.name, Err: fmt.Errorf("chunk %d: %w", off/size, err)}
		case len(payload) >= len(raw):
			isRaw = true
		}
		if isRaw {
			payload = raw
		}

		chunks = append(chunks, storedChunk{
			header: section.ChunkHeader{
				StoredLen: uint32(len(payload)), //nolint:gosec
				RawLen:    uint32(len(raw)),     //nolint:gosec
				Checksum:  hash.Checksum(raw),
				Raw:       isRaw,
			},
			payload: payload,
		})
	}

	st.chunks = chunks
	st.chunksValid = true

	return nil
}

func (st *entryState) stats() compress.CompressionStats {
	s := compress.CompressionStats{
		Algorithm:    st.compression,
		OriginalSize: int64(st.length), //nolint:gosec
	}
	if err := st.encodeChunks(); err != nil {
		s.CompressedSize = s.OriginalSize
		return s
	}

	s.Chunks = len(st.chunks)
	for _, c := range st.chunks {
		s.CompressedSize += int64(c.header.StoredLen)
	}

	return s
}

func (st *entryState) modified() {
	st.chunksValid = false
	st.chunks = nil
}

// Entry is an open handle to a container entry.
type Entry struct {
	file   *File
	st     *entryState
	closed bool
}

// Name returns the full entry name.
func (e *Entry) Name() string { return e.st.name }

// Len returns the logical length in bytes.
func (e *Entry) Len() uint64 { return e.st.length }

// MaxLength returns the largest length the entry may be extended to.
func (e *Entry) MaxLength() uint64 { return e.st.maxLength }

// ChunkSize returns the raw chunk size in bytes.
func (e *Entry) ChunkSize() int { return int(e.st.chunkSize) }

// Compression returns the codec applied to the entry chunks.
func (e *Entry) Compression() format.CompressionType { return e.st.compression }

// Stats reports how the entry is, or would be, stored on disk.
func (e *Entry) Stats() compress.CompressionStats { return e.st.stats() }

// Extend grows the entry to n bytes, zero-filling the new tail. A length not
// larger than the current one leaves the entry unchanged.
func (e *Entry) Extend(n uint64) error {
	if err := e.checkWritable("extend"); err != nil {
		return err
	}
	st := e.st
	if n <= st.length {
		return nil
	}
	if n > st.maxLength {
		return &errs.StorageError{
			Op: "extend", Entry: st.name,
			Err: fmt.Errorf("%w: %d > %d", errs.ErrExceedsMaxLength, n, st.maxLength),
		}
	}
	if !section.LengthFits(n, st.chunkSize) {
		return &errs.StorageError{
			Op: "extend", Entry: st.name,
			Err: fmt.Errorf("%w: %d bytes need too many chunks", errs.ErrExceedsMaxLength, n),
		}
	}
	if err := st.load(); err != nil {
		return err
	}

	st.data = append(st.data, make([]byte, n-st.length)...)
	st.length = n
	st.modified()
	e.file.dirty = true

	return nil
}

// ReadAll returns a copy of the entry contents.
func (e *Entry) ReadAll() ([]byte, error) {
	if err := e.checkOpen("read"); err != nil {
		return nil, err
	}
	if err := e.st.load(); err != nil {
		return nil, err
	}

	return bytes.Clone(e.st.data), nil
}

// WriteAll replaces the entry contents with data, setting the length to
// len(data).
func (e *Entry) WriteAll(data []byte) error {
	if err := e.checkWritable("write"); err != nil {
		return err
	}
	st := e.st
	if uint64(len(data)) > st.maxLength {
		return &errs.StorageError{
			Op: "write", Entry: st.name,
			Err: fmt.Errorf("%w: %d > %d", errs.ErrExceedsMaxLength, len(data), st.maxLength),
		}
	}

	st.data = append(make([]byte, 0, len(data)), data...)
	st.length = uint64(len(data))
	st.loaded = true
	st.modified()
	e.file.dirty = true

	return nil
}

// Close invalidates the handle. The entry itself stays in the container.
// Calling Close more than once is a no-op.
func (e *Entry) Close() error {
	e.closed = true
	return nil
}

func (e *Entry) checkOpen(op string) error {
	if e.closed || e.file.closed {
		return &errs.StorageError{Op: op, Entry: e.st.name, Err: errs.ErrClosed}
	}

	return nil
}

func (e *Entry) checkWritable(op string) error {
	if err := e.checkOpen(op); err != nil {
		return err
	}
	if e.file.mode != ReadWrite {
		return &errs.StorageError{Op: op, Entry: e.st.name, Err: errs.ErrReadOnly}
	}

	return nil
}
