package container

import (
	"fmt"

	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/internal/hash"
	"github.com/arloliu/bagmeta/internal/pool"
	"github.com/arloliu/bagmeta/section"
)

// encodeImage serializes the whole container into buf:
//
//	header | attributes | entry chunks... | index | entry names
func (f *File) encodeImage(buf *pool.ByteBuffer) error {
	engine := f.engine
	buf.MustWrite(make([]byte, section.HeaderSize))

	var err error
	for _, name := range f.attrOrder {
		if buf.B, err = section.AppendString(buf.B, engine, name); err != nil {
			return &errs.StorageError{Op: "flush", Err: err}
		}
		if buf.B, err = section.AppendString(buf.B, engine, f.attrs[name]); err != nil {
			return &errs.StorageError{Op: "flush", Err: err}
		}
	}

	indexes := make([]section.EntryIndex, 0, f.names.Count())
	for _, name := range f.names.Names() {
		st := f.entries[name]
		if st.loaded {
			if err := st.encodeChunks(); err != nil {
				return err
			}
		}

		idx := section.EntryIndex{
			NameID:      hash.ID(name),
			Length:      st.length,
			MaxLength:   st.maxLength,
			DataOffset:  uint64(buf.Len()), //nolint:gosec
			ChunkSize:   st.chunkSize,
			ChunkCount:  uint32(len(st.chunks)), //nolint:gosec
			Compression: st.compression,
		}
		for _, c := range st.chunks {
			buf.Grow(section.ChunkHeaderSize + len(c.payload))
			buf.MustWrite(c.header.Bytes(engine))
			buf.MustWrite(c.payload)
		}
		indexes = append(indexes, idx)
	}

	header := f.header
	header.EntryCount = uint32(len(indexes))  //nolint:gosec
	header.AttrCount = uint32(len(f.attrOrder)) //nolint:gosec
	header.IndexOffset = uint64(buf.Len())     //nolint:gosec

	for i := range indexes {
		buf.MustWrite(indexes[i].Bytes(engine))
	}
	for _, name := range f.names.Names() {
		if buf.B, err = section.AppendString(buf.B, engine, name); err != nil {
			return &errs.StorageError{Op: "flush", Entry: name, Err: err}
		}
	}

	buf.PutAt(0, header.Bytes())
	f.header = header

	return nil
}

// parseImage fills f from a complete container image whose header has
// already been parsed into f.header.
func (f *File) parseImage(data []byte) error {
	engine := f.engine
	off := section.AttributeOffset

	for i := uint32(0); i < f.header.AttrCount; i++ {
		name, n, err := section.ReadString(data[off:], engine)
		if err != nil {
			return fmt.Errorf("attribute %d: %w", i, err)
		}
		off += n
		value, n, err := section.ReadString(data[off:], engine)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
		off += n

		if _, ok := f.attrs[name]; !ok {
			f.attrOrder = append(f.attrOrder, name)
		}
		f.attrs[name] = value
	}

	size := uint64(len(data))
	indexStart := f.header.IndexOffset
	indexEnd := indexStart + uint64(f.header.EntryCount)*section.EntryIndexSize
	if indexStart < uint64(off) || indexStart > size || indexEnd > size {
		return fmt.Errorf("%w: index at %d", errs.ErrTruncated, indexStart)
	}

	off = int(indexEnd) //nolint:gosec
	for i := uint32(0); i < f.header.EntryCount; i++ {
		start := indexStart + uint64(i)*section.EntryIndexSize
		var idx section.EntryIndex
		if err := idx.Parse(data[start:start+section.EntryIndexSize], engine); err != nil {
			return fmt.Errorf("entry index %d: %w", i, err)
		}

		name, n, err := section.ReadString(data[off:], engine)
		if err != nil {
			return fmt.Errorf("entry name %d: %w", i, err)
		}
		off += n

		if idx.NameID != hash.ID(name) {
			return fmt.Errorf("%w: entry name %s", errs.ErrChecksumMismatch, name)
		}
		collided, err := f.names.Track(name, idx.NameID)
		if err != nil {
			return fmt.Errorf("entry name %d: %w", i, err)
		}
		if collided {
			f.logger.Debug("entry name ID collision", "entry", name)
		}

		chunks, err := parseChunks(data, idx, f)
		if err != nil {
			return fmt.Errorf("entry %s: %w", name, err)
		}

		f.entries[name] = &entryState{
			name:        name,
			length:      idx.Length,
			maxLength:   idx.MaxLength,
			chunkSize:   idx.ChunkSize,
			compression: idx.Compression,
			loaded:      idx.Length == 0,
			data:        []byte{},
			chunks:      chunks,
			chunksValid: true,
		}
	}

	return nil
}

func parseChunks(data []byte, idx section.EntryIndex, f *File) ([]storedChunk, error) {
	size := uint64(len(data))
	pos := idx.DataOffset
	if pos > f.header.IndexOffset {
		return nil, fmt.Errorf("%w: data offset %d", errs.ErrTruncated, pos)
	}

	if uint64(idx.ChunkCount)*section.ChunkHeaderSize > f.header.IndexOffset-pos {
		return nil, fmt.Errorf("%w: %d chunk headers past data offset %d", errs.ErrTruncated, idx.ChunkCount, pos)
	}

	chunks := make([]storedChunk, 0, idx.ChunkCount)
	for c := uint32(0); c < idx.ChunkCount; c++ {
		if pos+section.ChunkHeaderSize > size {
			return nil, fmt.Errorf("%w: chunk %d header", errs.ErrTruncated, c)
		}

		var hdr section.ChunkHeader
		if err := hdr.Parse(data[pos:pos+section.ChunkHeaderSize], f.engine); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c, err)
		}
		pos += section.ChunkHeaderSize

		end := pos + uint64(hdr.StoredLen)
		if end > f.header.IndexOffset {
			return nil, fmt.Errorf("%w: chunk %d payload", errs.ErrTruncated, c)
		}
		chunks = append(chunks, storedChunk{header: hdr, payload: data[pos:end]})
		pos = end
	}

	return chunks, nil
}
