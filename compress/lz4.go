package compress

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/bagmeta/internal/pool"
)

// lz4CompressorPool pools lz4.Compressor instances; they keep a hash table
// that is worth reusing.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// maxLZ4Output bounds the adaptive decompression buffer.
const maxLZ4Output = 128 * 1024 * 1024

type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the chunk as a single LZ4 block.
//
// Incompressible input makes CompressBlock report zero bytes written; such
// chunks are rejected so the caller can fall back to storing them raw.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrIncompressible
	}

	return dst[:n], nil
}

// Decompress decodes an LZ4 block.
//
// The block format does not record the output size, so decoding starts with a
// pooled scratch buffer four times the input and doubles it on
// ErrInvalidSourceShortBuffer up to 128MiB. The result is copied out of the
// scratch buffer.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	scratch := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(scratch)

	bufSize := len(data) * 4
	for bufSize <= maxLZ4Output {
		scratch.Reset()
		scratch.Grow(bufSize)
		buf := scratch.B[:bufSize]
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxLZ4Output {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return bytes.Clone(buf[:n]), nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// DecompressLimit decodes an LZ4 block into a scratch buffer of exactly limit
// bytes, so a block that expands further fails instead of growing the buffer.
func (c LZ4Compressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	scratch := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(scratch)

	scratch.Reset()
	scratch.Grow(limit)
	buf := scratch.B[:limit]
	n, err := lz4.UncompressBlock(data, buf)
	if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrOutputLimit, limit)
	}
	if err != nil {
		return nil, err
	}

	return bytes.Clone(buf[:n]), nil
}
