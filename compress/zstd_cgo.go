//go:build gozstd && cgo

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/valyala/gozstd"
)

// Compress compresses the chunk into a single zstd frame.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decodes a zstd frame.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}

// DecompressLimit streams a zstd frame and stops reading one byte past limit.
func (c ZstdCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr := gozstd.NewReader(bytes.NewReader(data))
	defer zr.Release()

	out, err := io.ReadAll(io.LimitReader(zr, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrOutputLimit, limit)
	}

	return out, nil
}
