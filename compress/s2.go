package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the chunk as a single S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decodes an S2 block.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// DecompressLimit decodes an S2 block after checking the length recorded in
// its preamble against limit.
func (c S2Compressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrOutputLimit, n, limit)
	}

	return s2.Decode(make([]byte, n), data)
}
