package compress

import "fmt"

// NoOpCompressor stores chunks verbatim.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself. The result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. The result shares memory with the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressLimit returns data itself if it fits in limit bytes.
func (c NoOpCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrOutputLimit, len(data), limit)
	}

	return data, nil
}
