package compress

import (
	"fmt"

	"github.com/arloliu/bagmeta/format"
)

// Compressor compresses one container chunk.
//
// The returned slice is owned by the caller and the input is never modified,
// except for NoOpCompressor which returns its input unchanged.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// It returns an error when data is corrupted or was produced by a different
// algorithm. DecompressLimit additionally fails with ErrOutputLimit as soon as
// the output would exceed limit bytes.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
	DecompressLimit(data []byte, limit int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats summarizes how an entry is stored on disk.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used.
	Algorithm format.CompressionType `json:"algorithm" yaml:"algorithm"`

	// OriginalSize is the logical entry length in bytes.
	OriginalSize int64 `json:"originalSize" yaml:"originalSize"`

	// CompressedSize is the sum of stored chunk payloads in bytes.
	CompressedSize int64 `json:"compressedSize" yaml:"compressedSize"`

	// Chunks is the number of chunks the entry occupies.
	Chunks int `json:"chunks" yaml:"chunks"`
}

// CompressionRatio returns compressed size / original size, or 0 for an empty entry.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates a Codec for compressionType. target describes what the
// codec is for and only appears in error messages.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
