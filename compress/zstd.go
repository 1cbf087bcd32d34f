package compress

import "errors"

// ErrIncompressible is returned by codecs that cannot represent a chunk in
// compressed form. The container stores such chunks raw.
var ErrIncompressible = errors.New("chunk is incompressible")

// ErrOutputLimit is returned by DecompressLimit when a chunk decodes to more
// bytes than allowed.
var ErrOutputLimit = errors.New("decompressed chunk exceeds limit")

// ZstdCompressor compresses chunks with Zstandard.
//
// The default build uses klauspost/compress; building with the gozstd tag and
// cgo enabled switches to the valyala/gozstd bindings. Both produce standard
// zstd frames, so files are interchangeable.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
