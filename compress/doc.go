// Package compress provides the chunk codecs used by the bagmeta container.
//
// Every container entry is stored as a sequence of fixed-size chunks. Before a
// chunk is written it passes through the entry's codec, and after it is read
// back it passes through the same codec in reverse. The codec is selected per
// entry with a format.CompressionType recorded in the entry index, so readers
// never need to be told which algorithm a file uses.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): chunks are stored verbatim. Default for
//     metadata entries, which are small XML documents.
//   - Zstd (format.CompressionZstd): best ratio, pooled encoders/decoders from
//     klauspost/compress. Build with -tags gozstd (and cgo) to use the
//     valyala/gozstd bindings instead.
//   - S2 (format.CompressionS2): fast, Snappy-compatible framing-free blocks.
//   - LZ4 (format.CompressionLZ4): block mode with adaptive output sizing.
//
// # Usage
//
//	codec, err := compress.CreateCodec(format.CompressionZstd, "metadata")
//	if err != nil {
//	    return err
//	}
//	stored, _ := codec.Compress(chunk)
//	raw, err := codec.Decompress(stored)
//
// Readers of untrusted files use DecompressLimit with the chunk's recorded raw
// length, which fails with ErrOutputLimit instead of inflating further.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool and are safe for
// concurrent use.
package compress
