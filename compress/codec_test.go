package compress

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bagmeta/format"
)

func sampleXML() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<bagMetadata>\n")
	for range 64 {
		b.WriteString("  <spatialRepresentationInfo><rowResolution>2</rowResolution></spatialRepresentationInfo>\n")
	}
	b.WriteString("</bagMetadata>\n")

	return b.Bytes()
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, "metadata")
			require.NoError(t, err)
			require.NotNil(t, codec)

			shared, err := GetCodec(ct)
			require.NoError(t, err)
			require.Equal(t, codec, shared)
		})
	}

	_, err := CreateCodec(format.CompressionType(0x9), "metadata")
	require.ErrorContains(t, err, "invalid metadata compression")

	_, err = GetCodec(format.CompressionType(0x9))
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	data := sampleXML()

	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)
			if ct != format.CompressionNone {
				require.Less(t, len(compressed), len(data))
			}

			out, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, data, out)
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		out, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, out)

		out, err = codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, out)
	}
}

func TestDecompressLimit(t *testing.T) {
	data := sampleXML()

	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			out, err := codec.DecompressLimit(compressed, len(data))
			require.NoError(t, err)
			require.Equal(t, data, out)

			_, err = codec.DecompressLimit(compressed, len(data)-1)
			require.ErrorIs(t, err, ErrOutputLimit)

			out, err = codec.DecompressLimit(nil, 0)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestCodecCorruptInput(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02}

	_, err := NewZstdCompressor().Decompress(garbage)
	require.Error(t, err)

	_, err = NewS2Compressor().Decompress([]byte{0x05, 0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestLZ4Incompressible(t *testing.T) {
	random := make([]byte, 256)
	_, err := rand.Read(random)
	require.NoError(t, err)

	out, err := NewLZ4Compressor().Compress(random)
	if err != nil {
		require.ErrorIs(t, err, ErrIncompressible)
		return
	}

	back, err := NewLZ4Compressor().Decompress(out)
	require.NoError(t, err)
	require.Equal(t, random, back)
}

func TestNoOpSharesMemory(t *testing.T) {
	data := []byte("abc")
	out, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}

func TestCompressionStats(t *testing.T) {
	s := CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 1000, CompressedSize: 250, Chunks: 1}
	require.InDelta(t, 0.25, s.CompressionRatio(), 1e-9)
	require.InDelta(t, 75.0, s.SpaceSavings(), 1e-9)

	empty := CompressionStats{}
	require.Zero(t, empty.CompressionRatio())
	require.Zero(t, empty.SpaceSavings())
}

func BenchmarkZstdCompress(b *testing.B) {
	data := sampleXML()
	codec := NewZstdCompressor()
	b.ResetTimer()
	for b.Loop() {
		_, _ = codec.Compress(data)
	}
}
