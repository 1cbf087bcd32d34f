package section

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bagmeta/endian"
	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/format"
)

func TestFileHeader_RoundTrip(t *testing.T) {
	for _, bigEndian := range []bool{false, true} {
		h := NewFileHeader(bigEndian)
		h.EntryCount = 3
		h.AttrCount = 1
		h.IndexOffset = 4096

		data := h.Bytes()
		require.Len(t, data, HeaderSize)
		require.Equal(t, Magic, string(data[0:4]))

		parsed, err := ParseFileHeader(data)
		require.NoError(t, err)
		require.Equal(t, h, parsed)
		require.Equal(t, bigEndian, parsed.BigEndian())
	}
}

func TestFileHeader_ParseErrors(t *testing.T) {
	good := NewFileHeader(false).Bytes()

	_, err := ParseFileHeader(good[:10])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "HDF5")
	_, err = ParseFileHeader(badMagic)
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)

	corrupt := append([]byte(nil), good...)
	corrupt[9] ^= 0xff
	_, err = ParseFileHeader(corrupt)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	unknownFlag := append([]byte(nil), good...)
	unknownFlag[4] = 0x80
	_, err = ParseFileHeader(unknownFlag)
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)

	h := NewFileHeader(false)
	h.Version = 9
	_, err = ParseFileHeader(h.Bytes())
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestEntryIndex_RoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	e := EntryIndex{
		NameID:      0x1122334455667788,
		Length:      2500,
		MaxLength:   UnlimitedLength,
		DataOffset:  64,
		ChunkSize:   1024,
		ChunkCount:  3,
		Compression: format.CompressionZstd,
	}

	var parsed EntryIndex
	require.NoError(t, parsed.Parse(e.Bytes(engine), engine))
	require.Equal(t, e, parsed)
}

func TestEntryIndex_ParseValidation(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	base := EntryIndex{Length: 10, MaxLength: 100, ChunkSize: 4, ChunkCount: 3, Compression: format.CompressionNone}

	tests := []struct {
		name   string
		mutate func(e *EntryIndex)
		want   error
	}{
		{"zero chunk size", func(e *EntryIndex) { e.ChunkSize = 0 }, errs.ErrInvalidChunkSize},
		{"length over max", func(e *EntryIndex) { e.MaxLength = 5 }, errs.ErrExceedsMaxLength},
		{"chunk count mismatch", func(e *EntryIndex) { e.ChunkCount = 2 }, errs.ErrTruncated},
		{"chunk count overflow", func(e *EntryIndex) {
			e.Length, e.MaxLength, e.ChunkSize = 1<<63, UnlimitedLength, 1024
			e.ChunkCount = ChunkCount(e.Length, e.ChunkSize)
		}, errs.ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			var parsed EntryIndex
			require.ErrorIs(t, parsed.Parse(e.Bytes(engine), engine), tt.want)
		})
	}

	bad := base
	bad.Compression = format.CompressionType(0x7)
	var parsed EntryIndex
	require.Error(t, parsed.Parse(bad.Bytes(engine), engine))
	require.ErrorIs(t, parsed.Parse(make([]byte, 10), engine), errs.ErrTruncated)
}

func TestChunkHeader_RoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	for _, c := range []ChunkHeader{
		{StoredLen: 300, RawLen: 1024, Checksum: 42},
		{StoredLen: 1024, RawLen: 1024, Checksum: 7, Raw: true},
	} {
		var parsed ChunkHeader
		require.NoError(t, parsed.Parse(c.Bytes(engine), engine))
		require.Equal(t, c, parsed)
	}

	bad := ChunkHeader{StoredLen: 10, RawLen: 20, Raw: true}
	var parsed ChunkHeader
	require.ErrorIs(t, parsed.Parse(bad.Bytes(engine), engine), errs.ErrTruncated)
}

func TestChunkCount(t *testing.T) {
	require.Equal(t, uint32(0), ChunkCount(0, 1024))
	require.Equal(t, uint32(1), ChunkCount(1, 1024))
	require.Equal(t, uint32(1), ChunkCount(1024, 1024))
	require.Equal(t, uint32(2), ChunkCount(1025, 1024))
	require.Equal(t, uint32(0), ChunkCount(10, 0))
}

func TestLengthFits(t *testing.T) {
	require.True(t, LengthFits(0, 0))
	require.False(t, LengthFits(1, 0))
	require.True(t, LengthFits(1<<20, 1024))
	require.True(t, LengthFits(uint64(math.MaxUint32)*1024, 1024))
	require.False(t, LengthFits(uint64(math.MaxUint32)*1024+1, 1024))
	require.False(t, LengthFits(1<<63, 1024))
	require.False(t, LengthFits(UnlimitedLength, 1))
}

func TestStrings(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	buf, err := AppendString(nil, engine, "/BAG_root/metadata")
	require.NoError(t, err)
	buf, err = AppendString(buf, engine, "")
	require.NoError(t, err)

	s, n, err := ReadString(buf, engine)
	require.NoError(t, err)
	require.Equal(t, "/BAG_root/metadata", s)

	s, _, err = ReadString(buf[n:], engine)
	require.NoError(t, err)
	require.Empty(t, s)

	_, err = AppendString(nil, engine, strings.Repeat("x", MaxStringLength+1))
	require.ErrorIs(t, err, errs.ErrStringTooLong)

	_, _, err = ReadString(buf[:5], engine)
	require.ErrorIs(t, err, errs.ErrTruncated)
	_, _, err = ReadString(buf[:1], engine)
	require.ErrorIs(t, err, errs.ErrTruncated)
}
