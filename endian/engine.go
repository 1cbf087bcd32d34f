// Package endian provides the byte order engines used by the bagmeta container sections.
//
// The container header records which byte order was used to write the file, so
// a reader picks the matching engine before touching any multi-byte field:
//
//	engine := endian.EngineFor(header.BigEndian())
//	count := engine.Uint32(buf[8:12])
//
// EndianEngine combines binary.ByteOrder with binary.AppendByteOrder, which lets
// the section writers append fields straight into pooled buffers:
//
//	buf = engine.AppendUint64(buf, entry.Length)
//
// All engines are immutable and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
// It is the default byte order of newly created containers.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// EngineFor returns the big-endian engine when bigEndian is true and the
// little-endian engine otherwise.
func EngineFor(bigEndian bool) EndianEngine {
	if bigEndian {
		return GetBigEndianEngine()
	}

	return GetLittleEndianEngine()
}
