// Package section defines the low-level binary structures of the bagmeta container file.
//
// A container is a single file holding named, independently resizable byte-array
// entries plus a small set of root string attributes. Every structure here has a
// fixed size (except strings) and knows how to serialize itself with an
// endian.EndianEngine.
//
// # File Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ FileHeader (32 bytes, fixed)                            │
//	│  - Magic "BAGC", flags, version                         │
//	│  - Entry and attribute counts, index offset             │
//	│  - Header checksum                                      │
//	├─────────────────────────────────────────────────────────┤
//	│ Attributes (variable)                                   │
//	│  - AttrCount × (name, value) length-prefixed strings    │
//	├─────────────────────────────────────────────────────────┤
//	│ Entry Data (variable)                                   │
//	│  - Per entry: ChunkCount × (ChunkHeader + payload)      │
//	├─────────────────────────────────────────────────────────┤
//	│ Index (EntryCount × 48 bytes)                           │
//	│  - Name ID, lengths, data offset, chunking, codec       │
//	├─────────────────────────────────────────────────────────┤
//	│ Names (EntryCount × length-prefixed string)             │
//	│  - Same order as the index                              │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
//	Bytes  | Field       | Type   | Description
//	-------|-------------|--------|----------------------------------------
//	0-3    | Magic       | [4]u8  | "BAGC"
//	4-5    | Flags       | uint16 | always little-endian; bit 0 = big-endian body
//	6-7    | Version     | uint16 | container format version
//	8-11   | EntryCount  | uint32 | number of entries
//	12-15  | AttrCount   | uint32 | number of root attributes
//	16-23  | IndexOffset | uint64 | byte offset of the index section
//	24-27  | Reserved    | uint32 | must be zero
//	28-31  | Checksum    | uint32 | folded xxHash64 of bytes 0-27
//
// # Chunks
//
// Entries are split into ChunkSize pieces. Each piece is compressed with the
// entry codec and prefixed with a 16-byte ChunkHeader carrying the stored and
// raw lengths and an xxHash64 of the raw bytes. When compression would not
// shrink a chunk, it is stored raw and ChunkRawFlag is set in the stored length.
package section
