// Package format defines the small enum types shared by the container, the
// compression codecs and the command line tool.
package format

import (
	"fmt"
	"strings"
)

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores chunks as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the known compression types.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompressionType parses a case-insensitive compression name.
// An empty string selects CompressionNone.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type %q", s)
	}
}

// MarshalText renders c as its lower-case name, so JSON and YAML output
// shows "zstd" rather than a number. Unknown values render as "unknown".
func (c CompressionType) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(c.String())), nil
}
