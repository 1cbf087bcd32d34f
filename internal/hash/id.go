// Package hash wraps xxHash64 for entry name identifiers and chunk checksums.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of an entry name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Checksum computes the xxHash64 of a chunk payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Checksum32 folds the 64-bit checksum of data into 32 bits.
// Used where the on-disk slot is only four bytes wide, like the file header.
func Checksum32(data []byte) uint32 {
	sum := xxhash.Sum64(data)
	return uint32(sum) ^ uint32(sum>>32) //nolint:gosec
}
