// Package container implements the file-backed store that holds the BAG metadata entry.
//
// A container is one file with a flat, path-like namespace of entries. Each
// entry is a resizable byte array stored in fixed-size chunks, every chunk
// compressed with the entry codec and guarded by an xxHash64 checksum. The
// file also carries root string attributes such as the BAG version.
//
// # Basic Usage
//
//	f, err := container.Create("survey.bag")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	entry, err := f.CreateEntry("/BAG_root/metadata", uint64(len(xml)), 1024)
//	if err != nil {
//	    return err
//	}
//	defer entry.Close()
//
//	if err := entry.WriteAll(xml); err != nil {
//	    return err
//	}
//
// Reading back:
//
//	f, err := container.Open("survey.bag", container.ReadOnly)
//	entry, err := f.OpenEntry("/BAG_root/metadata")
//	if errors.Is(err, errs.ErrEntryNotFound) { ... }
//	xml, err := entry.ReadAll()
//
// # Persistence
//
// The whole file image is kept in memory. Flush (and Close on a writable
// container) serializes the image to a temporary file next to the target and
// renames it into place, so a crash never leaves a half-written container.
// Chunks loaded from disk are decompressed and verified lazily, on the first
// ReadAll or Extend of their entry.
//
// # Thread Safety
//
// A File and its entries are not safe for concurrent use. Several handles may
// be open on the same entry; they share its contents, so a write through one
// is visible through the others.
package container
