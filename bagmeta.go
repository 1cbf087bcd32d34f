// Package bagmeta manages the XML metadata document of a Bathymetric
// Attributed Grid (BAG) container.
//
// A BAG container stores the gridded survey layers together with one
// well-known entry, /BAG_root/metadata, holding an XML document that describes
// the grid: its extent, resolution, coordinate reference systems and lineage.
// This package owns that document's lifecycle: it binds a structured record to
// the container entry, converts between the record and XML, and exposes the
// values the rest of a BAG reader needs.
//
// # Core Features
//
//   - Metadata manager with exactly-once binding to a container entry
//   - Atomic loads from XML files, buffers or the container entry
//   - Bit-exact XML round-trips of the structured record
//   - Chunked, checksummed and optionally compressed entry storage (None, Zstd, S2, LZ4)
//   - Reference-counted datasets that close the container with the last user
//
// # Basic Usage
//
// Creating a dataset from an XML document:
//
//	md := bagmeta.NewMetadata()
//	if err := md.LoadFromFile("survey.xml"); err != nil {
//	    return err
//	}
//
//	ds, err := bagmeta.CreateDataset("survey.bag", md,
//	    bagmeta.WithCompression(format.CompressionZstd),
//	)
//	if err != nil {
//	    return err
//	}
//	defer ds.Close()
//
// Reading the metadata of an existing dataset:
//
//	ds, err := bagmeta.OpenDataset("survey.bag", container.ReadOnly)
//	if err != nil {
//	    return err
//	}
//	defer ds.Close()
//
//	fmt.Println(ds.Metadata().RowResolution(), ds.Metadata().LLCornerX())
//
// # Package Structure
//
// The metadata package holds the record type and the XML codec, and the
// container package the file format. This package ties them together; use
// the lower packages directly for codec-only or storage-only work.
package bagmeta

import (
	"github.com/arloliu/bagmeta/format"
)

const (
	// MetadataPath is the container entry holding the XML metadata document.
	MetadataPath = "/BAG_root/metadata"

	// DefaultChunkSize is the chunk size of a newly created metadata entry.
	DefaultChunkSize = 1024

	// DefaultCompression is the codec of a newly created metadata entry.
	DefaultCompression = format.CompressionNone

	// VersionAttribute is the root attribute naming the BAG version.
	VersionAttribute = "Bag Version"

	// Version is the BAG version written by CreateDataset.
	Version = "2.0.1"
)
