// Package metadata holds the structured form of a BAG metadata document and
// its XML codec.
//
// BagMetadata is the in-memory record. New returns it initialized with every
// sub-record allocated; Free releases it. Decode and Encode convert between
// the record and XML bytes:
//
//	md, err := metadata.Decode(xmlBytes, false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(md.SpatialRepresentationInfo.RowResolution)
//
//	out, err := metadata.Encode(md)
//
// Encode writes numbers in their shortest exact form, so decoding the output
// of Encode reproduces the record field for field.
//
// Import and ImportFile wrap Decode failures in *errs.ImportError, carrying
// the source name and the line of XML syntax errors. Validate performs the
// semantic checks that Decode leaves out.
package metadata
