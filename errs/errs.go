// Package errs defines the sentinel errors and typed error wrappers shared by
// every bagmeta package.
//
// Sentinels are compared with errors.Is. The typed wrappers (ImportError,
// ExportError, StorageError) carry the failing operation and unwrap to the
// underlying cause, so both checks work through every layer:
//
//	var ie *errs.ImportError
//	if errors.As(err, &ie) {
//	    fmt.Println(ie.Source, ie.Line)
//	}
//	if errors.Is(err, errs.ErrMetadataNotFound) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Metadata manager errors.
var (
	ErrMetadataNotFound = errors.New("metadata entry not found")
	ErrAlreadyBound     = errors.New("metadata already bound to a container entry")
	ErrNotInitialized   = errors.New("metadata record is not initialized")
	ErrAlreadyReleased  = errors.New("metadata record already released")
	ErrNilDataset       = errors.New("dataset is nil")
)

// XML codec errors.
var (
	ErrEmptyDocument  = errors.New("empty metadata document")
	ErrUnknownElement = errors.New("unknown element")
	ErrMalformedField = errors.New("malformed field value")
	ErrMissingField   = errors.New("missing required element")
)

// Container errors.
var (
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryExists        = errors.New("entry already exists")
	ErrInvalidEntryName   = errors.New("invalid entry name")
	ErrInvalidChunkSize   = errors.New("invalid chunk size")
	ErrExceedsMaxLength   = errors.New("length exceeds entry maximum")
	ErrReadOnly           = errors.New("container is read-only")
	ErrClosed             = errors.New("container or entry is closed")
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrUnsupportedVersion = errors.New("unsupported container version")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrTruncated          = errors.New("container data truncated")
	ErrStringTooLong      = errors.New("string exceeds maximum length")
)

// ImportError reports a failure to turn an XML document into a metadata record.
type ImportError struct {
	// Source names where the document came from: a file path, "buffer" or an entry name.
	Source string
	// Line is the 1-based line of a syntax error, 0 when unknown.
	Line int
	Err  error
}

func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import metadata from %s (line %d): %v", e.Source, e.Line, e.Err)
	}

	return fmt.Sprintf("import metadata from %s: %v", e.Source, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// ExportError reports a failure to encode a metadata record as XML.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export metadata: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// StorageError reports a container-level failure while persisting or reading an entry.
type StorageError struct {
	// Op is the operation that failed, e.g. "create", "extend", "write", "read".
	Op    string
	Entry string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Entry, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
