package bagmeta

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/bagmeta/container"
	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/metadata"
)

// Metadata manages the metadata record of a dataset.
//
// It owns one metadata.BagMetadata and binds it to at most one container
// entry, either by reading an existing entry (Bind) or by creating one
// (CreateEntry). Once bound it stays bound until Close.
//
// A Metadata is not safe for concurrent use.
type Metadata struct {
	cfg    *config
	logger *slog.Logger

	record    *metadata.BagMetadata
	xmlLength int

	entry   *container.Entry
	dataset *Dataset
	counted bool // holds a dataset reference released by Close

	closed bool
}

// NewMetadata creates an unbound manager holding an empty initialized record.
//
// Available options:
//   - WithLogger(*slog.Logger)
//   - WithChunkSize(int) and WithCompression(format.CompressionType), used by CreateEntry
//   - WithStrict(bool), used by every decode
func NewMetadata(opts ...Option) *Metadata {
	cfg := newConfig(opts)

	return &Metadata{
		cfg:    cfg,
		logger: cfg.logger,
		record: metadata.New(),
	}
}

// OpenMetadata creates a manager and binds it to the metadata entry of ds.
//
// Parameters:
//   - ds: the dataset whose metadata entry is read
//   - opts: manager options, see NewMetadata
//
// Returns:
//   - *Metadata: the bound manager
//   - error: errs.ErrMetadataNotFound when ds has no metadata entry, an
//     *errs.ImportError when the entry does not decode
func OpenMetadata(ds *Dataset, opts ...Option) (*Metadata, error) {
	m := NewMetadata(opts...)
	if err := m.Bind(ds); err != nil {
		m.Close()
		return nil, err
	}

	return m, nil
}

// Bind reads the metadata entry of ds and replaces the record with its
// decoded contents.
//
// When the entry does not exist or cannot be opened the error matches
// errs.ErrMetadataNotFound. On any failure the manager stays unbound and
// its record is left untouched. On success the manager holds a reference on
// ds until Close.
func (m *Metadata) Bind(ds *Dataset) error {
	return m.bind(ds, true)
}

func (m *Metadata) bind(ds *Dataset, counted bool) error {
	if err := m.checkBindable(ds); err != nil {
		return err
	}
	if ds.file.Closed() {
		return &errs.StorageError{Op: "bind", Entry: MetadataPath, Err: errs.ErrClosed}
	}

	entry, err := ds.file.OpenEntry(MetadataPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrMetadataNotFound, err)
	}

	data, err := entry.ReadAll()
	if err != nil {
		_ = entry.Close()
		return err
	}

	record, err := metadata.Import(MetadataPath, data, m.cfg.strict)
	if err != nil {
		_ = entry.Close()
		return err
	}

	m.swap(record, len(data))
	m.attach(ds, entry, counted)
	m.logger.Debug("metadata bound", "path", ds.Path(), "xml_length", m.xmlLength)

	return nil
}

// LoadFromFile replaces the record with the decoded contents of the XML file
// at path. XMLLength becomes the size of the file. On failure the record is
// unchanged and the error is an *errs.ImportError.
func (m *Metadata) LoadFromFile(path string) error {
	if m.closed {
		return errs.ErrAlreadyReleased
	}

	record, size, err := metadata.ImportFile(path, m.cfg.strict)
	if err != nil {
		return err
	}

	m.swap(record, int(size))
	m.logger.Debug("metadata loaded", "file", path, "xml_length", m.xmlLength)

	return nil
}

// LoadFromBuffer replaces the record with the decoded contents of xml.
// XMLLength becomes len(xml). On failure the record is unchanged and the
// error is an *errs.ImportError.
func (m *Metadata) LoadFromBuffer(xml []byte) error {
	if m.closed {
		return errs.ErrAlreadyReleased
	}

	record, err := metadata.Import("buffer", xml, m.cfg.strict)
	if err != nil {
		return err
	}

	m.swap(record, len(xml))
	m.logger.Debug("metadata loaded", "file", "buffer", "xml_length", m.xmlLength)

	return nil
}

// CreateEntry creates the metadata entry in ds, writes the encoded record to
// it and binds the manager to it.
//
// The entry uses the manager's chunk size and compression. The manager must
// be unbound (errs.ErrAlreadyBound) and ds writable (errs.ErrReadOnly).
// Encoding failures are *errs.ExportError, container failures *errs.StorageError.
func (m *Metadata) CreateEntry(ds *Dataset) error {
	return m.createEntry(ds, true)
}

func (m *Metadata) createEntry(ds *Dataset, counted bool) error {
	if err := m.checkBindable(ds); err != nil {
		return err
	}
	if ds.ReadOnly() {
		return &errs.StorageError{Op: "create", Entry: MetadataPath, Err: errs.ErrReadOnly}
	}

	buf, err := metadata.Encode(m.record)
	if err != nil {
		return err
	}

	length := uint64(len(buf))
	entry, err := ds.file.CreateEntry(MetadataPath, length, m.cfg.chunkSize,
		container.WithEntryCompression(m.cfg.compression))
	if err != nil {
		return &errs.StorageError{Op: "create", Entry: MetadataPath, Err: err}
	}

	if err := entry.Extend(length); err != nil {
		_ = entry.Close()
		return err
	}
	if err := entry.WriteAll(buf); err != nil {
		_ = entry.Close()
		return err
	}

	m.xmlLength = len(buf)
	m.attach(ds, entry, counted)
	m.logger.Debug("metadata entry created", "path", ds.Path(), "xml_length", m.xmlLength,
		"chunk_size", m.cfg.chunkSize, "compression", m.cfg.compression.String())

	return nil
}

// Write encodes the record and overwrites the bound entry with it.
//
// Write panics when the manager is not bound; binding is a precondition,
// not a runtime condition. Encoding failures are *errs.ExportError and
// container failures *errs.StorageError.
func (m *Metadata) Write() error {
	if m.entry == nil {
		panic("bagmeta: Write on a Metadata that is not bound to an entry")
	}

	buf, err := metadata.Encode(m.record)
	if err != nil {
		return err
	}
	if err := m.entry.WriteAll(buf); err != nil {
		return err
	}

	m.xmlLength = len(buf)
	m.logger.Debug("metadata written", "xml_length", m.xmlLength)

	return nil
}

// Close releases the record, the entry handle and the dataset reference.
// Failures are logged at debug level and otherwise ignored. Calling Close
// more than once is a no-op.
func (m *Metadata) Close() {
	if m.closed {
		return
	}
	m.closed = true

	if err := metadata.Free(m.record); err != nil {
		m.logger.Debug("free metadata record", "error", err)
	}

	if m.entry != nil {
		if err := m.entry.Close(); err != nil {
			m.logger.Debug("close metadata entry", "error", err)
		}
		m.entry = nil
	}

	if m.dataset != nil && m.counted {
		if err := m.dataset.release(); err != nil {
			m.logger.Debug("release dataset", "error", err)
		}
	}
	m.dataset = nil
	m.counted = false
}

func (m *Metadata) checkBindable(ds *Dataset) error {
	if m.closed {
		return errs.ErrAlreadyReleased
	}
	if ds == nil {
		return errs.ErrNilDataset
	}
	if m.entry != nil {
		return errs.ErrAlreadyBound
	}

	return nil
}

// swap installs a decoded record. The previous record is dropped, not freed,
// since callers may still hold it from Struct.
func (m *Metadata) swap(record *metadata.BagMetadata, xmlLength int) {
	m.record = record
	m.xmlLength = xmlLength
}

func (m *Metadata) attach(ds *Dataset, entry *container.Entry, counted bool) {
	m.entry = entry
	m.dataset = ds
	m.counted = counted
	if counted {
		ds.acquire()
	}
}

// Struct returns the current record. Changes made through it are persisted
// by Write. A later load installs a new record and leaves the returned one
// intact, detached from the manager; Close releases the current record.
func (m *Metadata) Struct() *metadata.BagMetadata { return m.record }

// XMLLength returns the length in bytes of the XML most recently decoded or encoded.
func (m *Metadata) XMLLength() int { return m.xmlLength }

// IsBound reports whether the manager is bound to a container entry.
func (m *Metadata) IsBound() bool { return m.entry != nil }

// Dataset returns the dataset the manager is bound to, or nil.
func (m *Metadata) Dataset() *Dataset { return m.dataset }

func (m *Metadata) spatial() metadata.SpatialRepresentationInfo {
	if m.record == nil || m.record.SpatialRepresentationInfo == nil {
		return metadata.SpatialRepresentationInfo{}
	}

	return *m.record.SpatialRepresentationInfo
}

// RowResolution returns the node spacing along a row.
func (m *Metadata) RowResolution() float64 { return m.spatial().RowResolution }

// ColumnResolution returns the node spacing along a column.
func (m *Metadata) ColumnResolution() float64 { return m.spatial().ColumnResolution }

// LLCornerX returns the projected X coordinate of the lower-left node.
func (m *Metadata) LLCornerX() float64 { return m.spatial().LLCornerX }

// LLCornerY returns the projected Y coordinate of the lower-left node.
func (m *Metadata) LLCornerY() float64 { return m.spatial().LLCornerY }

// URCornerX returns the projected X coordinate of the upper-right node.
func (m *Metadata) URCornerX() float64 { return m.spatial().URCornerX }

// URCornerY returns the projected Y coordinate of the upper-right node.
func (m *Metadata) URCornerY() float64 { return m.spatial().URCornerY }

// HorizontalCRSAsWKT returns the horizontal reference system definition when
// its type is exactly "WKT". Other types, EPSG codes included, report false.
func (m *Metadata) HorizontalCRSAsWKT() (string, bool) {
	if m.record == nil || m.record.HorizontalReferenceSystem == nil {
		return "", false
	}

	hrs := m.record.HorizontalReferenceSystem
	if hrs.Type != "WKT" {
		return "", false
	}

	return hrs.Definition, true
}
