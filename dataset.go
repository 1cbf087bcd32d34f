package bagmeta

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"sync/atomic"

	"github.com/arloliu/bagmeta/container"
	"github.com/arloliu/bagmeta/errs"
)

// Dataset is an open BAG container session.
//
// A Dataset is reference counted. CreateDataset, OpenDataset and NewDataset
// return it holding one reference for the caller, released by Close. Every
// Metadata bound through Bind or CreateEntry holds one more, released by
// Metadata.Close. The container file is closed when the last reference goes
// away.
//
// The dataset's own manager, returned by Metadata, holds no reference.
type Dataset struct {
	file    *container.File
	cfg     *config
	logger  *slog.Logger
	version string

	meta *Metadata

	refs        atomic.Int32
	ownerClosed atomic.Bool
	fileClosed  atomic.Bool
}

func newDataset(f *container.File, cfg *config) *Dataset {
	ds := &Dataset{
		file:   f,
		cfg:    cfg,
		logger: cfg.logger,
	}
	ds.version, _ = f.Attribute(VersionAttribute)
	ds.refs.Store(1)

	return ds
}

// CreateDataset creates a new container at path, records the BAG version and
// writes md as its metadata entry.
//
// The dataset adopts md as its own manager: md must be unbound and must not
// be closed by the caller afterwards. A nil md creates the entry from an
// empty record. On failure the partially written file is removed.
//
// Parameters:
//   - path: file to create; it must not exist
//   - md: the metadata to store
//   - opts: WithBigEndian and WithLogger configure the container
//
// Example:
//
//	md := bagmeta.NewMetadata(bagmeta.WithCompression(format.CompressionZstd))
//	if err := md.LoadFromFile("survey.xml"); err != nil {
//	    return err
//	}
//	ds, err := bagmeta.CreateDataset("survey.bag", md)
func CreateDataset(path string, md *Metadata, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)

	f, err := container.Create(path, cfg.containerOptions()...)
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*Dataset, error) {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}

	if err := f.SetAttribute(VersionAttribute, Version); err != nil {
		return fail(err)
	}

	ds := newDataset(f, cfg)
	if md == nil {
		md = NewMetadata(opts...)
	}
	if err := md.createEntry(ds, false); err != nil {
		return fail(err)
	}
	if err := md.Write(); err != nil {
		md.Close()
		return fail(err)
	}
	if err := f.Flush(); err != nil {
		md.Close()
		return fail(err)
	}
	ds.meta = md

	cfg.logger.Debug("dataset created", "path", path, "version", Version)

	return ds, nil
}

// OpenDataset opens an existing container and binds the dataset's own
// metadata manager to its metadata entry.
//
// A container without metadata fails with errs.ErrMetadataNotFound. Manager
// options such as WithStrict apply to the dataset's own manager.
func OpenDataset(path string, mode container.OpenMode, opts ...Option) (*Dataset, error) {
	cfg := newConfig(opts)

	f, err := container.Open(path, mode, cfg.containerOptions()...)
	if err != nil {
		return nil, err
	}

	ds := newDataset(f, cfg)
	md := NewMetadata(opts...)
	if err := md.bind(ds, false); err != nil {
		md.Close()
		_ = f.Close()
		return nil, err
	}
	ds.meta = md

	cfg.logger.Debug("dataset opened", "path", path, "mode", mode.String(), "version", ds.version)

	return ds, nil
}

// NewDataset adopts an open container session that may not have a metadata
// entry yet. Bind a manager with Metadata.Bind or create the entry with
// Metadata.CreateEntry.
func NewDataset(f *container.File, opts ...Option) *Dataset {
	return newDataset(f, newConfig(opts))
}

// Metadata returns the dataset's own manager, or nil for a dataset from
// NewDataset.
func (ds *Dataset) Metadata() *Metadata { return ds.meta }

// Version returns the BAG version recorded in the container, or "" when absent.
func (ds *Dataset) Version() string { return ds.version }

// ReadOnly reports whether the container was opened read-only.
func (ds *Dataset) ReadOnly() bool { return ds.file.Mode() == container.ReadOnly }

// Path returns the container path.
func (ds *Dataset) Path() string { return ds.file.Path() }

// File returns the underlying container session.
func (ds *Dataset) File() *container.File { return ds.file }

// Closed reports whether the container has been closed.
func (ds *Dataset) Closed() bool { return ds.fileClosed.Load() }

// Flush writes pending changes to disk without closing the container.
func (ds *Dataset) Flush() error {
	return ds.file.Flush()
}

// Close closes the dataset's own manager and releases the caller's
// reference. The container closes once every bound Metadata is closed too.
// Calling Close more than once is a no-op.
func (ds *Dataset) Close() error {
	if !ds.ownerClosed.CompareAndSwap(false, true) {
		return nil
	}

	if ds.meta != nil {
		ds.meta.Close()
	}

	return ds.release()
}

func (ds *Dataset) acquire() {
	ds.refs.Add(1)
}

func (ds *Dataset) release() error {
	n := ds.refs.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 {
		return errors.New("bagmeta: dataset released more times than acquired")
	}
	if !ds.fileClosed.CompareAndSwap(false, true) {
		return nil
	}

	ds.logger.Debug("dataset closed", "path", ds.file.Path())
	if err := ds.file.Close(); err != nil {
		return &errs.StorageError{Op: "close", Err: err}
	}

	return nil
}

// GeoToGrid converts projected coordinates to the grid node that contains
// them, measured from the lower-left corner. Results are clamped to the
// uint32 range; a zero resolution yields the maximum index.
func (ds *Dataset) GeoToGrid(x, y float64) (row, column uint32) {
	m := ds.meta
	if m == nil {
		return 0, 0
	}

	row = toIndex((x - m.LLCornerX()) / m.RowResolution())
	column = toIndex((y - m.LLCornerY()) / m.ColumnResolution())

	return row, column
}

// GridToGeo converts a grid node to projected coordinates.
func (ds *Dataset) GridToGeo(row, column uint32) (x, y float64) {
	m := ds.meta
	if m == nil {
		return 0, 0
	}

	x = m.LLCornerX() + float64(row)*m.RowResolution()
	y = m.LLCornerY() + float64(column)*m.ColumnResolution()

	return x, y
}

func toIndex(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
