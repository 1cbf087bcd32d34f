package container

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/bagmeta/compress"
	"github.com/arloliu/bagmeta/endian"
	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/internal/collision"
	"github.com/arloliu/bagmeta/internal/hash"
	"github.com/arloliu/bagmeta/internal/options"
	"github.com/arloliu/bagmeta/internal/pool"
	"github.com/arloliu/bagmeta/section"
)

// File is an open container session.
type File struct {
	path   string
	mode   OpenMode
	header section.FileHeader
	engine endian.EndianEngine
	logger *slog.Logger

	entries map[string]*entryState
	names   *collision.Tracker // entry creation order, kept stable on disk

	attrs     map[string]string
	attrOrder []string

	dirty  bool
	closed bool
}

// EntryInfo describes an entry without opening it.
type EntryInfo struct {
	Name      string
	Length    uint64
	MaxLength uint64
	ChunkSize int
	Stats     compress.CompressionStats
}

// Create creates a new, empty container at path. It fails if path exists.
func Create(path string, opts ...Option) (*File, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}
	_ = fd.Close()

	f := newFile(path, ReadWrite, section.NewFileHeader(cfg.bigEndian), cfg.logger)
	f.dirty = true
	if err := f.Flush(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	f.logger.Debug("container created", "path", path, "big_endian", cfg.bigEndian)

	return f, nil
}

// Open opens an existing container.
func Open(path string, mode OpenMode, opts ...Option) (*File, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	header, err := section.ParseFileHeader(data)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}

	f := newFile(path, mode, header, cfg.logger)
	if err := f.parseImage(data); err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	f.logger.Debug("container opened", "path", path, "mode", mode.String(),
		"entries", f.names.Count(), "attributes", len(f.attrOrder))

	return f, nil
}

func newFile(path string, mode OpenMode, header section.FileHeader, logger *slog.Logger) *File {
	return &File{
		path:    path,
		mode:    mode,
		header:  header,
		engine:  header.Engine(),
		logger:  logger,
		entries: make(map[string]*entryState),
		names:   collision.NewTracker(),
		attrs:   make(map[string]string),
	}
}

// Path returns the file system path of the container.
func (f *File) Path() string { return f.path }

// Mode returns the mode the container was opened with.
func (f *File) Mode() OpenMode { return f.mode }

// Closed reports whether Close has been called.
func (f *File) Closed() bool { return f.closed }

// HasEntry reports whether an entry named name exists.
func (f *File) HasEntry(name string) bool {
	_, ok := f.entries[name]
	return ok
}

// OpenEntry opens an existing entry. Handles to the same entry share its
// contents; callers serialize access themselves.
func (f *File) OpenEntry(name string) (*Entry, error) {
	if f.closed {
		return nil, errs.ErrClosed
	}

	st, ok := f.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrEntryNotFound, name)
	}

	return &Entry{file: f, st: st}, nil
}

// CreateEntry creates a new entry of initialLength zero bytes, stored in
// chunks of chunkSize bytes, and returns an open handle to it.
func (f *File) CreateEntry(name string, initialLength uint64, chunkSize int, opts ...EntryOption) (*Entry, error) {
	if err := f.checkWritable(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, ok := f.entries[name]; ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrEntryExists, name)
	}
	if chunkSize <= 0 || chunkSize > section.MaxChunkSize {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidChunkSize, chunkSize)
	}

	cfg := defaultEntryConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if initialLength > cfg.maxLength {
		return nil, fmt.Errorf("%w: %d > %d", errs.ErrExceedsMaxLength, initialLength, cfg.maxLength)
	}
	if !section.LengthFits(initialLength, uint32(chunkSize)) { //nolint:gosec
		return nil, fmt.Errorf("%w: %d bytes need too many chunks", errs.ErrExceedsMaxLength, initialLength)
	}

	st := &entryState{
		name:        name,
		length:      initialLength,
		maxLength:   cfg.maxLength,
		chunkSize:   uint32(chunkSize), //nolint:gosec
		compression: cfg.compression,
		data:        make([]byte, initialLength),
		loaded:      true,
	}
	collided, err := f.names.Track(name, hash.ID(name))
	if err != nil {
		return nil, err
	}
	if collided {
		f.logger.Debug("entry name ID collision", "entry", name)
	}
	f.entries[name] = st
	f.dirty = true

	f.logger.Debug("entry created", "entry", name, "length", initialLength,
		"chunk_size", chunkSize, "compression", cfg.compression.String())

	return &Entry{file: f, st: st}, nil
}

// Entries lists all entries in creation order.
func (f *File) Entries() []EntryInfo {
	infos := make([]EntryInfo, 0, f.names.Count())
	for _, name := range f.names.Names() {
		st := f.entries[name]
		infos = append(infos, EntryInfo{
			Name:      name,
			Length:    st.length,
			MaxLength: st.maxLength,
			ChunkSize: int(st.chunkSize),
			Stats:     st.stats(),
		})
	}

	return infos
}

// SetAttribute sets a root string attribute.
func (f *File) SetAttribute(name, value string) error {
	if err := f.checkWritable(); err != nil {
		return err
	}
	if name == "" || len(name) > section.MaxStringLength {
		return fmt.Errorf("%w: attribute %q", errs.ErrInvalidEntryName, name)
	}
	if len(value) > section.MaxStringLength {
		return fmt.Errorf("%w: attribute %s", errs.ErrStringTooLong, name)
	}

	if _, ok := f.attrs[name]; !ok {
		f.attrOrder = append(f.attrOrder, name)
	}
	f.attrs[name] = value
	f.dirty = true

	return nil
}

// Attribute returns a root string attribute.
func (f *File) Attribute(name string) (string, bool) {
	v, ok := f.attrs[name]
	return v, ok
}

// Attributes returns a copy of all root attributes.
func (f *File) Attributes() map[string]string {
	return maps.Clone(f.attrs)
}

// Flush writes the container image to disk if anything changed.
func (f *File) Flush() error {
	if f.closed {
		return errs.ErrClosed
	}
	if f.mode != ReadWrite {
		return errs.ErrReadOnly
	}
	if !f.dirty {
		return nil
	}

	buf := pool.GetImageBuffer()
	defer pool.PutImageBuffer(buf)

	if err := f.encodeImage(buf); err != nil {
		return err
	}
	if err := writeAtomic(f.path, buf); err != nil {
		return err
	}
	f.dirty = false
	f.logger.Debug("container flushed", "path", f.path, "bytes", buf.Len())

	return nil
}

// Close flushes a writable container. Entry handles become unusable.
// Calling Close more than once is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}

	var err error
	if f.mode == ReadWrite && f.dirty {
		err = f.Flush()
	}

	f.closed = true
	f.logger.Debug("container closed", "path", f.path)

	return err
}

func (f *File) checkWritable() error {
	if f.closed {
		return errs.ErrClosed
	}
	if f.mode != ReadWrite {
		return errs.ErrReadOnly
	}

	return nil
}

func validateName(name string) error {
	if !strings.HasPrefix(name, "/") || len(name) < 2 || len(name) > section.MaxStringLength {
		return fmt.Errorf("%w: %q", errs.ErrInvalidEntryName, name)
	}
	if strings.Contains(name, "//") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: %q", errs.ErrInvalidEntryName, name)
	}

	return nil
}

// writeAtomic writes buf to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, buf *pool.ByteBuffer) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("flush container: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = buf.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush container: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush container: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("flush container: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("flush container: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("flush container: %w", err)
	}

	return nil
}
