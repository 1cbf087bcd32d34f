package container

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/bagmeta/errs"
	"github.com/arloliu/bagmeta/format"
	"github.com/arloliu/bagmeta/internal/options"
	"github.com/arloliu/bagmeta/section"
)

// OpenMode selects whether a container may be modified.
type OpenMode uint8

const (
	ReadOnly OpenMode = iota
	ReadWrite
)

func (m OpenMode) String() string {
	if m == ReadWrite {
		return "read-write"
	}

	return "read-only"
}

type config struct {
	bigEndian bool
	logger    *slog.Logger
}

func defaultConfig() *config {
	return &config{logger: slog.New(slog.DiscardHandler)}
}

// Option configures Create and Open.
type Option = options.Option[*config]

// WithLittleEndian writes the container body in little-endian byte order.
// It is the default option.
func WithLittleEndian() Option {
	return options.NoError(func(c *config) {
		c.bigEndian = false
	})
}

// WithBigEndian writes the container body in big-endian byte order.
// Ignored by Open, which uses the order recorded in the file.
func WithBigEndian() Option {
	return options.NoError(func(c *config) {
		c.bigEndian = true
	})
}

// WithLogger sets the logger for debug traces. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

type entryConfig struct {
	compression format.CompressionType
	maxLength   uint64
}

// EntryOption configures CreateEntry.
type EntryOption = options.Option[*entryConfig]

// WithEntryCompression sets the codec applied to every chunk of the entry.
// The default is format.CompressionNone.
func WithEntryCompression(ct format.CompressionType) EntryOption {
	return options.New(func(c *entryConfig) error {
		if !ct.Valid() {
			return fmt.Errorf("invalid entry compression: %s", ct)
		}
		c.compression = ct

		return nil
	})
}

// WithMaxLength caps how far the entry may be extended.
// The default is section.UnlimitedLength.
func WithMaxLength(n uint64) EntryOption {
	return options.New(func(c *entryConfig) error {
		if n == 0 {
			return fmt.Errorf("%w: max length must be positive", errs.ErrExceedsMaxLength)
		}
		c.maxLength = n

		return nil
	})
}

func defaultEntryConfig() *entryConfig {
	return &entryConfig{
		compression: format.CompressionNone,
		maxLength:   section.UnlimitedLength,
	}
}
