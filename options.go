package bagmeta

import (
	"log/slog"

	"github.com/arloliu/bagmeta/container"
	"github.com/arloliu/bagmeta/format"
	"github.com/arloliu/bagmeta/internal/options"
)

type config struct {
	logger      *slog.Logger
	chunkSize   int
	compression format.CompressionType
	strict      bool
	bigEndian   bool
}

func defaultConfig() *config {
	return &config{
		logger:      slog.New(slog.DiscardHandler),
		chunkSize:   DefaultChunkSize,
		compression: DefaultCompression,
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	// every option is infallible
	_ = options.Apply(cfg, opts...)

	return cfg
}

func (c *config) containerOptions() []container.Option {
	opts := []container.Option{container.WithLogger(c.logger)}
	if c.bigEndian {
		opts = append(opts, container.WithBigEndian())
	}

	return opts
}

// Option configures metadata managers and datasets.
type Option = options.Option[*config]

// WithLogger sets the logger for debug traces. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithChunkSize sets the chunk size of metadata entries created by the
// manager. The default is DefaultChunkSize. Sizes the container rejects make
// CreateEntry fail with errs.ErrInvalidChunkSize.
func WithChunkSize(n int) Option {
	return options.NoError(func(c *config) {
		c.chunkSize = n
	})
}

// WithCompression sets the codec of metadata entries created by the manager.
// The default is format.CompressionNone.
func WithCompression(ct format.CompressionType) Option {
	return options.NoError(func(c *config) {
		c.compression = ct
	})
}

// WithStrict makes every XML decode reject unknown elements, malformed values
// and missing required sub-records.
func WithStrict(strict bool) Option {
	return options.NoError(func(c *config) {
		c.strict = strict
	})
}

// WithBigEndian makes CreateDataset write a big-endian container.
func WithBigEndian() Option {
	return options.NoError(func(c *config) {
		c.bigEndian = true
	})
}
