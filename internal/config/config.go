// Package config loads the bagmeta command line defaults file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/bagmeta"
	"github.com/arloliu/bagmeta/format"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the file looked up when Load is given a directory.
const ConfigFileName = "bagmeta.yaml"

// Config holds the defaults applied to datasets and metadata managers.
// Zero values mean "use the library default".
type Config struct {
	ChunkSize   int    `yaml:"chunk_size,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	Strict      bool   `yaml:"strict,omitempty"`
	BigEndian   bool   `yaml:"big_endian,omitempty"`
}

// Load reads the config file at path. A directory is searched for
// ConfigFileName.
func Load(path string) (*Config, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the field values without touching the filesystem.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	if _, err := format.ParseCompressionType(c.Compression); err != nil {
		return fmt.Errorf("compression: %w", err)
	}

	return nil
}

// Options converts the config into library options. Invalid values are
// skipped; call Validate first to report them.
func (c *Config) Options() []bagmeta.Option {
	if c == nil {
		return nil
	}

	var opts []bagmeta.Option
	if c.ChunkSize > 0 {
		opts = append(opts, bagmeta.WithChunkSize(c.ChunkSize))
	}
	if ct, err := format.ParseCompressionType(c.Compression); err == nil && c.Compression != "" {
		opts = append(opts, bagmeta.WithCompression(ct))
	}
	if c.Strict {
		opts = append(opts, bagmeta.WithStrict(true))
	}
	if c.BigEndian {
		opts = append(opts, bagmeta.WithBigEndian())
	}

	return opts
}
