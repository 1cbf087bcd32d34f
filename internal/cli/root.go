// Package cli implements the bagmeta command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/bagmeta"
	"github.com/arloliu/bagmeta/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "bagmeta",
	Short: "Inspect and edit the metadata of BAG containers",
	Long: `bagmeta creates BAG containers and reads, writes and validates the XML
metadata record stored at ` + bagmeta.MetadataPath + `.

Defaults for chunk size, compression, strict decoding and byte order are read
from ` + config.ConfigFileName + ` in the working directory, or from the file
given with --config. Command line flags override them.

Exit Codes:
  0  - Success
  1  - General error
  2  - Metadata entry not found
  3  - Metadata import or export failed`,
	SilenceUsage: true,
}

var rootFlags struct {
	verbose bool
	config  string
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&rootFlags.config, "config", "",
		"Defaults file (default: ./"+config.ConfigFileName+" when present)")
}

// settings carries what every command derives from the global flags.
type settings struct {
	logger *slog.Logger
	cfg    *config.Config
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	level := slog.LevelWarn
	if rootFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := rootFlags.config
	explicit := path != ""
	if !explicit {
		path = "."
	}

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrConfigNotFound) && !explicit:
		cfg = &config.Config{}
	case err != nil:
		return nil, fmt.Errorf("load config: %w", err)
	default:
		logger.Debug("config loaded", "path", path, "chunk_size", cfg.ChunkSize,
			"compression", cfg.Compression, "strict", cfg.Strict, "big_endian", cfg.BigEndian)
	}

	return &settings{logger: logger, cfg: cfg}, nil
}

// options returns the library options from the defaults file.
func (s *settings) options() []bagmeta.Option {
	return append(s.cfg.Options(), bagmeta.WithLogger(s.logger))
}
