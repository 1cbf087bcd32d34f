package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type chunkConfig struct {
	chunkSize int
	name      string
}

func withChunkSize(n int) Option[*chunkConfig] {
	return New(func(c *chunkConfig) error {
		if n <= 0 {
			return errors.New("chunk size must be positive")
		}
		c.chunkSize = n

		return nil
	})
}

func withName(name string) Option[*chunkConfig] {
	return NoError(func(c *chunkConfig) {
		c.name = name
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &chunkConfig{}
		err := Apply(cfg, withChunkSize(512), withName("a"), withName("b"))
		require.NoError(t, err)
		require.Equal(t, 512, cfg.chunkSize)
		require.Equal(t, "b", cfg.name)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &chunkConfig{}
		err := Apply(cfg, withName("a"), withChunkSize(0), withName("b"))
		require.EqualError(t, err, "chunk size must be positive")
		require.Equal(t, "a", cfg.name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &chunkConfig{}
		require.NoError(t, Apply(cfg, nil, withName("x")))
		require.Equal(t, "x", cfg.name)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &chunkConfig{chunkSize: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 7, cfg.chunkSize)
	})
}
