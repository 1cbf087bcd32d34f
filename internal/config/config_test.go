package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	return dir
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `chunk_size: 4096
compression: zstd
strict: true
big_endian: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 4096, cfg.ChunkSize)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.BigEndian)
	assert.Len(t, cfg.Options(), 4)
}

func TestLoad_FilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compression: LZ4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "LZ4", cfg.Compression)
	assert.Len(t, cfg.Options(), 1)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{{invalid"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative chunk size", "chunk_size: -1\n"},
		{"unknown compression", "compression: brotli\n"},
		{"chunk size not a number", "chunk_size: big\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Config{}, *cfg)
	assert.Empty(t, cfg.Options())
}

func TestOptions_Nil(t *testing.T) {
	var cfg *Config
	assert.Nil(t, cfg.Options())
}
