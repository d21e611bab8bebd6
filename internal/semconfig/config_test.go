package semconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidation(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestLoadFromDirFallsBackToDefaultsWhenNoProjectFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().Chunking.DocChunkSize, cfg.Chunking.DocChunkSize)
	assert.Equal(t, Default().Logging.Level, cfg.Logging.Level)
}

func TestLoadFromDirReadsYAMLProjectFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".semindex")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	yaml := "chunking:\n  doc_chunk_size: 1200\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(yaml), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Chunking.DocChunkSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromDirReadsTOMLProjectFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".semindex")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	tomlBody := "max_content_items = 99\n\n[chunking]\noverlap = 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(tomlBody), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.MaxContentItems)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
}

func TestValidateRejectsOverlapExceedingDocChunkSize(t *testing.T) {
	cfg := Default()
	cfg.Chunking.Overlap = cfg.Chunking.DocChunkSize
	assert.ErrorIs(t, Validate(cfg), ErrInvalidOverlap)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidLogLevel)
}
