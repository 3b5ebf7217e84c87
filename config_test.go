package bptree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, LockCoarse, cfg.LockGranularity)
	require.Equal(t, 0, int(cfg.MaxPages))
}

func TestLoadConfigParsesLockGranularity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bptree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lock_granularity: per-page\nmax_pages: 100\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, LockPerPage, cfg.LockGranularity)
	require.Equal(t, uint32(100), cfg.MaxPages)
}

func TestLoadConfigRejectsUnknownGranularity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bptree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lock_granularity: something_else\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
