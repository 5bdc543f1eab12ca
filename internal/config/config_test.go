package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadMergesPartialFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ogmadb.toml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_addr = "0.0.0.0:9000"`+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	require.Equal(t, Default().DBPath, cfg.DBPath)
	require.Equal(t, Default().LogLevel, cfg.LogLevel)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ogmadb.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is not valid toml ==="), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
