// Package config loads ogmadb-server's runtime configuration from an
// optional TOML file, in the manner of the toml schema parser the
// scaffolding tool keeps under internal/parser/toml: decode into an
// intermediate document shape, then apply defaults for anything left
// unset. Values are overridable by CLI flags (see cmd/ogmadb-server).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the fully-resolved runtime configuration for one server
// process.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	DBPath     string `toml:"db_path"`
	LogLevel   string `toml:"log_level"`
}

// Default returns the configuration used when no file and no flags
// override it.
func Default() Config {
	return Config{
		ListenAddr: "127.0.0.1:8042",
		DBPath:     "./ogmadb.ogmadb",
		LogLevel:   "info",
	}
}

// tomlDocument is the on-disk shape; every field is optional so a partial
// file only overrides what it names.
type tomlDocument struct {
	ListenAddr string `toml:"listen_addr"`
	DBPath     string `toml:"db_path"`
	LogLevel   string `toml:"log_level"`
}

// Load reads path, if it exists, and merges it over Default. A missing
// file is not an error; Load returns Default() unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var doc tomlDocument
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return Config{}, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if doc.ListenAddr != "" {
		cfg.ListenAddr = doc.ListenAddr
	}
	if doc.DBPath != "" {
		cfg.DBPath = doc.DBPath
	}
	if doc.LogLevel != "" {
		cfg.LogLevel = doc.LogLevel
	}
	return cfg, nil
}
