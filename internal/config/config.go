// Package config loads the ambient defaults shared by every subfile
// subcommand: where the content store lives, how long to wait on it, and
// the chunk size new publishes use when the caller doesn't override it.
//
// A TOML-file-with-home-directory-fallback shape via
// github.com/BurntSushi/toml, reshaped to the store/HTTP/chunking settings
// this system needs. CLI flags always take precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults holds the ambient configuration read from the TOML config file.
type Defaults struct {
	Store Store `toml:"store"`
	HTTP  HTTP  `toml:"http"`
}

// Store configures the content-addressed store client.
type Store struct {
	APIBaseURL string `toml:"api_base_url"`
	CatTimeout string `toml:"cat_timeout"`
}

// HTTP configures outbound and default chunking behavior.
type HTTP struct {
	RequestTimeout   string `toml:"request_timeout"`
	DefaultChunkSize uint64 `toml:"default_chunk_size"`
}

// CatTimeout parses Store.CatTimeout, falling back to 10s on any error.
func (d Defaults) CatTimeout() time.Duration {
	return parseDurationOr(d.Store.CatTimeout, 10*time.Second)
}

// RequestTimeout parses HTTP.RequestTimeout, falling back to 30s on any error.
func (d Defaults) RequestTimeout() time.Duration {
	return parseDurationOr(d.HTTP.RequestTimeout, 30*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// DefaultConfig returns the reference defaults.
func DefaultConfig() Defaults {
	return Defaults{
		Store: Store{
			APIBaseURL: "http://127.0.0.1:5001",
			CatTimeout: "10s",
		},
		HTTP: HTTP{
			RequestTimeout:   "30s",
			DefaultChunkSize: 4 * 1024 * 1024,
		},
	}
}

// Load reads the config file at subfileHome()/config.toml, falling back to
// DefaultConfig() if the file does not exist.
func Load() (Defaults, error) {
	cfg := DefaultConfig()
	path := filepath.Join(subfileHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// subfileHome returns the subfile data directory: $SUBFILE_HOME if set,
// otherwise ~/.subfile.
func subfileHome() string {
	if env := os.Getenv("SUBFILE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".subfile")
}
