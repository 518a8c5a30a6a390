package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultURL     = "http://127.0.0.1:3000"
	defaultTimeout = 10 * time.Second
)

// settings is the client configuration file.
type settings struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

func defaultSettings() settings {
	return settings{URL: defaultURL, Timeout: defaultTimeout.String()}
}

// configDir returns the client config directory.
func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gophvault")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "client.toml")
}

// loadSettings reads path over the defaults. A missing file is fine when
// path is the default location; an explicitly given one must exist.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	if _, err := toml.DecodeFile(path, &s); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read config %s: %w", path, err)
	}
	return s, nil
}

func (s settings) timeout() (time.Duration, error) {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}
