package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zhouzirui/mnchat/internal/locale"
	"github.com/zhouzirui/mnchat/internal/model/chat"
)

// ClientConfig holds the settings of the chat client.
type ClientConfig struct {
	Endpoint       string
	Locale         string
	RequestTimeout time.Duration
	LogFile        string
	Verbose        bool
	Plain          bool
}

// clientFile mirrors the TOML layout of the client config file.
type clientFile struct {
	Endpoint       string `toml:"endpoint"`
	Locale         string `toml:"locale"`
	RequestTimeout string `toml:"request_timeout"`
	LogFile        string `toml:"log_file"`
	Plain          *bool  `toml:"plain"`
}

// DefaultClientConfig returns the built-in client settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint: chat.DefaultEndpoint,
		Locale:   string(locale.Default),
	}
}

// DefaultClientConfigPath returns $XDG_CONFIG_HOME/mnchat/config.toml, or
// the equivalent under the user config dir.
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mnchat", "config.toml")
}

// LoadClient layers defaults, the TOML file at path and MNCHAT_* environment
// variables. A missing file is only an error when required is set.
func LoadClient(path string, required bool) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		if err := applyClientFile(&cfg, path); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return ClientConfig{}, err
			}
		}
	}

	if err := applyClientEnv(&cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func applyClientFile(cfg *ClientConfig, path string) error {
	var file clientFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("read client config %s: %w", path, err)
	}

	if file.Endpoint != "" {
		cfg.Endpoint = file.Endpoint
	}
	if file.Locale != "" {
		cfg.Locale = file.Locale
	}
	if file.RequestTimeout != "" {
		d, err := time.ParseDuration(file.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q in %s: %w", file.RequestTimeout, path, err)
		}
		cfg.RequestTimeout = d
	}
	if file.LogFile != "" {
		cfg.LogFile = file.LogFile
	}
	if file.Plain != nil {
		cfg.Plain = *file.Plain
	}
	return nil
}

func applyClientEnv(cfg *ClientConfig) error {
	if v := strings.TrimSpace(os.Getenv("MNCHAT_ENDPOINT")); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("MNCHAT_LOCALE")); v != "" {
		cfg.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv("MNCHAT_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MNCHAT_TIMEOUT value %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// Validate rejects settings the client cannot run with. The endpoint is
// used verbatim and never checked.
func (c ClientConfig) Validate() error {
	if !locale.Supported(c.Locale) {
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
