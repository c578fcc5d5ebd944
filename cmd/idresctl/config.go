package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// cliConfig is ~/.config/idresctl/config.toml.
type cliConfig struct {
	StorePath string     `toml:"store_path"`
	EnvFile   string     `toml:"env_file"`
	Output    string     `toml:"output"`
	LogLevel  string     `toml:"log_level"`
	Auth      authConfig `toml:"auth"`
}

type authConfig struct {
	JWTSigningKey string `toml:"jwt_signing_key"`
	JWTIssuer     string `toml:"jwt_issuer"`
}

func defaultConfigPath() string {
	if p := os.Getenv("IDRESCTL_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "idresctl", "config.toml")
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (cliConfig, error) {
	cfg := cliConfig{
		StorePath: "idres-config.json",
		EnvFile:   ".env",
		LogLevel:  "warn",
		Auth:      authConfig{JWTIssuer: "idres"},
	}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cliConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}
