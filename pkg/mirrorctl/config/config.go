package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	// GHCRRegistry is the upstream registry the sync workflow pushes to.
	GHCRRegistry = "ghcr.io"

	defaultMirrorRegistry = "ghcr.nju.edu.cn"
)

type Config struct {
	Version string `yaml:"version"`
	// Token holds the GitHub credential when the file storage backend is
	// in use. The keychain backend leaves it empty.
	Token            string   `yaml:"token,omitempty"`
	MirrorRegistry   string   `yaml:"mirror-registry,omitempty"`
	DefaultRegistry  string   `yaml:"default-registry,omitempty"`
	CustomRegistries []string `yaml:"custom-registries,omitempty"`
	Proxy            string   `yaml:"proxy,omitempty"`
	Settings         Settings `yaml:"settings,omitempty"`
}

type Settings struct {
	TokenStorage string `yaml:"token-storage,omitempty"`
	OutputFormat string `yaml:"output-format,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version:         VersionV1,
		MirrorRegistry:  defaultMirrorRegistry,
		DefaultRegistry: defaultMirrorRegistry,
		Settings: Settings{
			OutputFormat: "table",
		},
	}
}

// Load reads the config at path. A missing file yields the defaults so the
// CLI works out of the box before the first Save.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if cfg.MirrorRegistry == "" {
		cfg.MirrorRegistry = defaultMirrorRegistry
	}
	if cfg.DefaultRegistry == "" {
		cfg.DefaultRegistry = cfg.MirrorRegistry
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// Registries returns every registry the mirrored image can be pulled
// through, default first.
func (c *Config) Registries() []string {
	registries := []string{c.DefaultRegistry}
	if c.MirrorRegistry != c.DefaultRegistry {
		registries = append(registries, c.MirrorRegistry)
	}
	if GHCRRegistry != c.DefaultRegistry && GHCRRegistry != c.MirrorRegistry {
		registries = append(registries, GHCRRegistry)
	}
	registries = append(registries, c.CustomRegistries...)
	return registries
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	if strings.TrimSpace(c.DefaultRegistry) == "" {
		return errors.New("default registry is required")
	}
	return nil
}
