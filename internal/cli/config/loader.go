package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/rmcloud-go/internal/infra/confloader"
)

// ErrNotRegistered is returned by RequireCredential when no device token is
// configured.
var ErrNotRegistered = errors.New("no device registered, run \"rmcloud-cli register\" first")

// EnvPrefix prefixes the environment variables that override the file.
const EnvPrefix = "RMCLOUD_"

var (
	validOutputs   = []string{"table", "json", "yaml"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".rmcloud", "cli.yaml")
}

// Load loads CLI configuration from the file at path, then from RMCLOUD_*
// environment variables. A missing file yields the defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML with mode 0600, creating the directory
// with mode 0700 if needed.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// Update applies fn to the configuration stored at path and writes it back.
// Only the file contents are rewritten; environment variables and flags in
// effect for the current run are not persisted.
func Update(path string, fn func(*CLIConfig)) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &CLIConfig{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read config: %w", err)
	}

	fn(cfg)
	return Save(cfg, path)
}

// Merge applies command-line overrides to cfg. Keys use the koanf names
// (auth_url, output, ...); empty values are ignored.
func Merge(cfg *CLIConfig, flags map[string]string) (*CLIConfig, error) {
	overrides := make(map[string]any, len(flags))
	for k, v := range flags {
		overrides[k] = v
	}

	l := confloader.NewLoader()
	if err := l.LoadMap(overrides); err != nil {
		return nil, err
	}

	merged := *cfg
	if err := l.Unmarshal(&merged); err != nil {
		return nil, fmt.Errorf("merge flags: %w", err)
	}
	return &merged, nil
}

// Validate reports every problem with cfg at once.
func Validate(cfg *CLIConfig) error {
	var result *multierror.Error

	if !slices.Contains(validOutputs, cfg.Output) {
		result = multierror.Append(result, fmt.Errorf("output: unsupported format %q", cfg.Output))
	}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		result = multierror.Append(result, fmt.Errorf("log_level: unsupported level %q", cfg.LogLevel))
	}
	if err := validateURL("auth_url", cfg.AuthURL); err != nil {
		result = multierror.Append(result, err)
	}
	if err := validateURL("discovery_url", cfg.DiscoveryURL); err != nil {
		result = multierror.Append(result, err)
	}
	if cfg.StorageHost != "" {
		if err := validateURL("storage_host", cfg.StorageHost); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if cfg.CAFile != "" {
		if _, err := os.Stat(cfg.CAFile); err != nil {
			result = multierror.Append(result, fmt.Errorf("ca_file: %w", err))
		}
	}
	if (cfg.DeviceID == "") != (cfg.DeviceToken == "") {
		result = multierror.Append(result, errors.New("device_id and device_token must be set together"))
	}

	return result.ErrorOrNil()
}

// RequireCredential returns ErrNotRegistered if cfg has no device token.
func RequireCredential(cfg *CLIConfig) error {
	if cfg.DeviceToken == "" {
		return ErrNotRegistered
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: %q is not an http(s) URL", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: %q has no host", key, raw)
	}
	return nil
}
