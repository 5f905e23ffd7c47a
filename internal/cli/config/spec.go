package config

import (
	"github.com/yndnr/rmcloud-go/pkg/rmcloud"
)

// CLIConfig is the configuration for rmcloud-cli.
type CLIConfig struct {
	// Device credential, written by "register".
	DeviceID    string `koanf:"device_id" yaml:"device_id,omitempty"`
	DeviceToken string `koanf:"device_token" yaml:"device_token,omitempty"`

	// Cached storage host, written by "host --save".
	StorageHost string `koanf:"storage_host" yaml:"storage_host,omitempty"`

	AuthURL      string `koanf:"auth_url" yaml:"auth_url,omitempty"`
	DiscoveryURL string `koanf:"discovery_url" yaml:"discovery_url,omitempty"`

	// Extra PEM-encoded CA certificates to trust, e.g. for a TLS proxy.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`

	Output   string `koanf:"output" yaml:"output,omitempty"`       // table, json, yaml
	LogLevel string `koanf:"log_level" yaml:"log_level,omitempty"` // debug, info, warn, error
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		AuthURL:      rmcloud.DefaultAuthURL,
		DiscoveryURL: rmcloud.DefaultDiscoveryURL,
		Output:       "table",
		LogLevel:     "warn",
	}
}

// Credential returns the stored device credential.
func (c *CLIConfig) Credential() rmcloud.DeviceCredential {
	return rmcloud.DeviceCredential{DeviceID: c.DeviceID, Token: c.DeviceToken}
}

// SetCredential stores a device credential.
func (c *CLIConfig) SetCredential(cred rmcloud.DeviceCredential) {
	c.DeviceID = cred.DeviceID
	c.DeviceToken = cred.Token
}
