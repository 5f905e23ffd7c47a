// Package config provides the rmcloud-cli configuration.
//
//   - spec.go: CLIConfig struct (~/.rmcloud/cli.yaml)
//   - loader.go: loading, merging, validation and saving
//
// The file holds the device credential produced by "rmcloud-cli register"
// and is written with mode 0600.
package config
