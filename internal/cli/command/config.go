package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rmcloud-go/internal/cli/config"
	"github.com/yndnr/rmcloud-go/internal/telemetry/logger"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration (secrets redacted)",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:   "validate",
				Usage:  "Validate the config file",
				Action: configValidate,
			},
		},
	}
}

// configShow prints the effective configuration. Secrets and JWT-looking
// values are masked.
func configShow(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	cfg := inv.cfg
	values := map[string]string{
		"device_id":     cfg.DeviceID,
		"device_token":  cfg.DeviceToken,
		"storage_host":  cfg.StorageHost,
		"auth_url":      cfg.AuthURL,
		"discovery_url": cfg.DiscoveryURL,
		"ca_file":       cfg.CAFile,
		"output":        cfg.Output,
		"log_level":     logger.GetLevel(),
	}
	for k, v := range values {
		if k == "device_token" || logger.IsSensitiveValue(v) {
			values[k] = logger.RedactString(v)
		}
	}
	return printResult(c, inv, values)
}

func configPath(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.App.Writer, inv.configPath)
	return err
}

// configValidate checks the file and environment without flag overrides.
func configValidate(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	cfg, err := config.Load(inv.configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "%s: OK\n", inv.configPath)
	return nil
}
