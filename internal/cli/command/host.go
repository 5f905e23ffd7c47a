package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rmcloud-go/internal/cli/config"
)

// HostCommand returns the host command.
func HostCommand() *cli.Command {
	return &cli.Command{
		Name:  "host",
		Usage: "Resolve the document-storage host",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Cache the host in the config file",
			},
		},
		Action: resolveHost,
	}
}

func resolveHost(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	host, err := inv.client.GetStorageHost(ctx)
	if err != nil {
		return err
	}

	if c.Bool("save") {
		if err := config.Update(inv.configPath, func(cfg *config.CLIConfig) {
			cfg.StorageHost = host
		}); err != nil {
			return fmt.Errorf("save host: %w", err)
		}
	}

	return printValue(c, inv, "storage_host", host)
}
