package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rmcloud-go/internal/cli/config"
)

// TokenCommand returns the token command.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:   "token",
		Usage:  "Print a fresh user token for the registered device",
		Action: printUserToken,
	}
}

func printUserToken(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}
	if err := config.RequireCredential(inv.cfg); err != nil {
		return err
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	token, err := inv.client.AuthenticateUser(ctx, inv.cfg.DeviceToken)
	if err != nil {
		return err
	}
	return printValue(c, inv, "user_token", token)
}
