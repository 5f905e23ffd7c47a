package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rmcloud-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show build information",
		Action: showVersion,
	}
}

func showVersion(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}
	return printResult(c, inv, buildinfo.Get())
}
