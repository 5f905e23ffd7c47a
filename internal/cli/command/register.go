package command

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/rmcloud-go/internal/cli/config"
	"github.com/yndnr/rmcloud-go/pkg/rmcloud"
)

// readPassword reads a line from the terminal without echo.
var readPassword = term.ReadPassword

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Pair this machine using a one-time code from my.remarkable.com",
		ArgsUsage: "[CODE]",
		Description: "Exchanges the one-time code for a device token and stores it in the\n" +
			"config file. Without CODE the code is read from the terminal.",
		Action: registerDevice,
	}
}

func registerDevice(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	code := strings.TrimSpace(c.Args().First())
	if code == "" {
		if code, err = promptCode(c); err != nil {
			return err
		}
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	cred, err := inv.client.AuthenticateDevice(ctx, code)
	if err != nil {
		return explainRegisterError(err)
	}

	if err := config.Update(inv.configPath, func(cfg *config.CLIConfig) {
		cfg.SetCredential(cred)
	}); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	inv.cfg.SetCredential(cred)

	fmt.Fprintf(c.App.ErrWriter, "Device %s registered, credential saved to %s\n", cred.DeviceID, inv.configPath)
	return nil
}

func promptCode(c *cli.Context) (string, error) {
	fmt.Fprint(c.App.ErrWriter, "One-time code: ")
	raw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}

	code := strings.TrimSpace(string(raw))
	if code == "" {
		return "", errors.New("one-time code required")
	}
	return code, nil
}

// explainRegisterError adds a hint for the failures a user can act on.
func explainRegisterError(err error) error {
	switch {
	case errors.Is(err, rmcloud.ErrInvalidOneTimeCode):
		return fmt.Errorf("%w (request a new code at %s)", err, rmcloud.DefaultAuthURL)
	case errors.Is(err, rmcloud.ErrWrongAPIVersion):
		return fmt.Errorf("%w (the service no longer accepts this client)", err)
	default:
		return err
	}
}
