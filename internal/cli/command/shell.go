package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rmcloud-go/internal/cli/repl"
	"github.com/yndnr/rmcloud-go/internal/telemetry/logger"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively, reusing one session",
		Description: "Each line is a command without the program name, for example\n" +
			"\"docs list\". Global flags given to shell apply to every line.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (empty: do not persist)",
				Value: repl.DefaultHistoryFile(),
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		inv.log.Warn("load history failed", "error", err)
	}

	exec := func(ctx context.Context, args []string) error {
		if len(args) > 0 && args[0] == "shell" {
			return errors.New("already in shell")
		}
		return shellApp(c, inv).RunContext(ctx, append([]string{"rmcloud-cli"}, args...))
	}

	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}

	r := repl.New(exec, commandPaths(App().Commands),
		repl.WithIO(c.App.Reader, c.App.ErrWriter),
		repl.WithPrompt("rmcloud> "),
		repl.WithHistory(history),
	)
	runErr := r.Run(parent)
	inv.conn.Disconnect()

	if err := history.Save(); err != nil {
		inv.log.Warn("save history failed", "error", err)
	}
	return runErr
}

// shellApp is the command tree run for each shell line. It shares the
// invocation of the shell, so global flags and the session carry over.
// --verbose on a line raises the log level for that line only.
func shellApp(c *cli.Context, inv *invocation) *cli.App {
	level := logger.GetLevel()

	app := App()
	app.Reader = c.App.Reader
	app.Writer = c.App.Writer
	app.ErrWriter = c.App.ErrWriter
	app.Metadata = map[string]any{invocationKey: inv}
	app.Before = func(lc *cli.Context) error {
		if lc.Bool("verbose") {
			logger.SetLevel("debug")
		}
		return nil
	}
	app.After = func(*cli.Context) error {
		logger.SetLevel(level)
		return nil
	}
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

// commandPaths lists "group sub" names for completion.
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		paths = append(paths, cmd.Name)
		for _, sub := range commandPaths(cmd.Subcommands) {
			paths = append(paths, cmd.Name+" "+sub)
		}
	}
	return paths
}
