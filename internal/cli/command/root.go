package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/rmcloud-go/internal/cli/config"
	"github.com/yndnr/rmcloud-go/internal/cli/connection"
	"github.com/yndnr/rmcloud-go/internal/cli/output"
	"github.com/yndnr/rmcloud-go/internal/infra/buildinfo"
	"github.com/yndnr/rmcloud-go/internal/infra/tlsroots"
	"github.com/yndnr/rmcloud-go/internal/telemetry/logger"
	"github.com/yndnr/rmcloud-go/internal/telemetry/metric"
	"github.com/yndnr/rmcloud-go/pkg/rmcloud"
)

const invocationKey = "invocation"

// invocation is the per-run state built by the Before hook.
type invocation struct {
	configPath string
	cfg        *config.CLIConfig
	client     *rmcloud.Client
	conn       *connection.Manager
	log        logger.Logger
	registry   *prometheus.Registry
	timeout    time.Duration
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "rmcloud-cli",
		Usage:    "reMarkable cloud document-storage client",
		Version:  buildinfo.Get().String(),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			RegisterCommand(),
			TokenCommand(),
			HostCommand(),
			DocsCommand(),
			ConfigCommand(),
			VersionCommand(),
			ShellCommand(),
		},
		Before: setup,
		After:  dumpMetrics,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{config.EnvPrefix + "CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit the header row in table output",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log every request to stderr",
		},
		&cli.StringFlag{
			Name:  "auth-url",
			Usage: "Token service base URL",
		},
		&cli.StringFlag{
			Name:  "discovery-url",
			Usage: "Storage host discovery endpoint",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM file with extra CA certificates to trust",
		},
		&cli.Float64Flag{
			Name:  "max-rps",
			Usage: "Limit requests per second (0 = unlimited)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for the whole command",
			Value: 30 * time.Second,
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "Print request metrics to stderr on exit",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigPath   string
	Output       string
	Wide         bool
	NoHeaders    bool
	Verbose      bool
	AuthURL      string
	DiscoveryURL string
	CAFile       string
	MaxRPS       float64
	Timeout      time.Duration
	Metrics      bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigPath:   c.String("config"),
		Output:       c.String("output"),
		Wide:         c.Bool("wide"),
		NoHeaders:    c.Bool("no-headers"),
		Verbose:      c.Bool("verbose"),
		AuthURL:      c.String("auth-url"),
		DiscoveryURL: c.String("discovery-url"),
		CAFile:       c.String("ca-file"),
		MaxRPS:       c.Float64("max-rps"),
		Timeout:      c.Duration("timeout"),
		Metrics:      c.Bool("metrics"),
	}
}

// setup loads configuration and builds the client for this invocation.
func setup(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}

	overrides := map[string]string{
		"output":        flags.Output,
		"auth_url":      flags.AuthURL,
		"discovery_url": flags.DiscoveryURL,
		"ca_file":       flags.CAFile,
	}
	if cfg, err = config.Merge(cfg, overrides); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: "text",
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}
	if flags.Verbose {
		logger.SetLevel("debug")
	}
	logger.SetDefault(log)

	registry := metric.NewRegistry(buildinfo.Get())
	opts := []rmcloud.Option{
		rmcloud.WithAuthURL(cfg.AuthURL),
		rmcloud.WithDiscoveryURL(cfg.DiscoveryURL),
		rmcloud.WithMetrics(rmcloud.NewMetrics(registry)),
	}
	if cfg.CAFile != "" {
		pool := tlsroots.NewPool()
		if err := pool.AddCertFile(cfg.CAFile); err != nil {
			return err
		}
		opts = append(opts, rmcloud.WithHTTPClient(pool.HTTPClient()))
	}
	if flags.MaxRPS > 0 {
		opts = append(opts, rmcloud.WithRateLimiter(rate.NewLimiter(rate.Limit(flags.MaxRPS), 1)))
	}
	client := rmcloud.NewClient(opts...)

	c.App.Metadata[invocationKey] = &invocation{
		configPath: flags.ConfigPath,
		cfg:        cfg,
		client:     client,
		conn:       connection.NewManager(client, cfg),
		log:        log,
		registry:   registry,
		timeout:    flags.Timeout,
	}
	return nil
}

// dumpMetrics writes the request metrics in the Prometheus text format
// when --metrics is set.
func dumpMetrics(c *cli.Context) error {
	inv := getInvocation(c)
	if inv == nil || !c.Bool("metrics") {
		return nil
	}

	return metric.WriteText(c.App.ErrWriter, inv.registry)
}

// getInvocation retrieves the state built by setup.
func getInvocation(c *cli.Context) *invocation {
	if inv, ok := c.App.Metadata[invocationKey].(*invocation); ok {
		return inv
	}
	return nil
}

// requireInvocation is getInvocation for actions, which cannot run without
// setup.
func requireInvocation(c *cli.Context) (*invocation, error) {
	inv := getInvocation(c)
	if inv == nil {
		return nil, errors.New("command not initialized")
	}
	return inv, nil
}

// commandContext returns a context bounded by --timeout that carries the
// logger.
func commandContext(c *cli.Context, inv *invocation) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, inv.timeout)
	return logger.WithLogger(ctx, inv.log), cancel
}

// printResult renders data in the configured output format.
func printResult(c *cli.Context, inv *invocation, data any) error {
	format, err := output.ParseFormat(inv.cfg.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide"), c.Bool("no-headers")).Format(c.App.Writer, data)
}

// printValue prints a single value bare in table mode, so it can be used
// in shell substitutions, and as a one-key document otherwise.
func printValue(c *cli.Context, inv *invocation, key, value string) error {
	if inv.cfg.Output == string(output.FormatTable) {
		_, err := fmt.Fprintln(c.App.Writer, value)
		return err
	}
	return printResult(c, inv, map[string]string{key: value})
}
