package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/buildplan/internal/config"
	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/logfields"
	"git.home.luguber.info/inful/buildplan/internal/metrics"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Global carries state shared by every subcommand.
type Global struct {
	Ctx      context.Context
	Logger   *slog.Logger
	Out      io.Writer
	Recorder metrics.Recorder
	registry *prom.Registry
}

// CLI definition & global flags.
type CLI struct {
	Config      []string         `short:"c" help:"Configuration file, repeatable; later files take precedence" type:"path"`
	EnvFile     []string         `name:"env-file" help:"Read variables from this .env file (default: .env and .env.local when present)" type:"path"`
	Set         []string         `short:"s" help:"Override a key (key=value, dotted keys nest), repeatable"`
	Policy      string           `help:"Merge policy for configuration layers: overwrite-by-priority, deep-merge-mappings or reject-on-conflict" default:"overwrite-by-priority"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this textfile on exit" type:"path"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Resolve  ResolveCmd  `cmd:"" help:"Resolve the configuration and print the build plan"`
	Validate ValidateCmd `cmd:"" help:"Resolve and validate the configuration without printing it"`
	Explain  ExplainCmd  `cmd:"" help:"Show which sources contributed each key"`
	Data     DataCmd     `cmd:"" help:"Resolve the data cascade of the input directory"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	History  HistoryCmd  `cmd:"" help:"List recorded build plans"`
	Publish  PublishCmd  `cmd:"" help:"Resolve the configuration and publish the plan to NATS"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// NewGlobal builds the shared state for a parsed CLI. A Prometheus registry is
// only created when a metrics file was requested.
func NewGlobal(ctx context.Context, c *CLI, out io.Writer) *Global {
	g := &Global{Ctx: ctx, Logger: slog.Default(), Out: out, Recorder: metrics.NoopRecorder{}}
	if c.MetricsFile != "" {
		g.registry = prom.NewRegistry()
		g.Recorder = metrics.NewPrometheusRecorder(g.registry)
	}
	return g
}

// Finish flushes metrics and turns err into a process exit code, reporting it
// on stderr.
func (c *CLI) Finish(g *Global, err error) int {
	if c.MetricsFile != "" && g.registry != nil {
		if werr := metrics.WriteTextfile(c.MetricsFile, g.registry); werr != nil {
			g.Logger.Warn("Failed to write metrics", logfields.Path(c.MetricsFile), logfields.Error(werr))
		}
	}
	return ferrors.NewCLIErrorAdapter(c.Verbose, g.Logger).HandleError(err)
}

// LoadOptions translates the global flags into loader options.
func (c *CLI) LoadOptions() (config.LoadOptions, error) {
	policy, err := resolver.ParsePolicy(c.Policy)
	if err != nil {
		return config.LoadOptions{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid --policy").
			Fatal().UserAction().
			WithContext("valid", resolver.PolicyNames()).
			Build()
	}
	return config.LoadOptions{
		Files:     c.Config,
		EnvFiles:  c.EnvFile,
		Overrides: c.Set,
		Policy:    policy,
	}, nil
}

// Load resolves and validates the configuration selected by the global flags.
func (c *CLI) Load(g *Global, required ...string) (*config.Result, error) {
	opts, err := c.LoadOptions()
	if err != nil {
		return nil, err
	}
	if len(required) > 0 {
		opts.Required = append(append([]string{}, config.RequiredKeys...), required...)
	}
	return c.loader(g).Load(opts)
}

func (c *CLI) loader(g *Global) *config.Loader {
	return config.NewLoader(config.WithLogger(g.Logger), config.WithRecorder(g.Recorder))
}
