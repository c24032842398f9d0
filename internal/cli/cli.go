package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/dmngrid/internal/app"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// flags are the global options shared by every command.
type flags struct {
	configPath  string
	logLevel    string
	logFormat   string
	engine      string
	concurrency int
	store       string
	redisAddr   string
	remoteURL   string
}

// command holds what one invocation needs. The App is built once the flags
// are parsed.
type command struct {
	out, errW io.Writer
	environ   map[string]string
	flags     flags
	app       *app.App
}

// Execute runs the dmngrid command line with args. A nil environ reads the
// process environment. Errors that should end the process with a specific
// code are returned as *ExitError.
func Execute(ctx context.Context, args []string, out, errW io.Writer, environ map[string]string) error {
	c := &command{out: out, errW: errW, environ: environ}
	root := c.newRoot()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

func (c *command) newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "dmngrid",
		Short: "dmngrid - evaluate and test DMN-style decision graphs.",
		Long: `dmngrid evaluates decision models, a graph of inputs, decisions, knowledge
models and constants, with a local expression interpreter or a remote DMN
service, and runs their test cases.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "Path to a YAML config file.")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&c.flags.logFormat, "log-format", "", "Log output format. Options: 'text' or 'json'.")
	pf.StringVarP(&c.flags.engine, "engine", "e", "", "Engine to evaluate with. Options: 'localInterpreter' or 'remoteService'.")
	pf.IntVar(&c.flags.concurrency, "concurrency", 0, "Number of test cases run at once. 0 picks a default for the engine.")
	pf.StringVar(&c.flags.store, "store", "", "Result store. Options: 'memory' or 'redis'.")
	pf.StringVar(&c.flags.redisAddr, "redis-addr", "", "Address of the redis result store.")
	pf.StringVar(&c.flags.remoteURL, "remote-url", "", "Base URL of the remote DMN service.")

	root.AddCommand(
		c.newRunCommand(),
		c.newTestCommand(),
		c.newCaptureCommand(),
		c.newExportCommand(),
		c.newImportTCKCommand(),
		c.newValidateCommand(),
		c.newEnginesCommand(),
		c.newProbeCommand(),
		c.newServeCommand(),
	)
	return root
}

// setup layers the flags that were set over the config file and the
// environment, then builds the App.
func (c *command) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(c.flags.configPath, c.environ)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(c.flags.logLevel)
	}
	if f.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(c.flags.logFormat)
	}
	if f.Changed("engine") {
		cfg.Engine = c.flags.engine
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = c.flags.concurrency
	}
	if f.Changed("store") {
		cfg.Store.Type = c.flags.store
	}
	if f.Changed("redis-addr") {
		cfg.Store.RedisAddr = c.flags.redisAddr
	}
	if f.Changed("remote-url") {
		if cfg.Engines == nil {
			cfg.Engines = map[string]map[string]any{}
		}
		opts := cfg.Engines[engine.RemoteServiceID]
		if opts == nil {
			opts = map[string]any{}
		}
		opts["baseUrl"] = c.flags.remoteURL
		cfg.Engines[engine.RemoteServiceID] = opts
	}

	valid, err := app.NewConfig(cfg)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	a, err := app.NewApp(c.out, c.errW, valid)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	c.app = a
	cmd.SetContext(a.Context(cmd.Context()))
	a.Logger().Debug("CLI setup finished.", "command", cmd.Name(), "engine", valid.Engine)
	return nil
}

func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("expected %s, got %d argument(s)", names, len(args))
		}
		return nil
	}
}
