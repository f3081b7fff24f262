package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/gossip-lsp/lspwire/config"
)

const (
	exitOK       = 0
	exitStream   = 1
	exitUsage    = 2
	exitInternal = 3
)

type globalOptions struct {
	configPath string
	endpoint   string
	logLevel   string
	logFormat  string
	watch      bool
}

// env is what every subcommand runs with.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	cfg    *config.Store[config.Config]
	logger *slog.Logger
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) int
}

var commands = []command{
	{"dump", "decode framed messages and print one JSON value per line", runDump},
	{"frame", "read a stream of JSON values and write them framed", runFrame},
	{"relay", "bridge framed stdio to a remote endpoint", runRelay},
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	opts, rest, usage, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			writef(stderr, "%s", usage)
			return exitOK
		}
		writef(stderr, "lspwire: %v\n\n%s", err, usage)
		return exitUsage
	}
	if len(rest) == 0 {
		writef(stderr, "lspwire: missing command\n\n%s", usage)
		return exitUsage
	}

	cmd, ok := lookup(rest[0])
	if !ok {
		writef(stderr, "lspwire: unknown command %q\n\n%s", rest[0], usage)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		writef(stderr, "lspwire: %v\n", err)
		return exitUsage
	}

	level := new(slog.LevelVar)
	lvl, _ := cfg.Level()
	level.Set(lvl)

	logger := newLogger(stderr, cfg.LogFormat, level).With(
		"session", ulid.Make().String(),
		"command", cmd.name,
	)

	store := config.NewStore(cfg)
	store.OnChange(func(_, cur *config.Config) {
		if lvl, err := cur.Level(); err == nil && lvl != level.Level() {
			logger.Info("log level changed", "level", lvl.String())
			level.Set(lvl)
		}
	})

	if opts.watch && opts.configPath != "" {
		reloader := newReloader(store, opts, logger)
		w, err := config.NewWatcher(opts.configPath, reloader.OnFileChange, config.WithWatcherLogger(logger))
		if err != nil {
			writef(stderr, "lspwire: watching config: %v\n", err)
			return exitInternal
		}
		defer w.Close()
	}

	return cmd.run(ctx, &env{stdin: stdin, stdout: stdout, cfg: store, logger: logger}, rest[1:])
}

func parseArgs(args []string) (globalOptions, []string, string, error) {
	var opts globalOptions
	fs := flag.NewFlagSet("lspwire", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.configPath, "config", "", "TOML settings file")
	fs.StringVar(&opts.endpoint, "endpoint", "", "endpoint override (stdio, tcp://, unix://, pipe://, ws://)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format override (text, json)")
	fs.BoolVar(&opts.watch, "watch", false, "reload -config when it changes")

	usage := cliUsage(fs)
	if err := fs.Parse(args); err != nil {
		return globalOptions{}, nil, usage, err
	}
	if opts.watch && opts.configPath == "" {
		return globalOptions{}, nil, usage, errors.New("-watch requires -config")
	}
	return opts, fs.Args(), usage, nil
}

// loadConfig reads the settings file and applies flag overrides on top.
func loadConfig(opts globalOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadTOML(opts.configPath, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	merged := *cfg
	applyOverrides(opts, &merged)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &merged, nil
}

// newReloader reloads the settings file from defaults and re-applies the
// flag overrides, so a flag keeps winning after the file changes.
func newReloader(store *config.Store[config.Config], opts globalOptions, logger *slog.Logger) *config.Reloader[config.Config] {
	return config.NewReloader(store, opts.configPath, config.Default(), logger).WithOverride(func(c *config.Config) {
		applyOverrides(opts, c)
	})
}

func applyOverrides(opts globalOptions, c *config.Config) {
	if opts.endpoint != "" {
		c.Endpoint = opts.endpoint
	}
	if opts.logLevel != "" {
		c.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		c.LogFormat = opts.logFormat
	}
}

func newLogger(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func cliUsage(fs *flag.FlagSet) string {
	var b strings.Builder
	b.WriteString("usage: lspwire [flags] <command> [command flags]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-6s %s\n", c.name, c.summary)
	}
	b.WriteString("\nflags:\n")
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(&b, "  -%s\n    \t%s\n", f.Name, f.Usage)
	})
	return b.String()
}

func writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
