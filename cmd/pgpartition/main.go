package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"pgpartition/internal/config"
	"pgpartition/internal/logging"
	"pgpartition/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "pgpartition/internal/storage/all"
)

const usage = `usage: pgpartition [-config path] <command> [flags]

commands:
  validate                      lint the config and exit
  plan                          print the SQL of every plan step
  apply [-tx | -atomic]         execute the plan step by step
  migrate [-check] [-down n]    apply the plan once, tracked in partition_migrations
  partitions -table name        list the partitions of a table
  partitioned [-strategy s]     list partitioned tables (range, list, hash or all)
  kinds                         list the storage backends compiled in
`

// main loads the config, wires logging and metrics, and dispatches to the
// requested command. The exit code is 0 on success, 1 on failure and 2 on
// usage errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logging.NewLogger())
	stop()
	os.Exit(code)
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"validate":    cmdValidate,
	"plan":        cmdPlan,
	"apply":       cmdApply,
	"migrate":     cmdMigrate,
	"partitions":  cmdPartitions,
	"partitioned": cmdPartitioned,
	"kinds":       cmdKinds,
}

// app carries what every command needs.
type app struct {
	cfgPath string
	cfg     config.Config
	stdout  io.Writer
	stderr  io.Writer
	log     zerolog.Logger
}

// usageError makes run exit with code 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func run(ctx context.Context, args []string, stdout, stderr io.Writer, log zerolog.Logger) int {
	fs := flag.NewFlagSet("pgpartition", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	cfgPath := fs.String("config", "configs/partitions/events.yaml", "config file (YAML, or JSON by extension)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fs.Usage()
		return 2
	}

	a := &app{cfgPath: *cfgPath, stdout: stdout, stderr: stderr, log: log}
	if name != "kinds" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Error().Err(err).Str("config", *cfgPath).Msg("load config")
			return 1
		}
		a.cfg = cfg

		flush := setupMetrics(cfg.Metrics, log)
		defer flush()
	}

	ctx = log.WithContext(ctx)
	if err := cmd(ctx, a, fs.Args()[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, ue.msg)
			return 2
		}
		log.Error().Err(err).Str("command", name).Msg("command failed")
		return 1
	}
	return 0
}

// lint prints every issue to stderr and fails when any of them is an error.
func (a *app) lint() error {
	issues := config.Validate(a.cfg)
	for _, iss := range issues {
		fmt.Fprintf(a.stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid: %s", a.cfgPath)
	}
	return nil
}

func cmdValidate(ctx context.Context, a *app, args []string) error {
	if err := a.lint(); err != nil {
		return err
	}
	a.log.Info().Str("config", a.cfgPath).Int("steps", len(a.cfg.Plan)).Msg("configuration is valid")
	return nil
}

func cmdKinds(ctx context.Context, a *app, args []string) error {
	for _, k := range storage.ListKinds() {
		fmt.Fprintln(a.stdout, k)
	}
	return nil
}
