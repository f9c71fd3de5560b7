package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/fibcalc/internal/adapters/fs"
	"github.com/bft-labs/fibcalc/internal/app"
	"github.com/bft-labs/fibcalc/internal/cliconfig"
	"github.com/bft-labs/fibcalc/internal/domain"
	"github.com/bft-labs/fibcalc/internal/ports"
	"github.com/bft-labs/fibcalc/internal/telemetry"
	"github.com/bft-labs/fibcalc/internal/watch"
	"github.com/bft-labs/fibcalc/pkg/log"
)

const longHelp = `Calculate Fibonacci numbers.

Computes F(N) one step at a time. With --sleepy every step is announced and
followed by a pause. With --checkpoint-dir a snapshot is written after every
step and the next run resumes from the newest readable one.

Settings can also come from a config file (TOML or YAML, default
$HOME/.fibcalc/config.toml), FIBCALC_* environment variables or a .env file
in the working directory. Flags win over environment, environment over file.`

var exampleUsage = strings.TrimSpace(`
  fibcalc 10
  fibcalc 90 --sleepy --checkpoint-dir ./ckpt
  fibcalc latest -c ./ckpt
  fibcalc watch -c ./ckpt --until 90
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(run(slices.Clone(os.Args[1:]), os.Stdout, os.Stderr))
}

// run executes the CLI with an explicit argument list and returns the
// process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if err := cliconfig.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "fibcalc N",
		Short:         "Calculate Fibonacci numbers",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if err := resolveConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			zl := cliconfig.Logger(stderr, cfg.LogLevel)
			zl.Debug().Interface("config", cfg).Uint64("n", n).Msg("configuration")
			logger := log.NewZerologAdapterWithLogger(zl)

			ctx := cmd.Context()
			if cfg.Trace {
				shutdown, err := telemetry.Init(ctx, telemetry.Config{
					ServiceVersion: getVersion(),
					Writer:         stderr,
				})
				if err != nil {
					return fmt.Errorf("init tracing: %w", err)
				}
				defer func() {
					if err := shutdown(context.Background()); err != nil {
						zl.Warn().Err(err).Msg("flush traces")
					}
				}()
			}

			var store ports.SnapshotStore
			if cfg.CheckpointDir != "" {
				s, err := fs.OpenStore(cfg.CheckpointDir, cfg.Format, cfg.Keep, logger)
				if err != nil {
					return err
				}
				store = s
			}
			var pacer ports.Pacer
			if cfg.Sleepy {
				pacer = app.NewIntervalPacer(cfg.SleepInterval)
			}

			calc := app.NewCalculator(app.CalculatorConfig{
				CheckpointDir: cfg.CheckpointDir,
				Output:        stdout,
			}, store, pacer, logger)

			v, err := calc.Compute(ctx, n)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					zl.Warn().Msg("interrupted")
				}
				return err
			}
			fmt.Fprintf(stdout, "Fibonacci number %d: %s\n", n, v)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.fibcalc/config.toml)")
	pf.StringVarP(&cfg.CheckpointDir, "checkpoint-dir", "c", cfg.CheckpointDir, "directory to write checkpoints")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")

	root.Flags().BoolVarP(&cfg.Sleepy, "sleepy", "s", cfg.Sleepy, "iterate with 1s sleeps")
	root.Flags().DurationVar(&cfg.SleepInterval, "sleep-interval", cfg.SleepInterval, "pause between steps in sleepy mode")
	if err := root.Flags().MarkHidden("sleep-interval"); err != nil {
		fmt.Fprintf(stderr, "hide sleep-interval flag: %v\n", err)
	}
	root.Flags().StringVar(&cfg.Format, "format", cfg.Format,
		fmt.Sprintf("snapshot encoding (%s)", strings.Join(fs.Formats(), ", ")))
	root.Flags().IntVar(&cfg.Keep, "keep", cfg.Keep, "number of newest snapshots to keep (0 keeps all)")
	root.Flags().BoolVar(&cfg.Trace, "trace", cfg.Trace, "print OpenTelemetry spans to stderr")

	root.AddCommand(
		newLatestCmd(&cfg, &cfgPath, stdout, stderr),
		newWatchCmd(&cfg, &cfgPath, stdout, stderr),
	)
	return root
}

func newLatestCmd(cfg *cliconfig.Config, cfgPath *string, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the newest readable snapshot in the checkpoint directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := resolveConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			if cfg.CheckpointDir == "" {
				return fmt.Errorf("%w: --checkpoint-dir is required", domain.ErrInvalidConfig)
			}
			logger := log.NewZerologAdapterWithLogger(cliconfig.Logger(stderr, cfg.LogLevel))

			store := fs.NewSnapshotStore(cfg.CheckpointDir, fs.WithLogger(logger))
			p, err := store.Load(cmd.Context())
			if err != nil {
				if domain.IsNoCheckpoint(err) {
					return fmt.Errorf("no loadable checkpoint in %s: %w", cfg.CheckpointDir, err)
				}
				return err
			}
			fmt.Fprintf(stdout, "Fibonacci number %d: %s\n", p.Index, p.Current)
			return nil
		},
	}
}

func newWatchCmd(cfg *cliconfig.Config, cfgPath *string, stdout, stderr io.Writer) *cobra.Command {
	wcfg := watch.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a checkpoint directory and print each new snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := resolveConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			if cfg.CheckpointDir == "" {
				return fmt.Errorf("%w: --checkpoint-dir is required", domain.ErrInvalidConfig)
			}
			logger := log.NewZerologAdapterWithLogger(cliconfig.Logger(stderr, cfg.LogLevel))

			store := fs.NewSnapshotStore(cfg.CheckpointDir, fs.WithLogger(logger))
			w := watch.New(cfg.CheckpointDir, store, wcfg, logger)
			return w.Run(cmd.Context(), func(p domain.Progress) {
				fmt.Fprintf(stdout, "Fibonacci number %d: %s\n", p.Index, p.Current)
			})
		},
	}
	cmd.Flags().Uint64Var(&wcfg.Until, "until", 0, "exit once this index has been reached (0 watches until interrupted)")
	cmd.Flags().DurationVar(&wcfg.DebounceDelay, "debounce", wcfg.DebounceDelay, "delay between a file event and reloading")
	return cmd
}

// resolveConfig layers the config file and environment under the flags
// that were set explicitly, then validates the result.
func resolveConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	} else if !cliconfig.FileExists(cfgFile) {
		return fmt.Errorf("config file %s: %w", cfgFile, os.ErrNotExist)
	}

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func parseIndex(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid N %q: must be a non-negative integer", s)
	}
	return n, nil
}
