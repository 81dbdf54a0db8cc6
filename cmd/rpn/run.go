package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"rpn-calculator/internal/config"
	"rpn-calculator/internal/observability"
	"rpn-calculator/internal/rpn"
	"rpn-calculator/internal/runner"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

// The run function is like the main function, except that it takes in
// operating system fundamentals as arguments, and returns an error.
//
// It must stay free of globals other than the logger so it can be tested
// with in-memory readers and writers.
func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cmd := newRootCommand(getenv, stdin, stdout, stderr)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:     "rpn [FILE]",
		Short:   "Evaluate integer formulas written in Reverse Polish Notation",
		Long:    "Reads one RPN formula per line from FILE, or standard input when FILE is omitted,\nand prints each result. Errors are printed to standard error and do not stop processing.",
		Version: version,
		Args:    cobra.MaximumNArgs(1),

		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set(config.KeyFile, args[0])
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if getenv("NO_COLOR") != "" {
				cfg.NoColor = true
			}
			return evaluate(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolP(config.KeyVerbose, "v", false, "Print remaining tokens and stack after every token")
	flags.Bool(config.KeyStrict, false, "Exit with status 1 if any line fails to evaluate")
	flags.String(config.KeyLogLevel, config.DefaultConfig().LogLevel, "Diagnostic log level (debug, info, warn, error)")
	flags.Bool(config.KeyNoColor, false, "Disable coloured error output")

	// BindPFlags only fails on a nil flag set.
	_ = v.BindPFlags(flags)

	return cmd
}

func evaluate(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	observability.InitConsoleLogger(stderr, level)
	defer observability.SyncLogger()

	in := stdin
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return fmt.Errorf("open formula file: %w", err)
		}
		defer f.Close()
		in = f
	}

	logger := observability.Logger
	logger.Debug("evaluating formulas",
		zap.String("source", sourceName(cfg.File)),
		zap.Bool("verbose", cfg.Verbose),
		zap.Bool("strict", cfg.Strict),
	)

	evaluator := rpn.New(cfg.Verbose, rpn.WithTraceWriter(stdout))
	r := runner.New(evaluator, stdout, errorWriter(stderr, cfg.NoColor), logger)

	summary, err := r.Run(ctx, in)
	if err != nil {
		return err
	}

	if cfg.Strict && len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d lines failed: %w", len(summary.Failed), summary.Lines, summary.Err())
	}
	return nil
}

func sourceName(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}
