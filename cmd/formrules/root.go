package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	formrules "github.com/goliatone/go-formrules"
	"github.com/goliatone/go-formrules/pkg/config"
)

// errReported marks failures whose details were already written to the
// command output, so main only sets the exit code.
var errReported = errors.New("formrules: failures reported")

type app struct {
	configPath string
	verbose    bool

	cfg    *config.Compiled
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "formrules",
		Short: "Exercise the rules of multi-step HTML forms",
		Long: `formrules attaches the form rules engine to static HTML documents.

It evaluates show/hide conditions, resolves branches, validates steps and
drives navigation exactly as a browser session would, which makes form
markup checkable from the command line and in CI.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML or JSON file overriding selectors, attributes and messages")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log engine diagnostics to stderr")

	cmd.AddCommand(
		newCheckCommand(a),
		newRenderCommand(a),
		newWalkCommand(a),
		newLintCommand(a),
	)
	return cmd
}

func (a *app) setup(*cobra.Command, []string) error {
	a.cfg = config.Defaults()
	if a.configPath != "" {
		cfg, err := config.LoadFile(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("formrules: build logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) options(extra ...formrules.Option) []formrules.Option {
	return append([]formrules.Option{
		formrules.WithConfig(a.cfg),
		formrules.WithLogger(a.logger),
	}, extra...)
}

func (a *app) open(path string, extra ...formrules.Option) (*formrules.Session, error) {
	return formrules.OpenFile(path, a.options(extra...)...)
}
