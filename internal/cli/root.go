// Package cli provides the command-line interface for clientdoc.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/clientdoc/internal/config"
	"github.com/example/clientdoc/internal/generator"
)

// Execute creates and runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the clientdoc command tree. Running the root command
// regenerates every configured module.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "clientdoc",
		Short:         "Generate Markdown API references for contract clients",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Path to config file (default ./clientdoc.yaml)")
	flags.String("root", ".", "Directory relative module paths are resolved against")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("check", false, "Fail if any output differs from what would be generated")
	flags.String("model-dir", "", "Also write each extracted document model to this directory")
	flags.String("model-format", "yaml", "Model dump format: yaml or json")
	flags.String("dedup", "by-name", "Event data merge mode: by-name or literal")
	flags.String("unknown-types", "error", "Unlabelled type annotations: error or placeholder")

	cmd.AddCommand(newModelCommand())

	return cmd
}

func run(ctx context.Context, cfg config.Config, diffOut io.Writer) error {
	logger, err := loggerFactory(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := generatorOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts.DiffOut = diffOut

	modules := cfg.ResolvedModules()
	gen := generator.New(opts)

	genModules := make([]generator.Module, 0, len(modules))
	for _, m := range modules {
		genModules = append(genModules, generator.Module{Source: m.Source, Template: m.Template, Output: m.Output})
	}

	// Errors are reported once, by main.
	if err := gen.Generate(ctx, genModules); err != nil {
		return err
	}
	logger.Info("done", zap.Int("modules", len(genModules)), zap.Bool("check", cfg.Check))
	return nil
}

func generatorOptions(cfg config.Config, logger *zap.Logger) (generator.Options, error) {
	dedup, err := generator.ParseDedupMode(cfg.Dedup)
	if err != nil {
		return generator.Options{}, err
	}
	policy, err := generator.ParseUnknownTypePolicy(cfg.UnknownTypes)
	if err != nil {
		return generator.Options{}, err
	}
	return generator.Options{
		Vocabulary:   cfg.VocabularyMap(),
		UnknownTypes: policy,
		Dedup:        dedup,
		Check:        cfg.Check,
		ModelDir:     cfg.ModelDir,
		ModelFormat:  cfg.ModelFormat,
		Logger:       logger,
	}, nil
}

// loggerFactory allows tests to observe what run logs.
var loggerFactory = newLogger

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
