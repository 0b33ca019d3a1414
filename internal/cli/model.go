package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/clientdoc/internal/generator"
)

func newModelCommand() *cobra.Command {
	var cfg ModelConfig

	cmd := &cobra.Command{
		Use:   "model <source>",
		Short: "Print the document model extracted from one client source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.SourcePath = args[0]
			return PrintModel(cmd, &cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.OutputPath, "output", "-", "Path to output file or '-' for stdout")
	cmd.Flags().StringVar(&cfg.Format, "format", "yaml", "Output format: json or yaml")
	cmd.Flags().StringVar(&cfg.UnknownTypes, "unknown-types", "placeholder", "Unlabelled type annotations: error or placeholder")

	return cmd
}

// ModelConfig holds configuration for the model command.
type ModelConfig struct {
	SourcePath   string
	OutputPath   string
	Format       string
	UnknownTypes string
}

// PrintModel extracts the document model of cfg.SourcePath and writes it.
func PrintModel(cmd *cobra.Command, cfg *ModelConfig) error {
	policy, err := generator.ParseUnknownTypePolicy(cfg.UnknownTypes)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(filepath.Clean(cfg.SourcePath))
	if err != nil {
		return &generator.FileIOError{Op: "read", Path: cfg.SourcePath, Err: err}
	}

	gen := generator.New(generator.Options{UnknownTypes: policy})
	model, err := gen.Extract(cmd.Context(), cfg.SourcePath, src)
	if err != nil {
		return err
	}

	if cfg.OutputPath == "-" || cfg.OutputPath == "" {
		return writeModel(cmd.OutOrStdout(), cfg.Format, model)
	}

	outDir := filepath.Dir(cfg.OutputPath)
	if fi, err := os.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory %s does not exist", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outDir)
	}

	f, err := os.Create(cfg.OutputPath) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return writeModel(f, cfg.Format, model)
}

func writeModel(w io.Writer, format string, model generator.DocumentModel) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(model)
	case "yaml", "yml":
		data, err := yaml.Marshal(model)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
