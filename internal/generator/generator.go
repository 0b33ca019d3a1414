package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/example/clientdoc/internal/source"
	"github.com/example/clientdoc/internal/validator"
)

// Module is one (source, template, output) triple.
type Module struct {
	Source   string
	Template string
	Output   string
}

// Options configures a Generator.
type Options struct {
	// Vocabulary adds or overrides type labels.
	Vocabulary   map[string]string
	UnknownTypes UnknownTypePolicy
	Dedup        DedupMode

	// Check compares instead of writing; stale outputs fail with ErrStaleOutput.
	Check bool
	// ModelDir, when set, receives a dump of each module's DocumentModel.
	ModelDir    string
	ModelFormat string

	Logger *zap.Logger
	// DiffOut receives check-mode diffs. Defaults to os.Stderr.
	DiffOut io.Writer
}

// Generator runs the extraction and rendering pipeline per module.
type Generator struct {
	parser    *source.Parser
	extractor *Extractor
	renderer  *Renderer
	opts      Options
	logger    *zap.Logger
}

// New creates a generator
func New(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DiffOut == nil {
		opts.DiffOut = os.Stderr
	}
	if opts.ModelFormat == "" {
		opts.ModelFormat = "yaml"
	}
	types := NewTypeMapper(opts.Vocabulary, opts.UnknownTypes, logger)
	return &Generator{
		parser:    source.NewParser(),
		extractor: NewExtractor(types, logger),
		renderer:  NewRenderer(opts.Dedup),
		opts:      opts,
		logger:    logger,
	}
}

// Generate processes modules in order. The first failing module aborts the
// run; modules after it are not processed.
func (g *Generator) Generate(ctx context.Context, modules []Module) error {
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.GenerateModule(ctx, m); err != nil {
			return fmt.Errorf("module %s: %w", m.Source, err)
		}
	}
	return nil
}

// GenerateModule builds one module and writes (or checks) its output.
// Nothing is written unless the whole module renders and validates.
func (g *Generator) GenerateModule(ctx context.Context, m Module) error {
	g.logger.Info("generating", zap.String("source", m.Source), zap.String("output", m.Output))

	content, model, err := g.Build(ctx, m)
	if err != nil {
		return err
	}

	if g.opts.Check {
		return g.check(m, content)
	}

	if err := writeFile(m.Output, []byte(content)); err != nil {
		return &FileIOError{Op: "write", Path: m.Output, Err: err}
	}

	// The dump only accompanies an output that was actually written.
	if g.opts.ModelDir != "" {
		if err := g.dumpModel(m, model); err != nil {
			return err
		}
	}

	g.logger.Info("generated",
		zap.String("output", m.Output),
		zap.Int("queries", len(model.Queries)),
		zap.Int("transactions", len(model.Transactions)),
		zap.Int("multisig_transactions", len(model.MultisigTransactions)),
		zap.Int("events", len(model.Events)))
	return nil
}

// Build parses, extracts and renders m and returns the final document.
func (g *Generator) Build(ctx context.Context, m Module) (string, DocumentModel, error) {
	src, err := os.ReadFile(m.Source)
	if err != nil {
		return "", DocumentModel{}, &FileIOError{Op: "read", Path: m.Source, Err: err}
	}

	model, err := g.Extract(ctx, m.Source, src)
	if err != nil {
		return "", DocumentModel{}, err
	}

	sections, err := g.renderer.Render(model)
	if err != nil {
		return "", DocumentModel{}, err
	}

	// Only generated text is checked; the template is copied verbatim.
	if err := validator.ValidateMarkdown(Combine("", sections)); err != nil {
		return "", DocumentModel{}, fmt.Errorf("rendered sections failed validation: %w", err)
	}

	tmpl, err := os.ReadFile(m.Template)
	if err != nil {
		return "", DocumentModel{}, &FileIOError{Op: "read", Path: m.Template, Err: err}
	}

	return Combine(string(tmpl), sections), model, nil
}

// Extract parses src and returns its DocumentModel.
func (g *Generator) Extract(ctx context.Context, path string, src []byte) (DocumentModel, error) {
	file, err := g.parser.Parse(ctx, src, path)
	if err != nil {
		perr := &ParseError{Path: path, Msg: "cannot build syntax tree", Err: err}
		var serr *source.SyntaxError
		if errors.As(err, &serr) {
			perr.Line = serr.Line
		}
		return DocumentModel{}, perr
	}
	defer file.Close()

	return g.extractor.Extract(file)
}

// Combine places the rendered sections under the template header.
func Combine(template string, s Sections) string {
	parts := []string{template, s.Queries, s.Transactions, s.MultisigTransactions, s.Events}
	return strings.TrimSpace(strings.Join(parts, "\n")) + "\n"
}

func (g *Generator) check(m Module, content string) error {
	current, err := os.ReadFile(m.Output)
	if err != nil && !os.IsNotExist(err) {
		return &FileIOError{Op: "read", Path: m.Output, Err: err}
	}
	if string(current) == content {
		g.logger.Info("up to date", zap.String("output", m.Output))
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(content),
		FromFile: m.Output,
		ToFile:   m.Output + " (generated)",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", m.Output, err)
	}
	fmt.Fprint(g.opts.DiffOut, diff)
	return fmt.Errorf("%w: %s", ErrStaleOutput, m.Output)
}

func (g *Generator) dumpModel(m Module, model DocumentModel) error {
	base := strings.TrimSuffix(filepath.Base(m.Output), filepath.Ext(m.Output))

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(g.opts.ModelFormat) {
	case "yaml", "yml":
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err = encoder.Encode(model); err == nil {
			err = encoder.Close()
		}
		data = buf.Bytes()
	case "json":
		data, err = json.MarshalIndent(model, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported model format: %s (use json or yaml)", g.opts.ModelFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to encode model for %s: %w", m.Source, err)
	}

	path := filepath.Join(g.opts.ModelDir, base+".model."+strings.ToLower(g.opts.ModelFormat))
	if err := writeFile(path, data); err != nil {
		return &FileIOError{Op: "write", Path: path, Err: err}
	}
	g.logger.Debug("model written", zap.String("path", path))
	return nil
}

func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return os.WriteFile(path, content, 0644)
}
