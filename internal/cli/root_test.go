package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/clientdoc/internal/config"
	"github.com/example/clientdoc/internal/generator"
)

const clientSource = `// @flow
type Client = {
  // Emitted when a task is added
  TaskAdded: Event<{
    taskId: number, // The task ID
  }>,
  // Adds a task
  addTask: Sender<{ title: string }, { TaskAdded: TaskAdded }>,
};
`

// writeProject lays out one client module under a temp root and returns the
// root and the config file path.
func writeProject(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "src", "index.js"), clientSource)
	mustWrite(t, filepath.Join(root, "docs", "Client.template.md"), "# Client\n")

	cfg := filepath.Join(root, "clientdoc.yaml")
	mustWrite(t, cfg, "root: "+root+"\n"+
		"log-level: error\n"+
		"modules:\n"+
		"  - source: src/index.js\n"+
		"    template: docs/Client.template.md\n"+
		"    output: out/Client.md\n")
	return root, cfg
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRootCommandGenerates(t *testing.T) {
	root, cfg := writeProject(t)

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--config", cfg})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "out", "Client.md"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"# Client\n",
		"### `addTask.send({ title }, options)`",
		"|TaskAdded|object|Contains the data defined in [TaskAdded](#events-TaskAdded)|",
		"### [events.TaskAdded.addListener(({ taskId }) => { /* ... */ })](#events-TaskAdded)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRootCommandCheck(t *testing.T) {
	root, cfg := writeProject(t)

	gen := NewRootCommand()
	gen.SetArgs([]string{"--config", cfg})
	if err := gen.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	check := NewRootCommand()
	check.SetArgs([]string{"--config", cfg, "--check"})
	if err := check.Execute(); err != nil {
		t.Fatalf("check on fresh output: %v", err)
	}

	mustWrite(t, filepath.Join(root, "out", "Client.md"), "# Client\n")

	var stderr bytes.Buffer
	check = NewRootCommand()
	check.SetArgs([]string{"--config", cfg, "--check"})
	check.SetErr(&stderr)
	err := check.Execute()
	if err == nil {
		t.Fatal("expected stale output error")
	}
	if !strings.Contains(err.Error(), generator.ErrStaleOutput.Error()) {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "+## Senders") {
		t.Errorf("expected diff on stderr, got %q", stderr.String())
	}
}

func TestRootCommandRejectsArgs(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	_, cfg := writeProject(t)

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--config", cfg, "--dedup", "sometimes"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected validation error")
	}
}

func TestGeneratorOptions(t *testing.T) {
	opts, err := generatorOptions(config.Config{
		Dedup:        "literal",
		UnknownTypes: "placeholder",
		ModelDir:     "models",
		ModelFormat:  "json",
		Vocabulary:   []config.VocabularyEntry{{Name: "TaskId", Label: "Task ID"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Dedup != generator.DedupLiteral {
		t.Errorf("Dedup: got %v", opts.Dedup)
	}
	if opts.UnknownTypes != generator.UnknownTypePlaceholder {
		t.Errorf("UnknownTypes: got %v", opts.UnknownTypes)
	}
	if opts.Vocabulary["TaskId"] != "Task ID" {
		t.Errorf("Vocabulary: got %v", opts.Vocabulary)
	}

	if _, err := generatorOptions(config.Config{Dedup: "sometimes"}, nil); err == nil {
		t.Error("expected error for unknown dedup mode")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "info"},
		{level: "error"},
		{level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := newLogger(tt.level)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_ = logger.Sync()
		})
	}
}

func TestRunReturnsErrorWithoutLoggingIt(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	orig := loggerFactory
	loggerFactory = func(string) (*zap.Logger, error) { return zap.New(core), nil }
	defer func() { loggerFactory = orig }()

	root := t.TempDir()
	cfg := config.Config{
		Root:         root,
		Modules:      []config.Module{{Source: "missing.js", Template: "t.md", Output: "out.md"}},
		Dedup:        "by-name",
		UnknownTypes: "error",
		ModelFormat:  "yaml",
		LogLevel:     "info",
	}

	err := run(context.Background(), cfg, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Errorf("error logged %d time(s); main reports it", n)
	}
}
