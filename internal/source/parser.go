// Package source parses contract-client modules into tree-sitter syntax trees.
//
// Client modules are written with Flow/TypeScript type annotations. They are
// parsed with the TypeScript grammar, which also accepts the Flow forms the
// clients use (qualified generic references and `?T` maybe types).
//
// Flow-only syntax the grammar does not know is rejected with a SyntaxError,
// which fails the whole module. Known cases: variance sigils on properties
// (`{ +a: number }`) and `opaque type` declarations.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DefaultMaxFileSize bounds the size of a single module.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when content exceeds the parser size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidContent is returned when content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// SyntaxError reports the first error node found in a parsed tree.
type SyntaxError struct {
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Near)
}

// Comment is one source comment. Lines are 1-based.
type Comment struct {
	Text      string
	StartLine int
	EndLine   int
}

// File is a parsed module: its syntax tree plus the flat comment list.
// Nodes are only valid until Close is called.
type File struct {
	Path     string
	Content  []byte
	Root     *sitter.Node
	Comments []Comment

	tree *sitter.Tree
}

// Text returns the source text covered by n.
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.Content)
}

// Close releases the underlying tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// StartLine returns the 1-based line n starts on.
func StartLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// EndLine returns the 1-based line n ends on.
func EndLine(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the maximum accepted content size in bytes.
func WithMaxFileSize(bytes int64) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser turns module source into a File. A Parser holds no tree-sitter
// state between calls.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses content. Trees containing error or missing nodes are
// rejected with a *SyntaxError; the grammar is error tolerant and a partial
// tree would silently drop declarations.
func (p *Parser) Parse(ctx context.Context, content []byte, path string) (*File, error) {
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(languageFor(path))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, &SyntaxError{Line: 1, Column: 1}
	}
	if root.HasError() {
		serr := firstError(root, content)
		tree.Close()
		return nil, serr
	}

	return &File{
		Path:     path,
		Content:  content,
		Root:     root,
		Comments: collectComments(root, content),
		tree:     tree,
	}, nil
}

func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return tsx.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

// collectComments returns every comment node in document order.
func collectComments(root *sitter.Node, content []byte) []Comment {
	var comments []Comment
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "comment" {
			comments = append(comments, Comment{
				Text:      n.Content(content),
				StartLine: StartLine(n),
				EndLine:   EndLine(n),
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return comments
}

func firstError(n *sitter.Node, content []byte) *SyntaxError {
	if n.Type() == "ERROR" || n.IsMissing() {
		near := n.Content(content)
		if i := strings.IndexByte(near, '\n'); i >= 0 {
			near = near[:i]
		}
		if n.IsMissing() {
			near = "missing " + n.Type()
		}
		return &SyntaxError{
			Line:   StartLine(n),
			Column: int(n.StartPoint().Column) + 1,
			Near:   strings.TrimSpace(near),
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			if serr := firstError(child, content); serr != nil {
				return serr
			}
		}
	}
	return &SyntaxError{Line: StartLine(n), Column: int(n.StartPoint().Column) + 1}
}
