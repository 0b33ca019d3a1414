package generator

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/example/clientdoc/internal/source"
)

const optionalSuffix = " (optional)"

// defaultVocabulary maps primitive annotations and named references to the
// labels shown in the Type column.
var defaultVocabulary = map[string]string{
	"boolean":       "boolean",
	"string":        "string",
	"number":        "number",
	"Date":          "Date",
	"Address":       "Address",
	"BigNumber":     "BigNumber",
	"Role":          "Role",
	"AuthorityRole": "Authority Role",
	"IPFSHash":      "IPFS hash",
	"TokenAddress":  "Token address",
	"HexString":     "Hex string",
}

// DefaultVocabulary returns a copy of the built-in vocabulary table.
func DefaultVocabulary() map[string]string {
	out := make(map[string]string, len(defaultVocabulary))
	for k, v := range defaultVocabulary {
		out[k] = v
	}
	return out
}

// UnknownTypePolicy decides what happens to annotations missing from the
// vocabulary.
type UnknownTypePolicy int

const (
	// UnknownTypeFail aborts the module with an UnknownTypeAnnotationError.
	UnknownTypeFail UnknownTypePolicy = iota
	// UnknownTypePlaceholder renders "unknown (<annotation>)" and logs a warning.
	UnknownTypePlaceholder
)

// ParseUnknownTypePolicy accepts "error" or "placeholder".
func ParseUnknownTypePolicy(s string) (UnknownTypePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return UnknownTypeFail, nil
	case "placeholder":
		return UnknownTypePlaceholder, nil
	default:
		return UnknownTypeFail, fmt.Errorf("unknown type policy %q (use error or placeholder)", s)
	}
}

// TypeMapper maps type annotation nodes to display labels.
type TypeMapper struct {
	vocabulary map[string]string
	policy     UnknownTypePolicy
	logger     *zap.Logger
}

// NewTypeMapper builds a mapper over the default vocabulary extended (or
// overridden) by extra.
func NewTypeMapper(extra map[string]string, policy UnknownTypePolicy, logger *zap.Logger) *TypeMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	vocab := DefaultVocabulary()
	for k, v := range extra {
		vocab[k] = v
	}
	return &TypeMapper{vocabulary: vocab, policy: policy, logger: logger}
}

// MapType returns the label for the annotation n and whether it was nullable.
func (m *TypeMapper) MapType(f *source.File, n *sitter.Node) (string, bool, error) {
	if n == nil {
		return "", false, &UnknownTypeAnnotationError{Kind: "missing", Name: "", Line: 0}
	}

	switch n.Type() {
	case "type_annotation", "parenthesized_type":
		if inner := firstNamedChild(n); inner != nil {
			return m.MapType(f, inner)
		}
	}

	if inner := nullableInner(f, n); inner != nil {
		label, _, err := m.MapType(f, inner)
		if err != nil {
			return "", false, err
		}
		return label + optionalSuffix, true, nil
	}

	kind, name := annotationKey(f, n)
	if label, ok := m.vocabulary[name]; ok {
		return label, false, nil
	}

	if m.policy == UnknownTypePlaceholder {
		m.logger.Warn("type annotation has no label",
			zap.String("file", f.Path),
			zap.Int("line", source.StartLine(n)),
			zap.String("kind", kind),
			zap.String("annotation", name))
		return fmt.Sprintf("unknown (%s)", name), false, nil
	}
	return "", false, &UnknownTypeAnnotationError{Kind: kind, Name: name, Line: source.StartLine(n)}
}

// annotationKey returns the node kind and the vocabulary key for n.
func annotationKey(f *source.File, n *sitter.Node) (string, string) {
	switch n.Type() {
	case "predefined_type":
		return "primitive", f.Text(n)
	case "type_identifier":
		return "reference", f.Text(n)
	case "nested_type_identifier", "generic_type":
		name := n.ChildByFieldName("name")
		if name == nil {
			return n.Type(), f.Text(n)
		}
		if name.Type() == "nested_type_identifier" {
			if last := name.ChildByFieldName("name"); last != nil {
				name = last
			}
		}
		return "reference", f.Text(name)
	default:
		return n.Type(), strings.Join(strings.Fields(f.Text(n)), " ")
	}
}

// nullableInner returns the wrapped annotation when n is a Flow maybe type
// (?T) or a union of exactly one type with null or undefined.
func nullableInner(f *source.File, n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "flow_maybe_type":
		return firstNamedChild(n)
	case "union_type":
		members := namedChildren(n)
		if len(members) != 2 {
			return nil
		}
		switch {
		case isNullish(f, members[1]):
			return members[0]
		case isNullish(f, members[0]):
			return members[1]
		}
	}
	return nil
}

func isNullish(f *source.File, n *sitter.Node) bool {
	switch strings.TrimSpace(f.Text(n)) {
	case "null", "undefined", "void":
		return true
	}
	return false
}

// namedChildren returns n's named children without comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if children := namedChildren(n); len(children) > 0 {
		return children[0]
	}
	return nil
}
