package generator

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/example/clientdoc/internal/source"
)

// Base identifiers of the four markers. Qualified references such as
// ContractClient.Caller are matched on their last segment.
const (
	markerQuery       = "Caller"
	markerTransaction = "Sender"
	markerMultisig    = "MultisigSender"
	markerEvent       = "Event"
)

// Extractor walks a parsed module and collects the marker declarations.
type Extractor struct {
	types         *TypeMapper
	declComments  CommentMatcher
	fieldComments CommentMatcher
	logger        *zap.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithCommentMatchers replaces the declaration and field comment rules.
func WithCommentMatchers(decl, field CommentMatcher) ExtractorOption {
	return func(e *Extractor) {
		if decl != nil {
			e.declComments = decl
		}
		if field != nil {
			e.fieldComments = field
		}
	}
}

// NewExtractor creates an extractor. Declarations are described by the
// comment on the line before them, fields by a trailing comment.
func NewExtractor(types *TypeMapper, logger *zap.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if types == nil {
		types = NewTypeMapper(nil, UnknownTypeFail, logger)
	}
	e := &Extractor{
		types:         types,
		declComments:  Precedes{},
		fieldComments: SameLine{},
		logger:        logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// declaration is the context a marker is declared in: a top-level type
// alias or an object/class property.
type declaration struct {
	name     string
	line     int
	topLevel bool
}

// Extract returns the records declared in f, in source order.
func (e *Extractor) Extract(f *source.File) (DocumentModel, error) {
	return e.walk(f, f.Root, nil)
}

func (e *Extractor) walk(f *source.File, n *sitter.Node, decl *declaration) (DocumentModel, error) {
	switch n.Type() {
	case "comment":
		return DocumentModel{}, nil

	case "type_alias_declaration":
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name == nil || value == nil {
			return DocumentModel{}, nil
		}
		return e.walk(f, value, &declaration{
			name:     f.Text(name),
			line:     source.StartLine(n),
			topLevel: true,
		})

	case "property_signature", "public_field_definition":
		key := n.ChildByFieldName("name")
		annotation := n.ChildByFieldName("type")
		if key == nil || annotation == nil {
			return DocumentModel{}, nil
		}
		return e.walk(f, annotation, &declaration{
			name: propertyName(f, key),
			line: source.StartLine(n),
		})

	case "type_annotation":
		if inner := firstNamedChild(n); inner != nil {
			return e.walk(f, inner, decl)
		}
		return DocumentModel{}, nil

	case "generic_type":
		if marker := markerName(f, n); isMarker(marker) {
			return e.extractMarker(f, n, marker, decl)
		}
	}

	var model DocumentModel
	for _, child := range namedChildren(n) {
		sub, err := e.walk(f, child, nil)
		if err != nil {
			return DocumentModel{}, err
		}
		model = model.merge(sub)
	}
	return model, nil
}

func (e *Extractor) extractMarker(f *source.File, n *sitter.Node, marker string, decl *declaration) (DocumentModel, error) {
	if decl == nil {
		e.logger.Warn("marker is not the value of a declaration, skipping",
			zap.String("file", f.Path),
			zap.Int("line", source.StartLine(n)),
			zap.String("marker", marker))
		return DocumentModel{}, nil
	}

	params := typeArguments(n)
	want := 2
	if marker == markerEvent {
		want = 1
	}
	if len(params) < want {
		return DocumentModel{}, &ParseError{
			Path: f.Path,
			Line: source.StartLine(n),
			Msg:  fmt.Sprintf("%s %q expects %d type arguments, got %d", marker, decl.name, want, len(params)),
		}
	}

	description := describe(e.declComments, f.Comments, decl.line)
	args, err := e.mapShape(f, params[0])
	if err != nil {
		return DocumentModel{}, fmt.Errorf("%s %q arguments: %w", marker, decl.name, err)
	}

	if marker == markerEvent {
		e.logger.Debug("event",
			zap.String("name", decl.name),
			zap.Bool("top_level", decl.topLevel),
			zap.Int("args", len(args)))
		return DocumentModel{Events: []EventRecord{{
			Name:        decl.name,
			Description: description,
			Args:        args,
		}}}, nil
	}

	op := OperationRecord{
		Name:        decl.name,
		Description: description,
		Args:        args,
	}
	switch marker {
	case markerQuery:
		op.Kind = KindQuery
		op.Returns, err = e.mapShape(f, params[1])
		if err != nil {
			return DocumentModel{}, fmt.Errorf("%s %q return values: %w", marker, decl.name, err)
		}
	case markerTransaction:
		op.Kind = KindTransaction
		op.Events = shapeKeys(f, params[1])
	case markerMultisig:
		op.Kind = KindMultisigTransaction
		op.Events = shapeKeys(f, params[1])
	}

	e.logger.Debug("operation",
		zap.String("name", op.Name),
		zap.Stringer("kind", op.Kind),
		zap.Int("args", len(op.Args)),
		zap.Strings("events", op.Events))
	return DocumentModel{}.addOperation(op), nil
}

// mapShape maps an object type literal to one FieldRecord per property.
// Any other shape has no visible parameters and yields nil.
func (e *Extractor) mapShape(f *source.File, shape *sitter.Node) ([]FieldRecord, error) {
	if shape.Type() != "object_type" {
		return nil, nil
	}

	fields := []FieldRecord{}
	for _, prop := range namedChildren(shape) {
		if prop.Type() != "property_signature" {
			continue
		}
		key := prop.ChildByFieldName("name")
		if key == nil {
			continue
		}

		name := propertyName(f, key)
		label, optional, err := e.types.MapType(f, prop.ChildByFieldName("type"))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		if hasOptionalToken(prop) && !optional {
			label += optionalSuffix
			optional = true
		}

		fields = append(fields, FieldRecord{
			Name:        name,
			Type:        label,
			Description: describe(e.fieldComments, f.Comments, source.StartLine(key)),
			Optional:    optional,
		})
	}
	return fields, nil
}

// shapeKeys returns the property names of an event-name shape.
func shapeKeys(f *source.File, shape *sitter.Node) []string {
	if shape.Type() != "object_type" {
		return nil
	}
	var keys []string
	for _, prop := range namedChildren(shape) {
		if prop.Type() != "property_signature" {
			continue
		}
		if key := prop.ChildByFieldName("name"); key != nil {
			keys = append(keys, propertyName(f, key))
		}
	}
	return keys
}

func isMarker(name string) bool {
	switch name {
	case markerQuery, markerTransaction, markerMultisig, markerEvent:
		return true
	}
	return false
}

// markerName returns the base identifier of a generic type reference.
func markerName(f *source.File, n *sitter.Node) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		name = firstNamedChild(n)
	}
	if name == nil {
		return ""
	}
	if name.Type() == "nested_type_identifier" {
		if last := name.ChildByFieldName("name"); last != nil {
			return f.Text(last)
		}
		text := f.Text(name)
		return text[strings.LastIndex(text, ".")+1:]
	}
	return f.Text(name)
}

// typeArguments returns the type parameters of a generic type reference.
func typeArguments(n *sitter.Node) []*sitter.Node {
	args := n.ChildByFieldName("type_arguments")
	if args == nil {
		for _, child := range namedChildren(n) {
			if child.Type() == "type_arguments" {
				args = child
				break
			}
		}
	}
	if args == nil {
		return nil
	}
	return namedChildren(args)
}

// propertyName returns a property key with string-literal quotes removed.
func propertyName(f *source.File, key *sitter.Node) string {
	text := f.Text(key)
	if key.Type() == "string" {
		text = strings.Trim(text, `"'`)
	}
	return text
}

func hasOptionalToken(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "?" {
			return true
		}
	}
	return false
}
