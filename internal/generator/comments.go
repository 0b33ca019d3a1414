package generator

import (
	"regexp"
	"strings"

	"github.com/example/clientdoc/internal/source"
)

// CommentMatcher picks the comment that describes a declaration starting on
// a given line. Matching is a line-adjacency heuristic, not a doc-comment
// parser: only comments on exactly the expected line count.
type CommentMatcher interface {
	Match(comments []source.Comment, line int) (source.Comment, bool)
}

// Precedes matches the first comment ending on the line before line.
// Used for declarations.
type Precedes struct{}

// Match implements CommentMatcher.
func (Precedes) Match(comments []source.Comment, line int) (source.Comment, bool) {
	return firstEndingOn(comments, line-1)
}

// SameLine matches the first comment ending on line itself. Used for
// trailing comments on object properties.
type SameLine struct{}

// Match implements CommentMatcher.
func (SameLine) Match(comments []source.Comment, line int) (source.Comment, bool) {
	return firstEndingOn(comments, line)
}

func firstEndingOn(comments []source.Comment, line int) (source.Comment, bool) {
	for _, c := range comments {
		if c.EndLine == line {
			return c, true
		}
	}
	return source.Comment{}, false
}

// describe returns the formatted text of the comment m selects, or "".
func describe(m CommentMatcher, comments []source.Comment, line int) string {
	c, ok := m.Match(comments, line)
	if !ok {
		return ""
	}
	return formatDescription(commentText(c.Text))
}

// docLinkPattern matches [text](target#anchor) links between doc pages.
var docLinkPattern = regexp.MustCompile(`\[(.+)\]\((.+?)#(.+)\)`)

// formatDescription trims s and points page links at the rendered .html pages.
func formatDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return docLinkPattern.ReplaceAllString(s, "[${1}](${2}.html#${3})")
}

// commentText strips comment delimiters and block-comment line stars.
func commentText(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "//"):
		return strings.TrimPrefix(s, "//")
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimSuffix(strings.TrimPrefix(s, "/*"), "*/")
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			line = strings.TrimPrefix(line, "*")
			lines[i] = strings.TrimSpace(line)
		}
		return strings.Join(lines, "\n")
	default:
		return s
	}
}
