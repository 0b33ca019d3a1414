// Package validator checks rendered API reference documents before they are
// written.
package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	eventHeading   = regexp.MustCompile(`^### \[events\.([^.\s]+)\.addListener\(`)
	eventReference = regexp.MustCompile(`\]\(#events-([^)\s]+)\)`)
	separatorRow   = regexp.MustCompile(`^\|(\s*:?-{3,}:?\s*\|)+$`)
)

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// ValidateMarkdown checks that tables are rectangular and that every
// #events-<Name> link points at an event heading in the same document.
func ValidateMarkdown(doc string) error {
	lines := strings.Split(doc, "\n")

	var problems []string
	problems = append(problems, validateTables(lines)...)
	problems = append(problems, validateEventLinks(lines)...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateTables(lines []string) []string {
	var problems []string
	inFence := false

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence || !isTableRow(line) || i+1 >= len(lines) {
			continue
		}

		separator := strings.TrimSpace(lines[i+1])
		if !separatorRow.MatchString(separator) {
			continue
		}

		header := i + 1
		want := countColumns(line)
		if got := countColumns(separator); got != want {
			problems = append(problems, fmt.Sprintf("line %d: separator has %d columns, header has %d", header+1, got, want))
		}

		j := i + 2
		for ; j < len(lines) && isTableRow(strings.TrimSpace(lines[j])); j++ {
			if got := countColumns(strings.TrimSpace(lines[j])); got != want {
				problems = append(problems, fmt.Sprintf("line %d: row has %d columns, header has %d", j+1, got, want))
			}
		}
		i = j - 1
	}

	return problems
}

func validateEventLinks(lines []string) []string {
	headings := make(map[string]bool)
	type reference struct {
		line int
		name string
	}
	var refs []reference

	for i, line := range lines {
		if m := eventHeading.FindStringSubmatch(line); m != nil {
			headings[m[1]] = true
		}
		for _, m := range eventReference.FindAllStringSubmatch(line, -1) {
			refs = append(refs, reference{line: i + 1, name: m[1]})
		}
	}

	var problems []string
	for _, ref := range refs {
		if !headings[ref.name] {
			problems = append(problems, fmt.Sprintf("line %d: link to undefined event %q", ref.line, ref.name))
		}
	}
	return problems
}

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") && len(line) > 1
}

// countColumns counts cells in a |a|b|c| row, ignoring escaped pipes.
func countColumns(row string) int {
	pipes := 0
	for i := 0; i < len(row); i++ {
		if row[i] == '|' && (i == 0 || row[i-1] != '\\') {
			pipes++
		}
	}
	return pipes - 1
}
