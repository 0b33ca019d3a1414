package generator

import (
	"fmt"
	"strings"
)

// DedupMode controls how flat event fields shared by several referenced
// events are merged.
type DedupMode int

const (
	// DedupByName keeps only the first field with a given name.
	DedupByName DedupMode = iota
	// DedupLiteral keeps every field, duplicates included. Older generated
	// references were produced this way.
	DedupLiteral
)

// ParseDedupMode accepts "by-name" or "literal".
func ParseDedupMode(s string) (DedupMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "by-name":
		return DedupByName, nil
	case "literal":
		return DedupLiteral, nil
	default:
		return DedupByName, fmt.Errorf("unknown dedup mode %q (use by-name or literal)", s)
	}
}

// ResolveEventProps lists the event data an operation documents: the flat
// fields of every referenced event, followed by one nested object entry per
// event in reference order. events is only read.
func ResolveEventProps(operation string, refs []string, events []EventRecord, mode DedupMode) ([]FieldRecord, error) {
	var flat, nested []FieldRecord
	seen := make(map[string]bool)

	for _, ref := range refs {
		event, ok := findEvent(events, ref)
		if !ok {
			return nil, &UnresolvedEventReferenceError{Operation: operation, Event: ref}
		}

		for _, arg := range event.Args {
			if mode == DedupByName && seen[arg.Name] {
				continue
			}
			seen[arg.Name] = true
			flat = append(flat, arg)
		}

		nested = append(nested, FieldRecord{
			Name:        event.Name,
			Type:        "object",
			Description: nestedEventDescription(event.Name),
		})
	}

	return append(flat, nested...), nil
}

func nestedEventDescription(name string) string {
	return fmt.Sprintf("Contains the data defined in [%s](#events-%s)", name, name)
}
