package core

import (
	"errors"
	"fmt"
	"strings"
)

// PointList is an ordered list of short free-text entries ("highlights",
// "risks") persisted as a single newline-delimited blob so the ledger schema
// stays flat. The list abstraction lives here; the blob is an implementation
// detail.
type PointList string

// Items returns the entries in order, with empty lines filtered out.
func (pl PointList) Items() []string {
	if pl == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(pl), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Len returns the number of entries.
func (pl PointList) Len() int {
	return len(pl.Items())
}

// Add appends a trimmed entry. Adding an empty or whitespace-only string is a
// no-op: it must not append an empty entry.
func (pl PointList) Add(text string) PointList {
	text = strings.TrimSpace(text)
	if text == "" {
		return pl
	}
	// collapse internal newlines so one call adds exactly one entry
	text = strings.ReplaceAll(text, "\n", " ")
	items := append(pl.Items(), text)
	return PointList(strings.Join(items, "\n"))
}

// ErrPointOutOfRange is returned by RemoveAt for an invalid position.
var ErrPointOutOfRange = errors.New("point index out of range")

// RemoveAt deletes the entry at the given zero-based position.
func (pl PointList) RemoveAt(index int) (PointList, error) {
	items := pl.Items()
	if index < 0 || index >= len(items) {
		return pl, fmt.Errorf("%w: %d (have %d)", ErrPointOutOfRange, index, len(items))
	}
	items = append(items[:index], items[index+1:]...)
	return PointList(strings.Join(items, "\n")), nil
}
