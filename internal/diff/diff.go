// Package diff provides simple text diff utilities used by chinookd to
// report schema drift between the base file and the working copy.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines shown before/after changes.
// When equal sections exceed 2*contextLines, they're collapsed with "...".
const contextLines = 3

// Result holds diff output.
type Result struct {
	Old  string // old label
	New  string // new label
	Diff string // plain diff text, empty when inputs are identical
}

// Same reports whether the two inputs were identical.
func (r Result) Same() bool {
	return r.Diff == ""
}

// Compute returns a line-oriented diff between old and new content.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	if oldContent == newContent {
		return Result{Old: oldLabel, New: newLabel}
	}

	dmp := diffmatchpatch.New()
	d := dmp.DiffMain(oldContent, newContent, false)
	d = dmp.DiffCleanupSemantic(d)

	return Result{
		Old:  oldLabel,
		New:  newLabel,
		Diff: format(d),
	}
}

// Format renders the diff with header labels for terminal output.
func (r Result) Format() string {
	if r.Same() {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- " + r.Old + "\n")
	b.WriteString("+++ " + r.New + "\n")
	b.WriteString(r.Diff)
	return b.String()
}

// format converts diffs to unified-style text, collapsing long unchanged
// sections to keep output readable.
func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			b.WriteString(equalSection(lines))
		}
	}
	return b.String()
}

// equalSection renders unchanged lines, eliding the middle when the section
// is longer than 2*contextLines.
func equalSection(lines []string) string {
	var b strings.Builder
	if len(lines) <= 2*contextLines {
		for _, l := range lines {
			b.WriteString("  " + l + "\n")
		}
		return b.String()
	}

	for _, l := range lines[:contextLines] {
		b.WriteString("  " + l + "\n")
	}
	b.WriteString("  ...\n")
	for _, l := range lines[len(lines)-contextLines:] {
		b.WriteString("  " + l + "\n")
	}
	return b.String()
}
