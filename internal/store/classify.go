// classify.go implements statement-kind classification for the guarded
// query paths.
//
// The classification is a small closed function: a statement is Read, Write
// or Forbidden, and anything that does not parse cleanly into Read or Write
// is Forbidden. There is deliberately no permissive fallback - DDL, PRAGMA,
// ATTACH, vacuum, CTE-led statements and multi-statement input all land in
// Forbidden and are rejected before execution.

package store

import (
	"strings"
	"unicode"
)

// Kind is the classification of a SQL statement's leading keyword.
type Kind int

const (
	// Forbidden statements are rejected by both guarded paths.
	Forbidden Kind = iota
	// Read statements (a single SELECT) are accepted by the read path.
	Read
	// Write statements (a single INSERT, UPDATE, DELETE or REPLACE) are
	// accepted by the write path.
	Write
)

// String returns the lower-case name of the kind, for log output.
func (k Kind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "forbidden"
	}
}

// writeKeywords are the only statement kinds the guarded write path accepts.
// REPLACE is SQLite's alias for INSERT OR REPLACE.
var writeKeywords = map[string]bool{
	"insert":  true,
	"update":  true,
	"delete":  true,
	"replace": true,
}

// Classify inspects the leading keyword of a SQL statement and returns its
// kind. Leading whitespace and SQL comments are skipped first so that a
// comment cannot disguise the statement kind. Multi-statement input is
// always Forbidden, closing off statement-chaining injection through the
// raw SQL tools.
//
// WITH is classified as Forbidden even though a CTE can front a plain
// SELECT: a CTE can equally front a DELETE, and classification by leading
// keyword cannot tell the two apart. Callers needing CTE reads can inline
// the subquery.
func Classify(sql string) Kind {
	s := stripLeading(sql)
	if s == "" || !singleStatement(s) {
		return Forbidden
	}

	keyword := leadingKeyword(s)
	switch {
	case keyword == "select":
		return Read
	case writeKeywords[keyword]:
		return Write
	default:
		return Forbidden
	}
}

// stripLeading removes leading whitespace, line comments (-- ...) and block
// comments (/* ... */) so classification sees the first real token. An
// unterminated block comment yields an empty string, which classifies as
// Forbidden.
func stripLeading(sql string) string {
	s := strings.TrimSpace(sql)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+1:])
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+2:])
		default:
			return s
		}
	}
}

// leadingKeyword returns the first run of letters, lower-cased.
func leadingKeyword(s string) string {
	end := 0
	for end < len(s) && unicode.IsLetter(rune(s[end])) {
		end++
	}
	return strings.ToLower(s[:end])
}

// singleStatement reports whether s contains exactly one statement. A single
// trailing semicolon is allowed; any interior semicolon fails. This is a
// conservative check - a semicolon inside a string literal also fails, which
// rejects a few legitimate statements but never accepts a chained one.
func singleStatement(s string) bool {
	s = strings.TrimRight(strings.TrimSpace(s), ";")
	return !strings.ContainsRune(s, ';')
}
