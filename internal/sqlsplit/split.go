// Package sqlsplit turns a SQL source blob into an ordered list of
// individually executable statements.
package sqlsplit

import "strings"

// Terminator marks the end of a statement.
const Terminator = ";"

// Mode selects the splitting strategy.
type Mode string

const (
	// ModeNaive splits on every terminator, including ones inside
	// string literals, comments and procedural bodies.
	ModeNaive Mode = "naive"
	// ModeLexical only splits on terminators outside quotes, comments
	// and dollar-quoted bodies.
	ModeLexical Mode = "lexical"
)

// Options configure a Split call.
type Options struct {
	Mode Mode
	// KeepTrailing emits a final fragment that has no terminator as a
	// statement instead of dropping it.
	KeepTrailing bool
}

// Split applies the configured mode.
func (o Options) Split(source string) []string {
	if o.Mode == ModeLexical {
		return splitLexical(source, o.KeepTrailing)
	}
	return splitNaive(source, o.KeepTrailing)
}

// Split splits source on every terminator. Each returned statement is
// trimmed, non-empty and ends with exactly one terminator. Text after the
// last terminator is dropped.
func Split(source string) []string {
	return splitNaive(source, false)
}

// SplitLexical splits source on terminators that are outside string
// literals, quoted identifiers, comments and dollar-quoted bodies. Text
// after the last terminator is dropped.
func SplitLexical(source string) []string {
	return splitLexical(source, false)
}

func splitNaive(source string, keepTrailing bool) []string {
	pieces := strings.Split(source, Terminator)
	// The last piece never had a terminator after it.
	trailing := pieces[len(pieces)-1]
	pieces = pieces[:len(pieces)-1]

	var stmts []string
	for _, p := range pieces {
		stmts = appendStatement(stmts, p)
	}
	if keepTrailing {
		stmts = appendStatement(stmts, trailing)
	}
	return stmts
}

func appendStatement(stmts []string, piece string) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return stmts
	}
	return append(stmts, piece+Terminator)
}
