package sqlsplit

import "strings"

// fragment is the text between two terminators plus what the lexer saw in it.
type fragment struct {
	text string
	// hasCode is false when the text is only whitespace and comments.
	hasCode bool
	// endsInLineComment is true when the last token is a -- comment, so a
	// terminator appended on the same line would be commented out.
	endsInLineComment bool
}

// splitLexical walks source once, tracking quote and comment state, and
// cuts a statement at each terminator seen in the plain state.
func splitLexical(source string, keepTrailing bool) []string {
	var stmts []string
	s := source
	l := len(s)
	start := 0
	var (
		inSingle, escapes bool
		inDouble          bool
		inLineComment     bool
		blockDepth        int
		dollarTag         string
		hasCode           bool
		lineCommentTail   bool
	)

	for i := 0; i < l; i++ {
		ch := s[i]
		if inLineComment {
			if ch == '\n' {
				inLineComment = false
			}
			continue
		}
		if blockDepth > 0 {
			switch {
			case ch == '*' && i+1 < l && s[i+1] == '/':
				blockDepth--
				i++
			case ch == '/' && i+1 < l && s[i+1] == '*':
				blockDepth++
				i++
			}
			continue
		}
		if dollarTag != "" {
			if len(dollarTag) <= l-i && s[i:i+len(dollarTag)] == dollarTag {
				i += len(dollarTag) - 1
				dollarTag = ""
			}
			continue
		}
		if inSingle {
			switch {
			case escapes && ch == '\\':
				i++
			case ch == '\'':
				// '' is an escaped quote
				if i+1 < l && s[i+1] == '\'' {
					i++
				} else {
					inSingle = false
				}
			}
			continue
		}
		if inDouble {
			if ch == '"' {
				inDouble = false
			}
			continue
		}

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f':
			continue
		case ch == '-' && i+1 < l && s[i+1] == '-':
			inLineComment = true
			lineCommentTail = true
			i++
			continue
		case ch == '/' && i+1 < l && s[i+1] == '*':
			blockDepth = 1
			i++
			continue
		case ch == ';':
			stmts = appendFragment(stmts, fragment{s[start:i], hasCode, lineCommentTail})
			start = i + 1
			hasCode, lineCommentTail = false, false
			continue
		case (ch == 'E' || ch == 'e') && i+1 < l && s[i+1] == '\'' && (i == 0 || !isDollarTagChar(s[i-1])):
			inSingle, escapes = true, true
			i++
		case ch == '\'':
			inSingle, escapes = true, false
		case ch == '"':
			inDouble = true
		case ch == '$':
			j := i + 1
			for j < l && isDollarTagChar(s[j]) {
				j++
			}
			if j < l && s[j] == '$' {
				dollarTag = s[i : j+1]
				i = j
			}
		}
		hasCode = true
		lineCommentTail = false
	}

	if keepTrailing && start < l {
		stmts = appendFragment(stmts, fragment{s[start:], hasCode, lineCommentTail})
	}
	return stmts
}

// appendFragment drops comment-only fragments and keeps a terminator off
// a trailing line comment.
func appendFragment(stmts []string, f fragment) []string {
	if !f.hasCode {
		return stmts
	}
	text := strings.TrimSpace(f.text)
	if f.endsInLineComment {
		return append(stmts, text+"\n"+Terminator)
	}
	return append(stmts, text+Terminator)
}

// isDollarTagChar reports whether b may appear in a tag such as $body$.
func isDollarTagChar(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}
