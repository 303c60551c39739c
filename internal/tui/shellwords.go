package tui

import "unicode"

// splitShellWords splits an editor command like `code --wait` into argv.
// Single quotes, double quotes and backslash escapes (outside single quotes)
// are honored. An empty quoted word (`emacsclient -a ""`) is kept.
func splitShellWords(s string) []string {
	var out []string
	var cur []rune
	inWord, inSingle, inDouble, escaped := false, false, false, false

	flush := func() {
		if !inWord {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
		inWord = false
	}

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
			inWord = true
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			inWord = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			inWord = true
		case !inSingle && !inDouble && unicode.IsSpace(r):
			flush()
		default:
			cur = append(cur, r)
			inWord = true
		}
	}
	flush()
	return out
}
