package cmd

import "strings"

// shellQuote quotes s for a POSIX shell. Paths and plain words pass through
// unchanged; anything else is single-quoted, and each embedded single quote
// closes the quoting, adds an escaped quote and reopens it.
// Globs are therefore quoted too, so callers that want expansion pass them raw.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		// Safe chars: alnum, - _ . / @ : and commas
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			return false
		}
		if r >= '0' && r <= '9' {
			return false
		}
		switch r {
		case '-', '_', '.', '/', '@', ':', ',', '+', '=':
			return false
		}
		return true
	}) == -1 {
		return s
	}
	// Single-quote, escaping embedded single quotes: ' -> '\''
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
