package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TruncateForLog shortens s to limit runes, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// CleanText drops invalid UTF-8 and control characters, then collapses runs of
// blanks. Line breaks survive as single newlines.
func CleanText(s string) string {
	s = strings.ToValidUTF8(s, "")

	var b strings.Builder
	b.Grow(len(s))

	pendingSpace, pendingNewline := false, false
	for _, r := range s {
		switch {
		case r == '\n':
			pendingNewline = true
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r) || r == utf8.RuneError:
			continue
		default:
			if b.Len() > 0 {
				if pendingNewline {
					b.WriteByte('\n')
				} else if pendingSpace {
					b.WriteByte(' ')
				}
			}
			pendingSpace, pendingNewline = false, false
			b.WriteRune(r)
		}
	}

	return b.String()
}

// CompactList trims entries, drops empty ones and keeps at most limit items.
// A non-positive limit keeps everything.
func CompactList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
