package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes every tag from user-submitted text
var StrictPolicy = bluemonday.StrictPolicy()

// StripHTML removes all HTML tags from content
func StripHTML(s string) string {
	return html.UnescapeString(StrictPolicy.Sanitize(s))
}

// Preview returns a single-line, tag-free excerpt of at most max runes
func Preview(body string, max int) string {
	text := strings.Join(strings.Fields(StripHTML(body)), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
