package reddit

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	boldRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.*?)\*`)
	strikeRe    = regexp.MustCompile(`~~(.*?)~~`)
	blankLineRe = regexp.MustCompile(`\n\s*\n`)

	// strict policy strips every tag, leaving text only
	sanitizer = bluemonday.StrictPolicy()
)

// CleanContent strips HTML remnants and lightweight markdown markers from
// item body text and collapses repeated blank lines. Cleaning an already
// clean string is a no-op.
func CleanContent(content string) string {
	if content == "" {
		return ""
	}

	// item bodies occasionally carry escaped HTML fragments
	content = sanitizer.Sanitize(content)
	content = html.UnescapeString(content)

	content = boldRe.ReplaceAllString(content, "$1")
	content = italicRe.ReplaceAllString(content, "$1")
	content = strikeRe.ReplaceAllString(content, "$1")

	content = blankLineRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
