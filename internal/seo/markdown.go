package seo

import (
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	// Common HTML tags, used to detect fields the CMS stored as HTML.
	htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

	bulletItem  = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	orderedItem = regexp.MustCompile(`^\d+\.\s+(.+)$`)

	isoDuration = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?`)
)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// htmlToMarkdown converts HTML content to markdown. Non-HTML input is returned unchanged.
func htmlToMarkdown(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// ParseListItems extracts one entry per line from a markdown ingredient or
// instruction field.
//
// This is best-effort. Bullet (-, *, +) and numbered (1.) items yield their
// text, headings are skipped, and any other non-blank line is kept verbatim,
// so irregular markdown degrades into extra entries rather than failing.
func ParseListItems(md string) []string {
	md = htmlToMarkdown(md)
	if md == "" {
		return nil
	}

	var items []string
	for line := range strings.SplitSeq(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := bulletItem.FindStringSubmatch(trimmed); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}
		if m := orderedItem.FindStringSubmatch(trimmed); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			items = append(items, trimmed)
		}
	}
	return items
}

// ParseDurationMinutes reads the hours and minutes of an ISO 8601 duration
// such as "PT1H30M". ok is false when s has no PT component.
func ParseDurationMinutes(s string) (minutes int, ok bool) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return hours*60 + mins, true
}
