package generator

import (
	"regexp"
	"strings"
)

const digestLimit = 120

var titlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// describe derives the title and digest shown in history listings.
func describe(md string) (title, digest string) {
	title = extractTitle(md)
	digest = extractDigest(md)
	if digest == "" {
		digest = defaultDigest(md, digestLimit)
	}
	return title, digest
}

func extractTitle(md string) string {
	m := titlePattern.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// The digest is the first paragraph line that is not a heading.
func extractDigest(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return truncateRunes(line, digestLimit)
	}
	return ""
}

func defaultDigest(md string, limit int) string {
	return truncateRunes(strings.Join(strings.Fields(md), " "), limit)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
