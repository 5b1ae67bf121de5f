package mapper

import (
	"regexp"
	"strings"
)

var htmlTagRe = regexp.MustCompile(`<[^<]+?>`)

// ExtractMetaDescription strips markup from HTML content and truncates the
// remaining text at a word boundary for use as an SEO description.
func ExtractMetaDescription(htmlContent string, maxLength int) string {
	if htmlContent == "" {
		return ""
	}

	clean := htmlTagRe.ReplaceAllString(htmlContent, "")
	clean = strings.Join(strings.Fields(clean), " ")

	if len(clean) <= maxLength {
		return clean
	}

	truncated := clean[:maxLength]
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
