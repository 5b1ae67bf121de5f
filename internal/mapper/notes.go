package mapper

import (
	"regexp"
	"strings"
)

const (
	// ImagesRemovedSentinel is inserted when a source note carried embedded
	// images; the target note channel cannot hold attachments.
	ImagesRemovedSentinel = "[NOTE: Pictures were attached in the original Shopify order notes]"

	imageRemovedPlaceholder = "[image removed]"
)

var (
	imgTagRe   = regexp.MustCompile(`(?i)<img[^>]*>`)
	imageURLRe = regexp.MustCompile(`(?i)https?://[^\s]*\.(jpg|jpeg|png|gif|webp)`)
	imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)`)
)

// NoteHasImages reports whether a note body carries embedded image markup,
// CDN references or bare image URLs.
func NoteHasImages(note string) bool {
	lower := strings.ToLower(note)
	return strings.Contains(lower, "<img") ||
		strings.Contains(lower, "cdn.shopify") ||
		imageExtRe.MatchString(lower)
}

// StripNoteImages removes image tags and replaces bare image URLs with a
// placeholder.
func StripNoteImages(note string) string {
	clean := imgTagRe.ReplaceAllString(note, "")
	clean = imageURLRe.ReplaceAllString(clean, imageRemovedPlaceholder)
	return strings.TrimSpace(clean)
}

// CleanOrderNote formats a source order note for the target. Notes with
// embedded images get the markup stripped, URLs replaced with a placeholder,
// and a sentinel line prepended explaining the removal.
func CleanOrderNote(note string) string {
	if !NoteHasImages(note) {
		return "Shopify Order Note:\n" + note
	}

	clean := StripNoteImages(note)

	text := "Shopify Order Note:\n" + ImagesRemovedSentinel + "\n\n"
	if clean != "" {
		text += clean
	} else {
		text += "(Note contained only images)"
	}
	return text
}

// FormatWorkNote wraps an extracted zero-value line-item annotation.
func FormatWorkNote(note string) string {
	return "Job Notes (from Shopify line item):\n" + note
}
