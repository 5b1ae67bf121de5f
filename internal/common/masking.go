package common

import (
	"regexp"
)

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "access_token")
	Regex       *regexp.Regexp // Regular expression to match sensitive data
	Replacement string         // Replacement string
}

// DefaultSensitivePatterns contains the credential shapes this tool handles:
// Shopify access tokens, WooCommerce consumer keys/secrets and WordPress
// application passwords, plus generic basic-auth headers.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "shopify_token",
		Regex:       regexp.MustCompile(`shpat_[A-Za-z0-9]+`),
		Replacement: "shpat_***MASKED***",
	},
	{
		Name:        "consumer_key",
		Regex:       regexp.MustCompile(`ck_[A-Za-z0-9]+`),
		Replacement: "ck_***MASKED***",
	},
	{
		Name:        "consumer_secret",
		Regex:       regexp.MustCompile(`cs_[A-Za-z0-9]+`),
		Replacement: "cs_***MASKED***",
	},
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|app_password)["'\s]*[:=]["'\s]*([^"',}\]\s]+)`),
		Replacement: `${1}=***MASKED***`,
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)(token|access[_-]?token)["'\s]*[:=]["'\s]*([^"',}\]\s]+)`),
		Replacement: `${1}=***MASKED***`,
	},
	{
		Name:        "basic_auth",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic ***MASKED***",
	},
}

// Masker handles masking of sensitive information in log lines forwarded to
// the host UI.
type Masker struct {
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return &Masker{
		patterns: DefaultSensitivePatterns,
		enabled:  true,
	}
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	return &Masker{
		patterns: patterns,
		enabled:  true,
	}
}

// SetEnabled toggles masking on or off
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Enabled reports whether masking is active
func (m *Masker) Enabled() bool {
	return m.enabled
}

// Mask applies all patterns to the given string
func (m *Masker) Mask(s string) string {
	if !m.enabled {
		return s
	}
	for _, p := range m.patterns {
		s = p.Regex.ReplaceAllString(s, p.Replacement)
	}
	return s
}

// Global default masker instance
var defaultMasker = NewMasker()

// SetDefaultMasker sets the global default masker
func SetDefaultMasker(masker *Masker) {
	defaultMasker = masker
}

// GetMasker returns the default masker
func GetMasker() *Masker {
	return defaultMasker
}

// MaskSensitive masks sensitive data using the default masker
func MaskSensitive(s string) string {
	return defaultMasker.Mask(s)
}
