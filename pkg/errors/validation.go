package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Formats lists the artifact formats the renderers produce.
var Formats = []string{"xypic", "dot", "svg", "pdf", "png", "json"}

// ValidateName validates an object or arrow name taken from untrusted input.
//
// The rules are conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "%s name too long (max 256 characters)", kind)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateFormats checks that formats is non-empty, has no duplicates and
// names only supported formats.
func ValidateFormats(formats []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "no output format requested")
	}
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if !slices.Contains(Formats, f) {
			return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", f, strings.Join(Formats, ", "))
		}
		if seen[f] {
			return New(ErrCodeInvalidFormat, "format %q requested twice", f)
		}
		seen[f] = true
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidateLimit checks that an integer option lies in [lo, hi].
func ValidateLimit(name string, v, lo, hi int64) error {
	if v < lo || v > hi {
		return New(ErrCodeInvalidInput, "%s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}
