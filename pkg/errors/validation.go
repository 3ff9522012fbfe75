package errors

import (
	"regexp"
	"unicode"
)

// extractorNameRegex matches registry names such as "dijkstra" or "bottom-up".
var extractorNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateExtractorName validates an extractor name before registry lookup.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - No control characters
//   - Lowercase letters, digits, and dashes only, starting with a letter
func ValidateExtractorName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidExtractor, "extractor name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidExtractor, "extractor name too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidExtractor, "extractor name contains invalid control characters")
		}
	}

	if !extractorNameRegex.MatchString(name) {
		return New(ErrCodeInvalidExtractor, "invalid extractor name: %q", name)
	}

	return nil
}

// ValidateInputPath validates the path of a serialized e-graph.
// Only emptiness and embedded control characters are rejected; existence is
// checked when the file is opened.
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "input path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "input path contains invalid characters")
		}
	}

	return nil
}
