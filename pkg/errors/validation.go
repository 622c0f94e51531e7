package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from upstream analysis.
const MaxNodeIDLength = 512

// ValidateNodeID checks a node identifier for basic well-formedness.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only ids
//   - No control characters or null bytes
//   - Maximum length of MaxNodeIDLength bytes
//
// Uniqueness is checked by the graph model, not here.
func ValidateNodeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateDimensions checks container geometry sampled from a host.
// Width and height must be positive and finite.
func ValidateDimensions(width, height float64) error {
	if !(width > 0) || !(height > 0) || width > 1e7 || height > 1e7 {
		return New(ErrCodeInvalidInput, "invalid container size %gx%g", width, height)
	}
	return nil
}
