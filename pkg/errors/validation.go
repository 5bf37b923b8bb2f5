package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds store map names.
const maxNameLength = 128

// ValidateLabel checks node text and returns the trimmed label.
// Labels must contain at least one non-whitespace character.
func ValidateLabel(text string) (string, error) {
	label := strings.TrimSpace(text)
	if label == "" {
		return "", New(ErrCodeInvalidLabel, "label must not be empty")
	}
	return label, nil
}

// ValidateMapName validates the name under which a map is kept in a store.
// It rejects names that could escape a file store directory or collide
// with backend key separators.
//
// Rules:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No leading dot (hidden files)
func ValidateMapName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "map name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "map name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "map name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "map name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "map name cannot contain %q", "..")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "map name cannot start with a dot")
	}

	return nil
}
