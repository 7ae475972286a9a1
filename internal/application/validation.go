package application

import (
	"fmt"
	"strings"

	"deckvault/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "projectID" -> "project ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"projectID":    "project ID",
		"srcProjectID": "source project ID",
		"dstProjectID": "destination project ID",
		"pageID":       "page ID",
		"kind":         "asset kind",
		"key":          "asset key",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateProjectName rejects names that could escape the projects
// root: path separators, traversal segments, hidden-directory names.
func ValidateProjectName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidProjectName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidProjectName
	}
	if strings.HasPrefix(name, ".") {
		return ErrInvalidProjectName
	}
	return nil
}

// ValidateAssetKey rejects keys that normalize to nothing or escape
// the kind directory.
func ValidateAssetKey(key string) (string, error) {
	normalized := domain.NormalizeAssetPath(key)
	if normalized == "" {
		return "", ErrInvalidKey
	}
	return normalized, nil
}

// ValidateAssetKind parses a kind string into a domain.AssetKind.
func ValidateAssetKind(kind string) (domain.AssetKind, error) {
	k, ok := domain.ParseAssetKind(kind)
	if !ok {
		return "", &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("asset kind must be one of %q or %q", domain.KindResource, domain.KindAttachment),
		}
	}
	return k, nil
}
