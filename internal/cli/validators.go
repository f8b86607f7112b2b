package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateOutputFormat checks a --output value
func ValidateOutputFormat(format string) error {
	switch OutputFormat(strings.ToLower(format)) {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("invalid output format: %s (must be: text, json, or yaml)", format)
}

// ParsePageNumber parses a 1-based page number argument
func ParsePageNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page number: %s (must be a positive integer)", arg)
	}
	return n, nil
}

// ValidateProjectID rejects blank ids and ids that would break a URL path
func ValidateProjectID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("project id must not be empty")
	}
	if strings.ContainsAny(id, "/?# ") {
		return fmt.Errorf("invalid project id: %q", id)
	}
	return nil
}
