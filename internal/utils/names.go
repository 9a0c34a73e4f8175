// Package utils contains general helper functions used across filetree.
package utils

import (
	"strings"
)

// NormalizeNames splits comma separated values, trims surrounding whitespace,
// drops empty values and removes duplicates. The first occurrence of each name is kept.
func NormalizeNames(values []string) []string {
	encounteredNames := make(map[string]struct{})
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, candidate := range strings.Split(value, NameListSeparator) {
			trimmedName := strings.TrimSpace(candidate)
			if trimmedName == "" {
				continue
			}
			if _, exists := encounteredNames[trimmedName]; exists {
				continue
			}
			encounteredNames[trimmedName] = struct{}{}
			result = append(result, trimmedName)
		}
	}
	return result
}

