// Package strings holds list helpers for comma separated settings.
package strings

import (
	"strings"
)

// SplitList splits a comma separated value, trimming entries and dropping
// blanks and repeats. Order is preserved; an empty input gives nil.
//
//	SplitList(" k1:9092, k2:9092,,k1:9092") == []string{"k1:9092", "k2:9092"}
func SplitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(v, ","))
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
