package catalog

import "strings"

// AppendUnique appends each non-empty trimmed value not already present in
// dst, preserving order. It returns the extended slice and how many values
// were added.
func AppendUnique(dst []string, values ...string) ([]string, int) {
	if len(values) == 0 {
		return dst, 0
	}
	seen := make(map[string]struct{}, len(dst)+len(values))
	for _, existing := range dst {
		seen[existing] = struct{}{}
	}
	added := 0
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		dst = append(dst, value)
		added++
	}
	return dst, added
}

// Unique returns the trimmed, non-empty, duplicate-free values in first-seen order.
func Unique(values []string) []string {
	out, _ := AppendUnique(make([]string, 0, len(values)), values...)
	return out
}

// MapUnique applies fn to every value before deduplicating.
func MapUnique(values []string, fn func(string) string) []string {
	mapped := make([]string, 0, len(values))
	for _, value := range values {
		mapped = append(mapped, fn(strings.TrimSpace(value)))
	}
	return Unique(mapped)
}
