package domain

import "strings"

// NormalizeTags trims and lower-cases tags, drops empty values and removes
// duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// MergeTags returns the normalized union of a and b, a first.
func MergeTags(a, b []string) []string {
	all := make([]string, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return NormalizeTags(all)
}

// WithoutTags returns the normalized tags of a that are not in b.
func WithoutTags(a, b []string) []string {
	drop := make(map[string]struct{}, len(b))
	for _, t := range NormalizeTags(b) {
		drop[t] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, t := range NormalizeTags(a) {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
