package services

import "strings"

// KeywordVariants expands a keyword into lexical search variants: the
// keyword itself, its whitespace-separated terms, and the lowercase form
// of each, deduplicated in first-seen order. Single-character terms are
// too noisy to count as matches and are dropped.
func KeywordVariants(keyword string) []string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	seen := make(map[string]bool)
	var variants []string
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	add(keyword)
	for _, term := range strings.Fields(keyword) {
		if len([]rune(term)) > 1 {
			add(term)
		}
	}
	for _, v := range append([]string(nil), variants...) {
		add(strings.ToLower(v))
	}

	return variants
}
