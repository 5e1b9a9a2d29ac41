package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordVariants(t *testing.T) {
	cases := []struct {
		name    string
		keyword string
		want    []string
	}{
		{
			name:    "empty",
			keyword: "   ",
			want:    nil,
		},
		{
			name:    "single lowercase word",
			keyword: "pricing",
			want:    []string{"pricing"},
		},
		{
			name:    "mixed case phrase",
			keyword: "Fixed Pricing",
			want:    []string{"Fixed Pricing", "Fixed", "Pricing", "fixed pricing", "fixed", "pricing"},
		},
		{
			name:    "duplicate terms collapse",
			keyword: "go go tooling",
			want:    []string{"go go tooling", "go", "tooling"},
		},
		{
			name:    "single character terms dropped",
			keyword: "vitamin c intake",
			want:    []string{"vitamin c intake", "vitamin", "intake"},
		},
		{
			name:    "surrounding whitespace trimmed",
			keyword: "  freelance rates ",
			want:    []string{"freelance rates", "freelance", "rates"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KeywordVariants(tc.keyword))
		})
	}
}

func TestKeywordVariants_NonASCII(t *testing.T) {
	got := KeywordVariants("قیمت گذاری")
	assert.Contains(t, got, "قیمت گذاری")
	assert.Contains(t, got, "قیمت")
	assert.Contains(t, got, "گذاری")
}
