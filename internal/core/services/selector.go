package services

import (
	"sort"
	"strings"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driving"
)

var _ driving.SelectionService = (*Selector)(nil)

// Relevance signal weights. Title matches weigh less than body matches,
// and variant matches less than exact keyword matches.
const (
	keywordTextWeight  = 0.4
	keywordTitleWeight = 0.3
	hintTextWeight     = 0.2
	hintTitleWeight    = 0.15
	variantTextWeight  = 0.1
	variantTitleWeight = 0.05
	baseScoreWeight    = 0.2
)

// Diversity signal weights for a candidate from an unused source
// document or section title.
const (
	newSourceWeight = 0.3
	newTitleWeight  = 0.2
)

// Selector re-ranks a retrieval pool into a relevance-and-diversity
// balanced context set.
type Selector struct {
	settings domain.SelectionSettings
	extra    []string
}

// SelectorOption configures optional selector behaviour.
type SelectorOption func(*Selector)

// WithExtraVariants supplies corpus-specific keyword variants (synonyms,
// transliterations) on top of the derived ones.
func WithExtraVariants(variants []string) SelectorOption {
	return func(s *Selector) {
		s.extra = append([]string(nil), variants...)
	}
}

// NewSelector creates a selector with the given tunables.
func NewSelector(settings domain.SelectionSettings, opts ...SelectorOption) (*Selector, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Selector{settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type candidate struct {
	chunk     domain.ScoredChunk
	relevance float64
	diversity float64
	combined  float64
}

// Select returns an ordered subset of pool, at most maxOut entries.
//
// Diversity is scored once per candidate, treating every source and
// title as new, and that score feeds both the ranking and the
// admission threshold. Candidates are admitted greedily: a candidate
// passes on high relevance, on the selection still being below the
// minimum, or on clearing the diversity floor while its source is
// still unused. If the pass ends below the minimum, the ranking is
// replayed to backfill up to the floor.
func (s *Selector) Select(pool []domain.ScoredChunk, keyword, topicHint string, maxOut int) []domain.ScoredChunk {
	if len(pool) == 0 || maxOut <= 0 {
		return nil
	}

	variants := KeywordVariants(keyword)
	if len(variants) > s.settings.MaxVariants {
		variants = variants[:s.settings.MaxVariants]
	}
	variants = append(variants, s.extra...)

	ranked := make([]candidate, len(pool))
	for i, sc := range pool {
		rel := s.relevance(sc, keyword, topicHint, variants)
		div := s.diversity(sc.Chunk, nil, nil)
		ranked[i] = candidate{
			chunk:     sc,
			relevance: rel,
			diversity: div,
			combined:  s.settings.RelevanceWeight*rel + s.settings.DiversityWeight*div,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].combined > ranked[j].combined
	})

	usedSources := make(map[string]bool)
	selectedIDs := make(map[int]bool)
	var selected []domain.ScoredChunk

	admit := func(c candidate) {
		usedSources[c.chunk.Chunk.SourceDocument] = true
		selectedIDs[c.chunk.Chunk.ID] = true
		selected = append(selected, domain.ScoredChunk{Chunk: c.chunk.Chunk, Score: c.combined})
	}

	for _, c := range ranked {
		if len(selected) >= maxOut {
			break
		}

		if c.relevance > s.settings.HighRelevance || len(selected) < s.settings.MinSelected {
			admit(c)
			continue
		}

		if c.diversity > s.settings.DiversityFloor && !usedSources[c.chunk.Chunk.SourceDocument] {
			admit(c)
		}
	}

	// A sparse pool can leave the strict pass nearly empty; pad back to
	// the floor with the best remaining candidates.
	if len(selected) < s.settings.MinSelected {
		floor := s.settings.BackfillFloor
		if floor > maxOut {
			floor = maxOut
		}
		for _, c := range ranked {
			if len(selected) >= floor {
				break
			}
			if selectedIDs[c.chunk.Chunk.ID] {
				continue
			}
			admit(c)
		}
	}

	return selected
}

// relevance scores textual keyword/hint overlap, blended with the
// candidate's similarity score.
func (s *Selector) relevance(sc domain.ScoredChunk, keyword, topicHint string, variants []string) float64 {
	text := strings.ToLower(sc.Chunk.Text)
	title := strings.ToLower(sc.Chunk.SectionTitle)
	kw := strings.ToLower(strings.TrimSpace(keyword))
	hint := strings.ToLower(strings.TrimSpace(topicHint))

	var score float64
	if kw != "" {
		if strings.Contains(text, kw) {
			score += keywordTextWeight
		}
		if strings.Contains(title, kw) {
			score += keywordTitleWeight
		}
	}
	if hint != "" {
		if strings.Contains(text, hint) {
			score += hintTextWeight
		}
		if strings.Contains(title, hint) {
			score += hintTitleWeight
		}
	}
	counted := make(map[string]bool)
	for _, v := range variants {
		v = strings.ToLower(v)
		if v == "" || v == kw || counted[v] {
			continue
		}
		counted[v] = true
		if strings.Contains(text, v) {
			score += variantTextWeight
		}
		if strings.Contains(title, v) {
			score += variantTitleWeight
		}
	}

	return score + sc.Score*baseScoreWeight
}

// diversity rewards candidates from sources and sections not yet
// represented in the used sets. Nil sets treat everything as new.
func (s *Selector) diversity(rec domain.ChunkRecord, usedSources, usedTitles map[string]bool) float64 {
	var score float64
	if !usedSources[rec.SourceDocument] {
		score += newSourceWeight
	}
	if !usedTitles[rec.SectionTitle] {
		score += newTitleWeight
	}
	return score
}
