package index

import (
	"sort"
	"strings"
	"unicode"

	"policyrag/types"
)

// byKeywords scores chunks by lexical overlap with the query, expanded
// through the configured synonym tables. Source-name matches weigh three
// times a content match, and a chunk containing the whole query phrase
// gets a flat bonus. Chunks scoring zero are excluded.
func (r *Retriever) byKeywords(query string, k int) []types.Retrieved {
	words := r.expandQuery(query)
	if len(words) == 0 {
		return nil
	}
	phrase := strings.ToLower(strings.TrimSpace(query))

	scored := make([]types.Retrieved, 0, k)
	for _, ch := range r.index.Chunks {
		content := strings.ToLower(ch.Content)
		source := strings.ToLower(ch.SourceID)

		var score float64
		for _, w := range words {
			if strings.Contains(content, w) {
				score++
			}
			if strings.Contains(source, w) {
				score += 3
			}
		}
		if phrase != "" && strings.Contains(content, phrase) {
			score += 5
		}
		if score > 0 {
			scored = append(scored, types.Retrieved{Chunk: ch, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// expandQuery lowercases the query, splits it into words on any
// non-alphanumeric rune so punctuation never sticks to a token, and
// widens the set with the synonyms registered for any word that has
// them. Order is preserved and duplicates are dropped.
func (r *Retriever) expandQuery(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	seen := make(map[string]bool, len(fields))
	expanded := make([]string, 0, len(fields))

	add := func(w string) {
		if w != "" && !seen[w] {
			seen[w] = true
			expanded = append(expanded, w)
		}
	}
	for _, f := range fields {
		add(f)
		for _, syn := range r.synonyms[f] {
			add(strings.ToLower(syn))
		}
	}
	return expanded
}
