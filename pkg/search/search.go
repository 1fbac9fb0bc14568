package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/brandonhon/catbar/internal/category"
)

type Result struct {
	Category category.Category `json:"category"`
	Index    int               `json:"index"`
	Score    float64           `json:"score"`
	Match    string            `json:"match"`
}

type Searcher struct {
	caseSensitive bool
	fuzzy         bool
}

func NewSearcher(caseSensitive, fuzzy bool) *Searcher {
	return &Searcher{
		caseSensitive: caseSensitive,
		fuzzy:         fuzzy,
	}
}

type nameSource []category.Category

func (n nameSource) String(i int) string { return n[i].Name }
func (n nameSource) Len() int            { return len(n) }

// Search scores category names against query, best first. Ties keep list
// order.
func (s *Searcher) Search(categories []category.Category, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}
	}

	var results []Result
	if s.fuzzy {
		results = s.fuzzySearch(categories, query)
	} else {
		for i, c := range categories {
			if score := s.exactMatch(s.fold(c.Name), s.fold(query)); score > 0 {
				results = append(results, Result{Category: c, Index: i, Score: score, Match: c.Name})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	if results == nil {
		return []Result{}
	}
	return results
}

func (s *Searcher) fuzzySearch(categories []category.Category, query string) []Result {
	var results []Result

	for _, m := range fuzzy.FindFrom(query, nameSource(categories)) {
		if s.caseSensitive && !sameCase(m, query) {
			continue
		}

		score := s.exactMatch(s.fold(m.Str), s.fold(query))
		if score == 0 {
			// Subsequence only: weight by how much of the name was matched
			score = 0.5 * float64(len(m.MatchedIndexes)) / float64(utf8.RuneCountInString(m.Str))
		}

		results = append(results, Result{
			Category: categories[m.Index],
			Index:    m.Index,
			Score:    score,
			Match:    highlight(m),
		})
	}

	return results
}

// sameCase reports whether every matched rune has the query rune's case.
func sameCase(m fuzzy.Match, query string) bool {
	q := []rune(query)
	for k, idx := range m.MatchedIndexes {
		if k >= len(q) {
			break
		}
		r, _ := utf8.DecodeRuneInString(m.Str[idx:])
		if r != q[k] {
			return false
		}
	}
	return true
}

// highlight brackets the matched runes of the name.
func highlight(m fuzzy.Match) string {
	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, idx := range m.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder
	for i, r := range m.Str {
		if matched[i] {
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Searcher) fold(text string) string {
	if s.caseSensitive {
		return text
	}
	return strings.ToLower(text)
}

func (s *Searcher) exactMatch(text, query string) float64 {
	if text == query {
		return 1.0
	}

	if strings.HasPrefix(text, query) {
		return 0.9
	}

	words := strings.Fields(text)
	for _, word := range words {
		if word == query {
			return 0.8
		}
	}

	for _, word := range words {
		if strings.HasPrefix(word, query) {
			return 0.75
		}
	}

	if strings.Contains(text, query) {
		return 0.7
	}

	return 0.0
}

// Lookup finds the category whose trimmed name equals name.
func (s *Searcher) Lookup(categories []category.Category, name string) (category.Category, bool) {
	name = s.fold(strings.TrimSpace(name))
	for _, c := range categories {
		if s.fold(strings.TrimSpace(c.Name)) == name {
			return c, true
		}
	}
	return category.Category{}, false
}
