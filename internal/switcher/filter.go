package switcher

import (
	"strings"
	"unicode"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

func filterCandidates(items []tab.Candidate, query string, mode FilterMode) []tab.Candidate {
	if query == "" {
		return tab.CloneCandidates(items)
	}
	if mode == FilterFuzzy {
		if out := fuzzyCandidates(items, query); len(out) > 0 {
			return out
		}
	}
	lower := strings.ToLower(query)
	out := make([]tab.Candidate, 0, len(items))
	for _, item := range items {
		if matchesSubstring(item, lower) {
			out = append(out, item)
		}
	}
	return out
}

// fuzzyCandidates keeps the original order of every candidate whose title or
// url fuzzy-matches query.
func fuzzyCandidates(items []tab.Candidate, query string) []tab.Candidate {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Title + " " + item.URL
	}
	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	if len(ranks) == 0 {
		return nil
	}
	matches := make(map[int]struct{}, len(ranks))
	for _, rank := range ranks {
		matches[rank.OriginalIndex] = struct{}{}
	}
	out := make([]tab.Candidate, 0, len(matches))
	for idx, item := range items {
		if _, ok := matches[idx]; ok {
			out = append(out, item)
		}
	}
	return out
}

// AppendQuery adds text to the end of the query and refilters.
func (c *Controller) AppendQuery(text string) bool {
	if c.phase != Open || text == "" {
		return false
	}
	c.Filter(c.query + text)
	return true
}

// DeleteQueryRune removes the last rune of the query.
func (c *Controller) DeleteQueryRune() bool {
	runes := []rune(c.query)
	if c.phase != Open || len(runes) == 0 {
		return false
	}
	c.Filter(string(runes[:len(runes)-1]))
	return true
}

// DeleteQueryWord removes the trailing word of the query.
func (c *Controller) DeleteQueryWord() bool {
	runes := []rune(c.query)
	if c.phase != Open || len(runes) == 0 {
		return false
	}
	i := len(runes)
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	c.Filter(string(runes[:i]))
	return true
}
