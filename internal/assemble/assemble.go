// Package assemble orders switcher candidates.
package assemble

import (
	"sort"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

// DefaultLimit is the number of candidates offered to the switcher.
const DefaultLimit = 10

// Assemble puts the active tab first, then the rest by LastActive
// descending, and truncates to limit. A limit of zero or less keeps every
// entry. The input slice is not modified.
func Assemble(activeID tab.ID, entries []tab.Candidate, limit int) []tab.Candidate {
	out := tab.CloneCandidates(entries)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].ID == activeID, out[j].ID == activeID
		if ai != aj {
			return ai
		}
		return out[i].LastActive > out[j].LastActive
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WithUncaptured appends live tabs that have no stored snapshot, with a
// LastActive of zero, so they still show up after every captured tab.
func WithUncaptured(live []tab.LiveTab, merged []tab.Candidate) []tab.Candidate {
	seen := make(map[tab.ID]struct{}, len(merged))
	for _, c := range merged {
		seen[c.ID] = struct{}{}
	}
	out := tab.CloneCandidates(merged)
	for _, lt := range live {
		if _, ok := seen[lt.ID]; ok {
			continue
		}
		seen[lt.ID] = struct{}{}
		out = append(out, tab.Candidate{
			ID:         lt.ID,
			Title:      lt.Title,
			FaviconURL: lt.FaviconURL,
			URL:        lt.URL,
		})
	}
	return out
}

// ActiveID returns the id of the active tab in live, or zero.
func ActiveID(live []tab.LiveTab) tab.ID {
	for _, lt := range live {
		if lt.Active {
			return lt.ID
		}
	}
	return 0
}
