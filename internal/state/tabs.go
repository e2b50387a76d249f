package state

import (
	"sync"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

// TabStore holds the most recent live tab snapshot. Readers may be on other
// goroutines than the dispatcher, so implementations are synchronised.
type TabStore interface {
	Tabs() []tab.LiveTab
	SetTabs([]tab.LiveTab)
	Active() (tab.LiveTab, bool)
	Lookup(tab.ID) (tab.LiveTab, bool)
}

type tabStore struct {
	mu   sync.RWMutex
	tabs []tab.LiveTab
}

func NewTabStore() TabStore {
	return &tabStore{}
}

func (s *tabStore) Tabs() []tab.LiveTab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLiveTabs(s.tabs)
}

func (s *tabStore) SetTabs(tabs []tab.LiveTab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs = cloneLiveTabs(tabs)
}

func (s *tabStore) Active() (tab.LiveTab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tabs {
		if t.Active {
			return t, true
		}
	}
	return tab.LiveTab{}, false
}

func (s *tabStore) Lookup(id tab.ID) (tab.LiveTab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tabs {
		if t.ID == id {
			return t, true
		}
	}
	return tab.LiveTab{}, false
}

func cloneLiveTabs(tabs []tab.LiveTab) []tab.LiveTab {
	if len(tabs) == 0 {
		return nil
	}
	dup := make([]tab.LiveTab, len(tabs))
	copy(dup, tabs)
	return dup
}
