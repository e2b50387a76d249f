package tab

import (
	"strconv"
	"strings"
)

// ID identifies one open browsing context for as long as it stays open.
type ID int64

// SnapshotRecord is the cached state of a tab at its most recent activation.
type SnapshotRecord struct {
	ID         ID     `json:"id"`
	LastActive int64  `json:"lastActive"`
	Title      string `json:"title,omitempty"`
	FaviconURL string `json:"favIconUrl,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
}

// LiveTab is the browser's current view of a tab. It is never persisted.
type LiveTab struct {
	ID         ID     `json:"id"`
	Title      string `json:"title,omitempty"`
	FaviconURL string `json:"favIconUrl,omitempty"`
	URL        string `json:"url,omitempty"`
	WindowID   int64  `json:"windowId"`
	Active     bool   `json:"active"`
}

// Candidate is one entry offered by the switcher.
type Candidate struct {
	ID         ID     `json:"id"`
	LastActive int64  `json:"lastActive"`
	Title      string `json:"title,omitempty"`
	FaviconURL string `json:"favIconUrl,omitempty"`
	URL        string `json:"url,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
}

const keyPrefix = "tab-"

// Key returns the storage key for a tab.
func Key(id ID) string {
	return keyPrefix + strconv.FormatInt(int64(id), 10)
}

// ParseKey reverses Key. It reports false for keys outside the tab namespace.
func ParseKey(key string) (ID, bool) {
	if !strings.HasPrefix(key, keyPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(key[len(keyPrefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return ID(n), true
}

// Capturable reports whether the tab's URL uses a scheme that can be captured.
func Capturable(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// DisplayTitle returns the title, falling back to the URL.
func (c Candidate) DisplayTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	if c.URL != "" {
		return c.URL
	}
	return "Untitled tab"
}

// CloneCandidates returns a shallow copy of the slice.
func CloneCandidates(list []Candidate) []Candidate {
	if len(list) == 0 {
		return nil
	}
	dup := make([]Candidate, len(list))
	copy(dup, list)
	return dup
}
