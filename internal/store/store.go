// Package store is the bounded recency cache of tab snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
	"github.com/atomicstack/tab-popup-switcher/internal/logging/events"
	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

// DefaultCap is the number of records kept after eviction.
const DefaultCap = 10

var (
	errMissingID   = errors.New("record has no id")
	errKeyMismatch = errors.New("record id does not match its key")
)

// Options tunes a Store.
type Options struct {
	Cap             int
	MonotonicWrites bool
}

// Store owns the snapshot namespace. Put and eviction are serialised.
type Store struct {
	backend Backend
	opts    Options
	mu      sync.Mutex
}

func New(backend Backend, opts Options) *Store {
	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}
	return &Store{backend: backend, opts: opts}
}

// Put replaces the record for rec.ID and then trims the namespace to Cap.
func (s *Store) Put(ctx context.Context, rec tab.SnapshotRecord) error {
	if rec.ID == 0 {
		return errMissingID
	}
	key := tab.Key(rec.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	if s.opts.MonotonicWrites {
		if existing, ok := records[key]; ok && existing.LastActive > rec.LastActive {
			events.Store.Stale(key, existing.LastActive, rec.LastActive)
			return nil
		}
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, value); err != nil {
		return err
	}
	events.Store.Put(key, rec.LastActive)
	records[key] = rec
	return s.evict(ctx, records)
}

// evict removes every record beyond the newest Cap.
func (s *Store) evict(ctx context.Context, records map[string]tab.SnapshotRecord) error {
	if len(records) <= s.opts.Cap {
		return nil
	}
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := records[keys[i]], records[keys[j]]
		if a.LastActive != b.LastActive {
			return a.LastActive > b.LastActive
		}
		return keys[i] < keys[j]
	})
	stale := keys[s.opts.Cap:]
	if err := s.backend.Remove(ctx, stale...); err != nil {
		return err
	}
	events.Store.Evict(stale)
	return nil
}

// Get returns the stored record for id.
func (s *Store) Get(ctx context.Context, id tab.ID) (tab.SnapshotRecord, bool, error) {
	records, err := s.load(ctx)
	if err != nil {
		return tab.SnapshotRecord{}, false, err
	}
	rec, ok := records[tab.Key(id)]
	return rec, ok, nil
}

// All returns every well-formed record, newest first.
func (s *Store) All(ctx context.Context) ([]tab.SnapshotRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]tab.SnapshotRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastActive != out[j].LastActive {
			return out[i].LastActive > out[j].LastActive
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MergedWithLive joins stored records with the live tab list. Records for
// tabs that are no longer live are left in place until evicted.
func (s *Store) MergedWithLive(ctx context.Context, live []tab.LiveTab) ([]tab.Candidate, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[tab.ID]tab.LiveTab, len(live))
	for _, lt := range live {
		byID[lt.ID] = lt
	}
	out := make([]tab.Candidate, 0, len(records))
	for _, rec := range records {
		lt, ok := byID[rec.ID]
		if !ok {
			continue
		}
		cand := tab.Candidate{
			ID:         rec.ID,
			LastActive: rec.LastActive,
			Title:      rec.Title,
			FaviconURL: rec.FaviconURL,
			URL:        lt.URL,
			Screenshot: rec.Screenshot,
		}
		if lt.Title != "" {
			cand.Title = lt.Title
		}
		if lt.FaviconURL != "" {
			cand.FaviconURL = lt.FaviconURL
		}
		out = append(out, cand)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	events.Store.Merge(len(records), len(live), len(out))
	return out, nil
}

// Clear empties the namespace.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Clear(ctx); err != nil {
		return err
	}
	events.Store.Clear()
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// load decodes the namespace, skipping keys outside it and malformed values.
func (s *Store) load(ctx context.Context) (map[string]tab.SnapshotRecord, error) {
	raw, err := s.backend.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]tab.SnapshotRecord, len(raw))
	for key, value := range raw {
		keyID, ok := tab.ParseKey(key)
		if !ok {
			continue
		}
		var rec tab.SnapshotRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			logging.Error(fmt.Errorf("store: decode %s: %w", key, err))
			events.Store.Malformed(key, err)
			continue
		}
		if rec.ID == 0 {
			events.Store.Malformed(key, errMissingID)
			continue
		}
		if rec.ID != keyID {
			events.Store.Malformed(key, fmt.Errorf("%w: record id %d", errKeyMismatch, rec.ID))
			continue
		}
		out[key] = rec
	}
	return out, nil
}
