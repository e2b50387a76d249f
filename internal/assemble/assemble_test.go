package assemble

import (
	"testing"

	"github.com/atomicstack/tab-popup-switcher/internal/tab"
)

func ids(list []tab.Candidate) []tab.ID {
	out := make([]tab.ID, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a, b []tab.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAssembleActiveFirstThenRecency(t *testing.T) {
	entries := []tab.Candidate{
		{ID: 1, LastActive: 100},
		{ID: 2, LastActive: 300},
		{ID: 3, LastActive: 200},
	}
	got := ids(Assemble(1, entries, DefaultLimit))
	if want := []tab.ID{1, 2, 3}; !equalIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAssembleActiveFirstEvenWhenOldest(t *testing.T) {
	entries := make([]tab.Candidate, 0, 12)
	for i := 1; i <= 12; i++ {
		entries = append(entries, tab.Candidate{ID: tab.ID(i), LastActive: int64(i * 10)})
	}
	got := Assemble(1, entries, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(got))
	}
	if got[0].ID != 1 {
		t.Fatalf("expected active tab first, got %d", got[0].ID)
	}
	if got[1].ID != 12 {
		t.Fatalf("expected most recent after active, got %d", got[1].ID)
	}
}

func TestAssembleMissingRecencySortsLast(t *testing.T) {
	entries := []tab.Candidate{{ID: 4}, {ID: 5, LastActive: 1}}
	got := ids(Assemble(0, entries, 0))
	if want := []tab.ID{5, 4}; !equalIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	entries := []tab.Candidate{{ID: 1, LastActive: 1}, {ID: 2, LastActive: 2}}
	_ = Assemble(0, entries, 0)
	if entries[0].ID != 1 {
		t.Fatalf("expected input order preserved")
	}
}

func TestWithUncapturedAddsLiveTabs(t *testing.T) {
	merged := []tab.Candidate{{ID: 2, LastActive: 50, Title: "captured"}}
	live := []tab.LiveTab{
		{ID: 1, Title: "active", Active: true},
		{ID: 2, Title: "captured"},
		{ID: 3, Title: "new", URL: "https://new.example"},
	}
	all := WithUncaptured(live, merged)
	got := ids(Assemble(ActiveID(live), all, DefaultLimit))
	if want := []tab.ID{1, 2, 3}; !equalIDs(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestActiveIDWithoutActiveTab(t *testing.T) {
	if got := ActiveID([]tab.LiveTab{{ID: 1}}); got != 0 {
		t.Fatalf("expected zero, got %d", got)
	}
}
