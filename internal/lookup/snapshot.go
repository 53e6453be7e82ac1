// Package lookup resolves a loan file number to its storage box and customer
// name against an immutable, explicitly reloaded snapshot of the reference data.
package lookup

import (
	"sort"
	"time"

	"loanlocator/pkg/domain"
)

// Snapshot is an immutable in-memory copy of both reference collections.
// Ranges are held in resolution order: start ascending, source order for ties.
type Snapshot struct {
	ranges      []domain.BoxRange
	names       map[int64]string
	loanCount   int
	loadedAt    time.Time
	lastUpdated time.Time
}

// NewSnapshot builds a snapshot from the full collections. The inputs are
// copied; later mutation by the caller does not affect the snapshot.
func NewSnapshot(loans []domain.LoanRecord, ranges []domain.BoxRange, loadedAt time.Time) *Snapshot {
	ordered := make([]domain.BoxRange, len(ranges))
	copy(ordered, ranges)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	names := make(map[int64]string, len(loans))
	var latest time.Time
	for _, l := range loans {
		names[l.Loan] = l.Name
		if l.UpdatedAt.After(latest) {
			latest = l.UpdatedAt
		}
	}
	for _, r := range ordered {
		if r.UpdatedAt.After(latest) {
			latest = r.UpdatedAt
		}
	}
	if latest.IsZero() {
		latest = loadedAt
	}
	return &Snapshot{
		ranges:      ordered,
		names:       names,
		loanCount:   len(loans),
		loadedAt:    loadedAt,
		lastUpdated: latest.UTC(),
	}
}

// Stats summarizes snapshot contents for the search landing view.
type Stats struct {
	Ranges      int       `json:"ranges"`
	Loans       int       `json:"loans"`
	LoadedAt    time.Time `json:"loadedAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Stats returns collection sizes and timestamps.
func (s *Snapshot) Stats() Stats {
	return Stats{
		Ranges:      len(s.ranges),
		Loans:       s.loanCount,
		LoadedAt:    s.loadedAt,
		LastUpdated: s.lastUpdated,
	}
}

// LastUpdated is the most recent record timestamp, or the load time when no
// record carries one.
func (s *Snapshot) LastUpdated() time.Time { return s.lastUpdated }

// Ranges returns a copy of the ranges in resolution order.
func (s *Snapshot) Ranges() []domain.BoxRange {
	out := make([]domain.BoxRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}
