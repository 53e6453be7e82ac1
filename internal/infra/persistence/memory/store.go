// Package memory provides an in-memory implementation of the reference data
// store used for tests, ephemeral environments, and as the transactional
// core of the snapshotting sqlite and postgres stores.
package memory

import (
	"context"
	"loanlocator/pkg/domain"
	"sync"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.ReferenceStore = (*Store)(nil)

type (
	// LoanRecord aliases domain.LoanRecord for in-memory persistence operations.
	LoanRecord = domain.LoanRecord
	// BoxRange aliases domain.BoxRange.
	BoxRange = domain.BoxRange
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
)

type memoryState struct {
	loans  map[int64]LoanRecord
	ranges map[string]BoxRange
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Loans  []LoanRecord `json:"loans"`
	Ranges []BoxRange   `json:"ranges"`
}

func newMemoryState() memoryState {
	return memoryState{
		loans:  make(map[int64]LoanRecord),
		ranges: make(map[string]BoxRange),
	}
}

func (s memoryState) clone() memoryState {
	cp := memoryState{
		loans:  make(map[int64]LoanRecord, len(s.loans)),
		ranges: make(map[string]BoxRange, len(s.ranges)),
	}
	for k, v := range s.loans {
		cp.loans[k] = v
	}
	for k, v := range s.ranges {
		cp.ranges[k] = v
	}
	return cp
}

func (s memoryState) sortedLoans() []LoanRecord {
	out := make([]LoanRecord, 0, len(s.loans))
	for _, l := range s.loans {
		out = append(out, l)
	}
	domain.SortLoans(out)
	return out
}

func (s memoryState) sortedRanges() []BoxRange {
	out := make([]BoxRange, 0, len(s.ranges))
	for _, r := range s.ranges {
		out = append(out, r)
	}
	domain.SortRanges(out)
	return out
}

// Store provides an in-memory transactional store for the reference collections.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Loans: s.state.sortedLoans(), Ranges: s.state.sortedRanges()}
}

// ImportState replaces the store state with the provided snapshot. Later
// records win for duplicate keys.
func (s *Store) ImportState(snapshot Snapshot) {
	state := newMemoryState()
	for _, l := range snapshot.Loans {
		state.loans[l.Loan] = l
	}
	for _, r := range snapshot.Ranges {
		state.ranges[r.ID()] = r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// RunInTransaction executes fn within a transactional copy of the store state
// and commits the copy only when fn succeeds.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// ListLoans returns all loans ordered by loan number.
func (s *Store) ListLoans(ctx context.Context) ([]LoanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sortedLoans(), nil
}

// ListRanges returns all ranges ordered by start then end.
func (s *Store) ListRanges(ctx context.Context) ([]BoxRange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.sortedRanges(), nil
}

// Ping always succeeds for the in-memory store unless ctx is done.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type transaction struct {
	state memoryState
}

func (tx *transaction) GetLoan(loan int64) (LoanRecord, bool) {
	l, ok := tx.state.loans[loan]
	return l, ok
}

func (tx *transaction) PutLoan(l LoanRecord) error {
	tx.state.loans[l.Loan] = l
	return nil
}

func (tx *transaction) DeleteLoan(loan int64) error {
	if _, ok := tx.state.loans[loan]; !ok {
		return domain.NotFound(domain.EntityLoan, domain.LoanID(loan))
	}
	delete(tx.state.loans, loan)
	return nil
}

func (tx *transaction) ReplaceLoans(loans []LoanRecord) error {
	tx.state.loans = make(map[int64]LoanRecord, len(loans))
	for _, l := range loans {
		tx.state.loans[l.Loan] = l
	}
	return nil
}

func (tx *transaction) ClearLoans() (int, error) {
	n := len(tx.state.loans)
	tx.state.loans = make(map[int64]LoanRecord)
	return n, nil
}

func (tx *transaction) Loans() []LoanRecord { return tx.state.sortedLoans() }

func (tx *transaction) GetRange(id string) (BoxRange, bool) {
	r, ok := tx.state.ranges[id]
	return r, ok
}

func (tx *transaction) PutRange(r BoxRange) error {
	tx.state.ranges[r.ID()] = r
	return nil
}

func (tx *transaction) DeleteRange(id string) error {
	if _, ok := tx.state.ranges[id]; !ok {
		return domain.NotFound(domain.EntityRange, id)
	}
	delete(tx.state.ranges, id)
	return nil
}

func (tx *transaction) ReplaceRanges(ranges []BoxRange) error {
	tx.state.ranges = make(map[string]BoxRange, len(ranges))
	for _, r := range ranges {
		tx.state.ranges[r.ID()] = r
	}
	return nil
}

func (tx *transaction) ClearRanges() (int, error) {
	n := len(tx.state.ranges)
	tx.state.ranges = make(map[string]BoxRange)
	return n, nil
}

func (tx *transaction) Ranges() []BoxRange { return tx.state.sortedRanges() }
