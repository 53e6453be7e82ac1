package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"loanlocator/pkg/domain"
)

// ReferenceDataSource returns complete collections in one call each.
type ReferenceDataSource interface {
	FetchAllLoans(ctx context.Context) ([]domain.LoanRecord, error)
	FetchAllRanges(ctx context.Context) ([]domain.BoxRange, error)
}

// ReloadObserver is notified after every reload attempt.
type ReloadObserver interface {
	ObserveReload(stats Stats, err error, duration time.Duration)
}

// Loader owns the active snapshot and replaces it on explicit reload.
type Loader struct {
	source   ReferenceDataSource
	now      func() time.Time
	observer ReloadObserver
	current  atomic.Pointer[Snapshot]
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderClock overrides the load timestamp source.
func WithLoaderClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithReloadObserver registers a reload observer, typically metrics.
func WithReloadObserver(o ReloadObserver) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

// NewLoader constructs a loader over source. No data is fetched until Reload.
func NewLoader(source ReferenceDataSource, opts ...LoaderOption) *Loader {
	l := &Loader{source: source, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reload fetches both collections and swaps in a new snapshot. On failure the
// previous snapshot stays active. Failures are not retried.
func (l *Loader) Reload(ctx context.Context) (*Snapshot, error) {
	started := l.now()
	snap, err := l.fetch(ctx)
	if l.observer != nil {
		var stats Stats
		if snap != nil {
			stats = snap.Stats()
		}
		l.observer.ObserveReload(stats, err, l.now().Sub(started))
	}
	if err != nil {
		return nil, err
	}
	l.current.Store(snap)
	return snap, nil
}

func (l *Loader) fetch(ctx context.Context) (*Snapshot, error) {
	if l.source == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrSourceUnavailable)
	}
	loans, err := l.source.FetchAllLoans(ctx)
	if err != nil {
		return nil, sourceError("fetch loans", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ranges, err := l.source.FetchAllRanges(ctx)
	if err != nil {
		return nil, sourceError("fetch ranges", err)
	}
	return NewSnapshot(loans, ranges, l.now()), nil
}

func sourceError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrSourceUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrSourceUnavailable, err)
}

// Current returns the active snapshot, or ErrNotLoaded before the first
// successful reload.
func (l *Loader) Current() (*Snapshot, error) {
	snap := l.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Locate resolves input against the active snapshot. Input validation runs
// before the loaded check.
func (l *Loader) Locate(input string) (Result, error) {
	return Locate(l.current.Load(), input)
}
