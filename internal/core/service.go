// Package core implements the admin mutation service over a reference store
// and exposes the store as the lookup engine's data source.
package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"loanlocator/internal/blob"
	"loanlocator/pkg/domain"
)

// Service exposes transactional admin operations over the reference collections.
type Service struct {
	store   domain.ReferenceStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	audit   AuditRecorder
	archive blob.Store
}

// NewService constructs a service backed by store. It panics on a nil store.
func NewService(store domain.ReferenceStore, opts ...ServiceOption) *Service {
	if store == nil {
		panic("core: nil reference store")
	}
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		store:   store,
		clock:   o.clock,
		logger:  o.logger,
		metrics: o.metrics,
		audit:   o.audit,
		archive: o.archive,
	}
}

func (s *Service) now() time.Time { return s.clock.Now().UTC() }

// mutate runs fn in a store transaction and reports the outcome to metrics,
// audit and the logger.
func (s *Service) mutate(ctx context.Context, op string, entity domain.EntityType, key string, fn func(domain.Transaction) (int, error)) (int, error) {
	started := s.clock.Now()
	var count int
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		count, err = fn(tx)
		return err
	})
	duration := s.clock.Now().Sub(started)
	s.metrics.Observe(ctx, op, err == nil, duration)
	entry := AuditEntry{Operation: op, Entity: entity, Key: key, Count: count, Status: AuditStatusSuccess, Duration: duration, Timestamp: started.UTC()}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		s.logger.Warn("mutation failed", "operation", op, "entity", string(entity), "key", key, "error", err)
	} else {
		s.logger.Info("mutation applied", "operation", op, "entity", string(entity), "key", key, "count", count)
	}
	s.audit.Record(ctx, entry)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListLoans returns every loan ordered by loan number.
func (s *Service) ListLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	return s.store.ListLoans(ctx)
}

// ListRanges returns every range ordered by start then end.
func (s *Service) ListRanges(ctx context.Context) ([]domain.BoxRange, error) {
	return s.store.ListRanges(ctx)
}

// FilterLoans returns loans whose number contains query or whose name contains
// it case-insensitively. An empty query returns every loan.
func (s *Service) FilterLoans(ctx context.Context, query string) ([]domain.LoanRecord, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return loans, nil
	}
	needle := strings.ToLower(query)
	out := make([]domain.LoanRecord, 0, len(loans))
	for _, l := range loans {
		if strings.Contains(l.ID(), query) || strings.Contains(strings.ToLower(l.Name), needle) {
			out = append(out, l)
		}
	}
	return out, nil
}

// CreateLoan validates form and inserts a new loan record.
func (s *Service) CreateLoan(ctx context.Context, form domain.LoanForm) (domain.LoanRecord, error) {
	record, err := form.Parse()
	if err != nil {
		return domain.LoanRecord{}, err
	}
	record.UpdatedAt = s.now()
	_, err = s.mutate(ctx, "create_loan", domain.EntityLoan, record.ID(), func(tx domain.Transaction) (int, error) {
		if _, exists := tx.GetLoan(record.Loan); exists {
			return 0, domain.Duplicate(domain.EntityLoan, record.ID())
		}
		return 1, tx.PutLoan(record)
	})
	if err != nil {
		return domain.LoanRecord{}, err
	}
	return record, nil
}

// UpdateLoan replaces the loan stored under oldLoan with the one described by
// form. Renumbering removes the old record and must not collide with an
// existing key.
func (s *Service) UpdateLoan(ctx context.Context, oldLoan int64, form domain.LoanForm) (domain.LoanRecord, error) {
	record, err := form.Parse()
	if err != nil {
		return domain.LoanRecord{}, err
	}
	record.UpdatedAt = s.now()
	_, err = s.mutate(ctx, "update_loan", domain.EntityLoan, domain.LoanID(oldLoan), func(tx domain.Transaction) (int, error) {
		if _, ok := tx.GetLoan(oldLoan); !ok {
			return 0, domain.NotFound(domain.EntityLoan, domain.LoanID(oldLoan))
		}
		if record.Loan != oldLoan {
			if _, exists := tx.GetLoan(record.Loan); exists {
				return 0, domain.Duplicate(domain.EntityLoan, record.ID())
			}
			if err := tx.DeleteLoan(oldLoan); err != nil {
				return 0, err
			}
		}
		return 1, tx.PutLoan(record)
	})
	if err != nil {
		return domain.LoanRecord{}, err
	}
	return record, nil
}

// DeleteLoan removes a loan record.
func (s *Service) DeleteLoan(ctx context.Context, loan int64) error {
	_, err := s.mutate(ctx, "delete_loan", domain.EntityLoan, domain.LoanID(loan), func(tx domain.Transaction) (int, error) {
		return 1, tx.DeleteLoan(loan)
	})
	return err
}

// CreateRange validates form and writes the range, overwriting any range with
// the same start and end.
func (s *Service) CreateRange(ctx context.Context, form domain.RangeForm) (domain.BoxRange, error) {
	r, err := form.Parse()
	if err != nil {
		return domain.BoxRange{}, err
	}
	r.UpdatedAt = s.now()
	_, err = s.mutate(ctx, "create_range", domain.EntityRange, r.ID(), func(tx domain.Transaction) (int, error) {
		return 1, tx.PutRange(r)
	})
	if err != nil {
		return domain.BoxRange{}, err
	}
	return r, nil
}

// UpdateRange removes the range stored under oldID, when given, and writes
// the range described by form.
func (s *Service) UpdateRange(ctx context.Context, oldID string, form domain.RangeForm) (domain.BoxRange, error) {
	r, err := form.Parse()
	if err != nil {
		return domain.BoxRange{}, err
	}
	r.UpdatedAt = s.now()
	key := oldID
	if key == "" {
		key = r.ID()
	}
	_, err = s.mutate(ctx, "update_range", domain.EntityRange, key, func(tx domain.Transaction) (int, error) {
		if oldID != "" {
			if err := tx.DeleteRange(oldID); err != nil {
				return 0, err
			}
		}
		return 1, tx.PutRange(r)
	})
	if err != nil {
		return domain.BoxRange{}, err
	}
	return r, nil
}

// DeleteRange removes the range with the given "<start>-<end>" key.
func (s *Service) DeleteRange(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, "delete_range", domain.EntityRange, id, func(tx domain.Transaction) (int, error) {
		return 1, tx.DeleteRange(id)
	})
	return err
}

// Ping probes store connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// FetchAllLoans implements lookup.ReferenceDataSource.
func (s *Service) FetchAllLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	return s.store.ListLoans(ctx)
}

// FetchAllRanges implements lookup.ReferenceDataSource.
func (s *Service) FetchAllRanges(ctx context.Context) ([]domain.BoxRange, error) {
	return s.store.ListRanges(ctx)
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, domain.ErrMissingField) ||
		errors.Is(err, domain.ErrNonNumericField) ||
		errors.Is(err, domain.ErrMalformedRange) ||
		errors.Is(err, domain.ErrConfirmationRequired) ||
		errors.Is(err, domain.ErrInvalidPayload)
}
