package domain

import "context"

// Transaction exposes the reference-data operations a persistence
// implementation must support within a single unit of work.
type Transaction interface {
	GetLoan(loan int64) (LoanRecord, bool)
	PutLoan(LoanRecord) error
	DeleteLoan(loan int64) error
	ReplaceLoans([]LoanRecord) error
	ClearLoans() (int, error)
	Loans() []LoanRecord

	GetRange(id string) (BoxRange, bool)
	PutRange(BoxRange) error
	DeleteRange(id string) error
	ReplaceRanges([]BoxRange) error
	ClearRanges() (int, error)
	Ranges() []BoxRange
}

// ReferenceStore is the abstraction over durable backends holding the
// loan and range collections.
type ReferenceStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	// ListLoans returns every loan ordered by loan number ascending.
	ListLoans(ctx context.Context) ([]LoanRecord, error)
	// ListRanges returns every range ordered by start, then end, ascending.
	ListRanges(ctx context.Context) ([]BoxRange, error)
	// Ping probes backend connectivity through the metadata collection.
	Ping(ctx context.Context) error
}
