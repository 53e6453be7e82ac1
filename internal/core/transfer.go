package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"loanlocator/pkg/domain"
)

// Confirmation carries the two confirmations a destructive clear requires.
// Both must equal the collection name.
type Confirmation struct {
	Confirm      string `json:"confirm"`
	FinalConfirm string `json:"final_confirm"`
}

func (c Confirmation) confirms(entity domain.EntityType) bool {
	return strings.TrimSpace(c.Confirm) == string(entity) && strings.TrimSpace(c.FinalConfirm) == string(entity)
}

// DecodeLoans parses a JSON array of loan records.
func DecodeLoans(r io.Reader) ([]domain.LoanRecord, error) {
	var loans []domain.LoanRecord
	if err := json.NewDecoder(r).Decode(&loans); err != nil {
		return nil, fmt.Errorf("decode loans: %w", err)
	}
	return loans, nil
}

// DecodeRanges parses a JSON array of box ranges.
func DecodeRanges(r io.Reader) ([]domain.BoxRange, error) {
	var ranges []domain.BoxRange
	if err := json.NewDecoder(r).Decode(&ranges); err != nil {
		return nil, fmt.Errorf("decode ranges: %w", err)
	}
	return ranges, nil
}

// errEmptyImport rejects imports without records. Emptying a collection
// goes through the confirmed clear.
var errEmptyImport = fmt.Errorf("%w: import contains no records, use clear to empty a collection", domain.ErrInvalidPayload)

func validateLoans(loans []domain.LoanRecord) error {
	if len(loans) == 0 {
		return errEmptyImport
	}
	for i, l := range loans {
		if l.Loan < 0 {
			return fmt.Errorf("record %d: %w", i, &domain.FieldError{Field: "loan", Err: domain.ErrNonNumericField})
		}
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("record %d: %w", i, &domain.FieldError{Field: "name", Err: domain.ErrMissingField})
		}
	}
	return nil
}

func validateRanges(ranges []domain.BoxRange) error {
	if len(ranges) == 0 {
		return errEmptyImport
	}
	for i, r := range ranges {
		if r.Start < 0 || r.End < 0 {
			return fmt.Errorf("record %d: %w", i, &domain.FieldError{Field: "start", Err: domain.ErrNonNumericField})
		}
		if strings.TrimSpace(r.Location) == "" {
			return fmt.Errorf("record %d: %w", i, &domain.FieldError{Field: "location", Err: domain.ErrMissingField})
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// ImportLoans validates every record, then replaces the loans collection with
// them. Timestamps are regenerated. An empty import is rejected.
func (s *Service) ImportLoans(ctx context.Context, loans []domain.LoanRecord) (int, error) {
	if err := validateLoans(loans); err != nil {
		return 0, err
	}
	now := s.now()
	stamped := make([]domain.LoanRecord, len(loans))
	for i, l := range loans {
		l.Name = strings.TrimSpace(l.Name)
		l.UpdatedAt = now
		stamped[i] = l
	}
	return s.mutate(ctx, "import_loans", domain.EntityLoan, "", func(tx domain.Transaction) (int, error) {
		if err := tx.ReplaceLoans(stamped); err != nil {
			return 0, err
		}
		return len(tx.Loans()), nil
	})
}

// ImportRanges validates every range, then replaces the ranges collection.
func (s *Service) ImportRanges(ctx context.Context, ranges []domain.BoxRange) (int, error) {
	if err := validateRanges(ranges); err != nil {
		return 0, err
	}
	now := s.now()
	stamped := make([]domain.BoxRange, len(ranges))
	for i, r := range ranges {
		r.Location = strings.TrimSpace(r.Location)
		r.UpdatedAt = now
		stamped[i] = r
	}
	return s.mutate(ctx, "import_ranges", domain.EntityRange, "", func(tx domain.Transaction) (int, error) {
		if err := tx.ReplaceRanges(stamped); err != nil {
			return 0, err
		}
		return len(tx.Ranges()), nil
	})
}

// ExportLoans renders the loans collection as an indented JSON array without timestamps.
func (s *Service) ExportLoans(ctx context.Context) ([]byte, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(domain.StripLoanTimestamps(loans), "", "  ")
}

// ExportRanges renders the ranges collection as an indented JSON array without timestamps.
func (s *Service) ExportRanges(ctx context.Context) ([]byte, error) {
	ranges, err := s.store.ListRanges(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(domain.StripRangeTimestamps(ranges), "", "  ")
}

// Export dispatches to ExportLoans or ExportRanges.
func (s *Service) Export(ctx context.Context, kind domain.EntityType) ([]byte, error) {
	switch kind {
	case domain.EntityLoan:
		return s.ExportLoans(ctx)
	case domain.EntityRange:
		return s.ExportRanges(ctx)
	default:
		return nil, fmt.Errorf("export %q: %w", kind, domain.ErrNotFound)
	}
}

// Import decodes a JSON array from r and imports it into the collection named by kind.
func (s *Service) Import(ctx context.Context, kind domain.EntityType, r io.Reader) (int, error) {
	switch kind {
	case domain.EntityLoan:
		loans, err := DecodeLoans(r)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		return s.ImportLoans(ctx, loans)
	case domain.EntityRange:
		ranges, err := DecodeRanges(r)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		return s.ImportRanges(ctx, ranges)
	default:
		return 0, fmt.Errorf("import %q: %w", kind, domain.ErrNotFound)
	}
}

// ClearLoans deletes every loan once both confirmations name the collection.
func (s *Service) ClearLoans(ctx context.Context, c Confirmation) (int, error) {
	return s.clear(ctx, domain.EntityLoan, c)
}

// ClearRanges deletes every range once both confirmations name the collection.
func (s *Service) ClearRanges(ctx context.Context, c Confirmation) (int, error) {
	return s.clear(ctx, domain.EntityRange, c)
}

// Clear dispatches to ClearLoans or ClearRanges.
func (s *Service) Clear(ctx context.Context, kind domain.EntityType, c Confirmation) (int, error) {
	if kind != domain.EntityLoan && kind != domain.EntityRange {
		return 0, fmt.Errorf("clear %q: %w", kind, domain.ErrNotFound)
	}
	return s.clear(ctx, kind, c)
}

func (s *Service) clear(ctx context.Context, kind domain.EntityType, c Confirmation) (int, error) {
	if !c.confirms(kind) {
		return 0, fmt.Errorf("clear %s: %w", kind, domain.ErrConfirmationRequired)
	}
	return s.mutate(ctx, "clear_"+string(kind), kind, "", func(tx domain.Transaction) (int, error) {
		if kind == domain.EntityLoan {
			return tx.ClearLoans()
		}
		return tx.ClearRanges()
	})
}
