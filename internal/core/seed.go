package core

import (
	"context"
	"fmt"
	"os"

	"loanlocator/pkg/domain"
)

// SeedFiles names JSON array files used to initialize empty collections.
type SeedFiles struct {
	Loans  string
	Ranges string
}

// SeedResult reports how many records each collection received.
type SeedResult struct {
	Loans  int
	Ranges int
}

// Seed imports each configured file into its collection when that collection is empty.
func (s *Service) Seed(ctx context.Context, files SeedFiles) (SeedResult, error) {
	var res SeedResult
	if files.Loans != "" {
		existing, err := s.store.ListLoans(ctx)
		if err != nil {
			return res, err
		}
		if len(existing) == 0 {
			n, err := s.seedFile(ctx, domain.EntityLoan, files.Loans)
			if err != nil {
				return res, err
			}
			res.Loans = n
		}
	}
	if files.Ranges != "" {
		existing, err := s.store.ListRanges(ctx)
		if err != nil {
			return res, err
		}
		if len(existing) == 0 {
			n, err := s.seedFile(ctx, domain.EntityRange, files.Ranges)
			if err != nil {
				return res, err
			}
			res.Ranges = n
		}
	}
	return res, nil
}

func (s *Service) seedFile(ctx context.Context, kind domain.EntityType, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	n, err := s.Import(ctx, kind, f)
	if err != nil {
		return 0, fmt.Errorf("seed %s from %s: %w", kind, path, err)
	}
	s.logger.Info("seeded collection", "entity", string(kind), "path", path, "count", n)
	return n, nil
}
