package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/uuid"

	"loanlocator/internal/blob"
	"loanlocator/pkg/domain"
)

func TestArchiveKeyFormat(t *testing.T) {
	id := uuid.MustParse("6f1c2a8e-4b7d-4c1e-9a3f-1d2e3f4a5b6c")
	got := ArchiveKey(domain.EntityRange, fixedNow, id)
	if got != "exports/ranges-2026-10-14-6f1c2a8e-4b7d-4c1e-9a3f-1d2e3f4a5b6c.json" {
		t.Fatalf("unexpected key %s", got)
	}
	if name := newTestService(t).ExportFilename(domain.EntityLoan); name != "loans-2026-10-14.json" {
		t.Fatalf("unexpected filename %s", name)
	}
}

func TestArchiveExportAndImport(t *testing.T) {
	ctx := context.Background()
	archive := blob.NewMemory()
	svc := newTestService(t, WithArchive(archive))
	if _, err := svc.ImportLoans(ctx, []domain.LoanRecord{{Loan: 1, Name: "a"}, {Loan: 2, Name: "b"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	info, err := svc.ArchiveExport(ctx, domain.EntityLoan)
	if err != nil {
		t.Fatalf("ArchiveExport: %v", err)
	}
	pattern := regexp.MustCompile(`^exports/loans-2026-10-14-[0-9a-f-]{36}\.json$`)
	if !pattern.MatchString(info.Key) || info.URL != "" {
		t.Fatalf("unexpected archive info %+v", info)
	}
	listed, err := svc.ListArchives(ctx, domain.EntityLoan)
	if err != nil || len(listed) != 1 {
		t.Fatalf("ListArchives: %+v %v", listed, err)
	}

	restored := newTestService(t, WithArchive(archive))
	n, err := restored.ImportArchive(ctx, domain.EntityLoan, info.Key)
	if err != nil || n != 2 {
		t.Fatalf("ImportArchive: %d %v", n, err)
	}
	if _, err := restored.ImportArchive(ctx, domain.EntityLoan, "exports/missing.json"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := restored.ImportArchive(ctx, domain.EntityLoan, " "); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected missing key, got %v", err)
	}
}

func TestArchiveUsesPresignedURLWhenAvailable(t *testing.T) {
	svc := newTestService(t, WithArchive(blob.NewMockS3ForTests()))
	info, err := svc.ArchiveExport(context.Background(), domain.EntityRange)
	if err != nil {
		t.Fatalf("ArchiveExport: %v", err)
	}
	if info.URL == "" {
		t.Fatalf("expected presigned url")
	}
}

func TestArchiveDisabled(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.ArchiveExport(context.Background(), domain.EntityLoan); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
	if _, err := svc.ImportArchive(context.Background(), domain.EntityLoan, "k"); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
	if _, err := svc.ListArchives(context.Background(), domain.EntityLoan); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
}

func TestSeedOnlyFillsEmptyCollections(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	loansPath := filepath.Join(dir, "loans.json")
	rangesPath := filepath.Join(dir, "ranges.json")
	if err := os.WriteFile(loansPath, []byte(`[{"loan":1,"name":"a"},{"loan":2,"name":"b"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(rangesPath, []byte(`[{"start":1,"end":9,"location":"Box"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	svc := newTestService(t)
	if _, err := svc.CreateRange(ctx, domain.RangeForm{Start: "100", End: "200", Location: "Existing"}); err != nil {
		t.Fatalf("seed range: %v", err)
	}
	res, err := svc.Seed(ctx, SeedFiles{Loans: loansPath, Ranges: rangesPath})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Loans != 2 || res.Ranges != 0 {
		t.Fatalf("unexpected seed result %+v", res)
	}
	ranges, _ := svc.ListRanges(ctx)
	if len(ranges) != 1 || ranges[0].Location != "Existing" {
		t.Fatalf("ranges must be left alone, got %+v", ranges)
	}
	if _, err := newTestService(t).Seed(ctx, SeedFiles{Loans: filepath.Join(dir, "absent.json")}); err == nil {
		t.Fatalf("expected error for missing seed file")
	}
	if res, err := newTestService(t).Seed(ctx, SeedFiles{}); err != nil || res != (SeedResult{}) {
		t.Fatalf("expected no-op seed, got %+v %v", res, err)
	}
}

func TestOpenReferenceStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenReferenceStore(ctx, StorageOptions{Driver: "memory"})
	if err != nil || store == nil {
		t.Fatalf("memory: %v", err)
	}
	if _, err := OpenReferenceStore(ctx, StorageOptions{Driver: "cassandra"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	store, err = OpenReferenceStore(ctx, StorageOptions{SQLitePath: filepath.Join(t.TempDir(), "ref.db")})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	} else {
		t.Fatalf("expected sqlite store to be closable")
	}
}
