package lookup

import (
	"errors"
	"testing"
	"time"

	"loanlocator/pkg/domain"
)

var loadedAt = time.Date(2025, 12, 3, 17, 34, 3, 0, time.UTC)

func fixtureSnapshot() *Snapshot {
	return NewSnapshot(
		[]domain.LoanRecord{
			{Loan: 170, Name: "A. Perera"},
			{Loan: 900, Name: "Only Name"},
			{Loan: 42, Name: ""},
		},
		[]domain.BoxRange{
			{Start: 100, End: 199, Location: "Box A"},
			{Start: 150, End: 250, Location: "Box B"},
		},
		loadedAt,
	)
}

func TestLocateValidation(t *testing.T) {
	snap := fixtureSnapshot()
	cases := []struct {
		input string
		want  error
	}{
		{"", ErrEmptyInput},
		{"   \t", ErrEmptyInput},
		{"12a34", ErrNonNumericInput},
		{"-12", ErrNonNumericInput},
		{"1 2", ErrNonNumericInput},
		{"+12", ErrNonNumericInput},
		{"99999999999999999999", ErrNonNumericInput},
	}
	for _, tc := range cases {
		if _, err := Locate(snap, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("input %q: expected %v, got %v", tc.input, tc.want, err)
		}
	}
}

func TestLocateParsesDigitStrings(t *testing.T) {
	snap := fixtureSnapshot()
	for input, want := range map[string]int64{"0": 0, " 76152020 ": 76152020, "007": 7} {
		res, err := Locate(snap, input)
		if err != nil {
			t.Fatalf("locate %q: %v", input, err)
		}
		if res.LoanNumber != want {
			t.Fatalf("input %q: expected %d, got %d", input, want, res.LoanNumber)
		}
	}
}

func TestLocateFirstMatchWinsUnderOverlap(t *testing.T) {
	res, err := Locate(fixtureSnapshot(), "170")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Location == nil || *res.Location != "Box A" {
		t.Fatalf("expected Box A, got %v", res.Location)
	}
	if res.CustomerName == nil || *res.CustomerName != "A. Perera" {
		t.Fatalf("expected customer name, got %v", res.CustomerName)
	}
	if res.Status() != StatusFound {
		t.Fatalf("expected found, got %s", res.Status())
	}
}

func TestLocateDuplicateLoanLastRecordWins(t *testing.T) {
	snap := NewSnapshot([]domain.LoanRecord{
		{Loan: 42, Name: "Old Name"},
		{Loan: 7, Name: "Other"},
		{Loan: 42, Name: "New Name"},
	}, nil, loadedAt)
	res, err := Locate(snap, "42")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.CustomerName == nil || *res.CustomerName != "New Name" {
		t.Fatalf("expected later record to win, got %v", res.CustomerName)
	}
}

func TestLocateOrderIsExplicitNotSourceOrder(t *testing.T) {
	snap := NewSnapshot(nil, []domain.BoxRange{
		{Start: 150, End: 250, Location: "Box B"},
		{Start: 100, End: 199, Location: "Box A"},
	}, loadedAt)
	res, err := Locate(snap, "170")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Location == nil || *res.Location != "Box A" {
		t.Fatalf("expected sort by start to select Box A, got %v", res.Location)
	}

	tied := NewSnapshot(nil, []domain.BoxRange{
		{Start: 100, End: 300, Location: "Wide"},
		{Start: 100, End: 120, Location: "Narrow"},
	}, loadedAt)
	res, _ = Locate(tied, "110")
	if res.Location == nil || *res.Location != "Wide" {
		t.Fatalf("expected source order on equal start, got %v", res.Location)
	}
}

func TestLocatePartialAndNotFound(t *testing.T) {
	snap := fixtureSnapshot()

	res, err := Locate(snap, "900")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.CustomerName == nil || res.Location != nil || res.Status() != StatusPartial {
		t.Fatalf("expected name only, got %+v", res)
	}

	res, err = Locate(snap, "220")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.CustomerName != nil || res.Location == nil || *res.Location != "Box B" {
		t.Fatalf("expected location only, got %+v", res)
	}

	res, err = Locate(snap, "5")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.CustomerName != nil || res.Location != nil || res.Status() != StatusNotFound {
		t.Fatalf("expected not found, got %+v", res)
	}

	res, _ = Locate(snap, "42")
	if res.CustomerName != nil {
		t.Fatalf("expected blank name to resolve to nil")
	}
}

func TestLocateRangeBoundsInclusive(t *testing.T) {
	snap := fixtureSnapshot()
	for _, input := range []string{"100", "199"} {
		res, _ := Locate(snap, input)
		if res.Location == nil || *res.Location != "Box A" {
			t.Fatalf("input %s: expected Box A", input)
		}
	}
	res, _ := Locate(snap, "250")
	if res.Location == nil || *res.Location != "Box B" {
		t.Fatalf("expected upper bound of Box B to match")
	}
	res, _ = Locate(snap, "251")
	if res.Location != nil {
		t.Fatalf("expected no match past last range")
	}
}

func TestLocateNilSnapshot(t *testing.T) {
	if _, err := Locate(nil, "12"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected not loaded, got %v", err)
	}
	if _, err := Locate(nil, ""); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected input validation before loaded check, got %v", err)
	}
}

func TestSnapshotLastUpdatedAndStats(t *testing.T) {
	snap := fixtureSnapshot()
	if !snap.LastUpdated().Equal(loadedAt) {
		t.Fatalf("expected load time without record timestamps, got %v", snap.LastUpdated())
	}
	stamp := loadedAt.Add(-time.Hour)
	later := NewSnapshot(
		[]domain.LoanRecord{{Loan: 1, Name: "x", UpdatedAt: stamp.Add(-time.Minute)}},
		[]domain.BoxRange{{Start: 1, End: 2, Location: "Box", UpdatedAt: stamp}},
		loadedAt,
	)
	if !later.LastUpdated().Equal(stamp) {
		t.Fatalf("expected newest record timestamp, got %v", later.LastUpdated())
	}
	stats := snap.Stats()
	if stats.Loans != 3 || stats.Ranges != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestSnapshotIsolatedFromCaller(t *testing.T) {
	ranges := []domain.BoxRange{{Start: 1, End: 10, Location: "Box 1"}}
	snap := NewSnapshot(nil, ranges, loadedAt)
	ranges[0].Location = "mutated"
	res, _ := Locate(snap, "5")
	if res.Location == nil || *res.Location != "Box 1" {
		t.Fatalf("expected snapshot copy, got %v", res.Location)
	}
	copied := snap.Ranges()
	copied[0].Location = "again"
	if snap.Ranges()[0].Location != "Box 1" {
		t.Fatalf("expected Ranges to return a copy")
	}
}
