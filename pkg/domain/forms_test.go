package domain

import (
	"errors"
	"testing"
)

func TestLoanFormParse(t *testing.T) {
	cases := []struct {
		name    string
		form    LoanForm
		want    LoanRecord
		wantErr error
		field   string
	}{
		{name: "valid", form: LoanForm{Loan: " 76152020 ", Name: " Perera "}, want: LoanRecord{Loan: 76152020, Name: "Perera"}},
		{name: "missing loan", form: LoanForm{Name: "x"}, wantErr: ErrMissingField, field: "loan"},
		{name: "missing name", form: LoanForm{Loan: "1", Name: "  "}, wantErr: ErrMissingField, field: "name"},
		{name: "non numeric", form: LoanForm{Loan: "12a", Name: "x"}, wantErr: ErrNonNumericField, field: "loan"},
		{name: "negative", form: LoanForm{Loan: "-4", Name: "x"}, wantErr: ErrNonNumericField, field: "loan"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.form.Parse()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				var fe *FieldError
				if !errors.As(err, &fe) || fe.Field != tc.field {
					t.Fatalf("expected field error on %s, got %v", tc.field, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRangeFormParse(t *testing.T) {
	r, err := RangeForm{Start: "100", End: "199", Location: "Box A"}.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ID() != "100-199" || r.Location != "Box A" {
		t.Fatalf("unexpected range %+v", r)
	}
	if _, err := (RangeForm{Start: "200", End: "100", Location: "Box"}).Parse(); !errors.Is(err, ErrMalformedRange) {
		t.Fatalf("expected malformed range, got %v", err)
	}
	if _, err := (RangeForm{Start: "1", End: "x", Location: "Box"}).Parse(); !errors.Is(err, ErrNonNumericField) {
		t.Fatalf("expected non numeric, got %v", err)
	}
	if _, err := (RangeForm{Start: "1", End: "2"}).Parse(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing location, got %v", err)
	}
	single, err := RangeForm{Start: "5", End: "5", Location: "Box"}.Parse()
	if err != nil || !single.Contains(5) || single.Contains(6) {
		t.Fatalf("expected single-number range to contain only 5: %+v %v", single, err)
	}
}

func TestParseRangeID(t *testing.T) {
	start, end, err := ParseRangeID("100-199")
	if err != nil || start != 100 || end != 199 {
		t.Fatalf("unexpected parse: %d %d %v", start, end, err)
	}
	for _, bad := range []string{"", "100", "a-2", "1-b"} {
		if _, _, err := ParseRangeID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSortRangesKeepsInputOrderForTies(t *testing.T) {
	ranges := []BoxRange{
		{Start: 300, End: 400, Location: "C"},
		{Start: 100, End: 250, Location: "B"},
		{Start: 100, End: 199, Location: "A"},
	}
	SortRanges(ranges)
	got := []string{ranges[0].Location, ranges[1].Location, ranges[2].Location}
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	err := Duplicate(EntityLoan, "42")
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key")
	}
	if err.Error() != "loans 42: key already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(NotFound(EntityRange, "1-2"), ErrNotFound) {
		t.Fatalf("expected not found")
	}
	if kind, ok := ParseEntityType("ranges"); !ok || kind != EntityRange {
		t.Fatalf("expected ranges entity")
	}
	if _, ok := ParseEntityType("metadata"); ok {
		t.Fatalf("metadata is not an admin collection")
	}
}
