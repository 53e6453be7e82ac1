package mongo

import (
	"context"
	"errors"
	"loanlocator/internal/infra/persistence/memory"
	"loanlocator/pkg/domain"
	"testing"
)

func TestChunkSplitsInserts(t *testing.T) {
	docs := make([]any, 1201)
	batches := chunk(docs, insertChunkSize)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 500 || len(batches[1]) != 500 || len(batches[2]) != 201 {
		t.Fatalf("unexpected batch sizes %d %d %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if got := chunk(nil, insertChunkSize); len(got) != 0 {
		t.Fatalf("expected no batches for empty input")
	}
	if got := chunk(make([]any, 3), 0); len(got) != 1 {
		t.Fatalf("expected default chunk size for invalid size")
	}
}

func TestDocumentKeys(t *testing.T) {
	l := toLoanDocument(domain.LoanRecord{Loan: 76152020, Name: "Perera"})
	if l.ID != "76152020" || l.record().Name != "Perera" {
		t.Fatalf("unexpected loan document %+v", l)
	}
	r := toRangeDocument(domain.BoxRange{Start: 100, End: 199, Location: "Box A"})
	if r.ID != "100-199" || r.record().Location != "Box A" {
		t.Fatalf("unexpected range document %+v", r)
	}
}

func TestRecordingTxCapturesWritesInOrder(t *testing.T) {
	view := memory.NewStore()
	view.ImportState(memory.Snapshot{Loans: []domain.LoanRecord{{Loan: 1, Name: "a"}}})
	var rec recorder
	err := view.RunInTransaction(context.Background(), func(base domain.Transaction) error {
		tx := &recordingTx{Transaction: base, rec: &rec}
		if err := tx.DeleteLoan(99); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if err := tx.PutLoan(domain.LoanRecord{Loan: 2, Name: "b"}); err != nil {
			return err
		}
		if err := tx.DeleteLoan(1); err != nil {
			return err
		}
		if err := tx.ReplaceRanges([]domain.BoxRange{{Start: 1, End: 5, Location: "x"}, {Start: 1, End: 5, Location: "y"}}); err != nil {
			return err
		}
		_, err := tx.ClearLoans()
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	kinds := []writeKind{writePut, writeDelete, writeReplace, writeClear}
	if len(rec.writes) != len(kinds) {
		t.Fatalf("expected %d writes, got %+v", len(kinds), rec.writes)
	}
	for i, k := range kinds {
		if rec.writes[i].kind != k {
			t.Fatalf("write %d: expected kind %d, got %d", i, k, rec.writes[i].kind)
		}
	}
	if rec.writes[1].key != "1" {
		t.Fatalf("expected delete of key 1, got %q", rec.writes[1].key)
	}
	replaced := rec.writes[2].docs
	if len(replaced) != 1 || replaced[0].(rangeDocument).Location != "y" {
		t.Fatalf("expected deduplicated ranges with later record winning, got %+v", replaced)
	}
}
