package mongo

import "loanlocator/pkg/domain"

type writeKind int

const (
	writePut writeKind = iota
	writeDelete
	writeClear
	writeReplace
)

type write struct {
	kind   writeKind
	entity domain.EntityType
	key    string
	doc    any
	docs   []any
}

type recorder struct {
	writes []write
}

func (r *recorder) add(w write) { r.writes = append(r.writes, w) }

// recordingTx forwards to the in-memory view and remembers every successful
// write so it can be replayed against the collections.
type recordingTx struct {
	domain.Transaction
	rec *recorder
}

func (tx *recordingTx) PutLoan(l domain.LoanRecord) error {
	if err := tx.Transaction.PutLoan(l); err != nil {
		return err
	}
	tx.rec.add(write{kind: writePut, entity: domain.EntityLoan, key: l.ID(), doc: toLoanDocument(l)})
	return nil
}

func (tx *recordingTx) DeleteLoan(loan int64) error {
	if err := tx.Transaction.DeleteLoan(loan); err != nil {
		return err
	}
	tx.rec.add(write{kind: writeDelete, entity: domain.EntityLoan, key: domain.LoanID(loan)})
	return nil
}

func (tx *recordingTx) ReplaceLoans(loans []domain.LoanRecord) error {
	if err := tx.Transaction.ReplaceLoans(loans); err != nil {
		return err
	}
	// Later records win for duplicate keys, matching the in-memory view.
	current := tx.Transaction.Loans()
	docs := make([]any, len(current))
	for i, l := range current {
		docs[i] = toLoanDocument(l)
	}
	tx.rec.add(write{kind: writeReplace, entity: domain.EntityLoan, docs: docs})
	return nil
}

func (tx *recordingTx) ClearLoans() (int, error) {
	n, err := tx.Transaction.ClearLoans()
	if err != nil {
		return 0, err
	}
	tx.rec.add(write{kind: writeClear, entity: domain.EntityLoan})
	return n, nil
}

func (tx *recordingTx) PutRange(r domain.BoxRange) error {
	if err := tx.Transaction.PutRange(r); err != nil {
		return err
	}
	tx.rec.add(write{kind: writePut, entity: domain.EntityRange, key: r.ID(), doc: toRangeDocument(r)})
	return nil
}

func (tx *recordingTx) DeleteRange(id string) error {
	if err := tx.Transaction.DeleteRange(id); err != nil {
		return err
	}
	tx.rec.add(write{kind: writeDelete, entity: domain.EntityRange, key: id})
	return nil
}

func (tx *recordingTx) ReplaceRanges(ranges []domain.BoxRange) error {
	if err := tx.Transaction.ReplaceRanges(ranges); err != nil {
		return err
	}
	current := tx.Transaction.Ranges()
	docs := make([]any, len(current))
	for i, r := range current {
		docs[i] = toRangeDocument(r)
	}
	tx.rec.add(write{kind: writeReplace, entity: domain.EntityRange, docs: docs})
	return nil
}

func (tx *recordingTx) ClearRanges() (int, error) {
	n, err := tx.Transaction.ClearRanges()
	if err != nil {
		return 0, err
	}
	tx.rec.add(write{kind: writeClear, entity: domain.EntityRange})
	return n, nil
}
