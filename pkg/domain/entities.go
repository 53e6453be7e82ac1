// Package domain defines the reference records stored by the loan file
// locator, their validation rules, and the persistence contracts every
// storage driver satisfies.
package domain

import (
	"fmt"
	"sort"
	"time"
)

// EntityType identifies one of the reference collections.
type EntityType string

// Supported entity type identifiers used as collection and bucket names.
const (
	// EntityLoan identifies the loan number → customer name collection.
	EntityLoan EntityType = "loans"
	// EntityRange identifies the loan number range → box location collection.
	EntityRange EntityType = "ranges"
	// EntityMetadata identifies the auxiliary collection used for connectivity probing.
	EntityMetadata EntityType = "metadata"
)

// ParseEntityType maps a collection name to its EntityType.
func ParseEntityType(raw string) (EntityType, bool) {
	switch EntityType(raw) {
	case EntityLoan:
		return EntityLoan, true
	case EntityRange:
		return EntityRange, true
	default:
		return "", false
	}
}

// LoanRecord associates a loan number with a customer name.
type LoanRecord struct {
	Loan      int64     `json:"loan" bson:"loan"`
	Name      string    `json:"name" bson:"name"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" bson:"updatedAt,omitempty"`
}

// ID returns the document key used for the record in keyed stores.
func (l LoanRecord) ID() string { return LoanID(l.Loan) }

// LoanID formats a loan number as a document key.
func LoanID(loan int64) string { return fmt.Sprintf("%d", loan) }

// BoxRange maps an inclusive interval of loan numbers to a storage box.
type BoxRange struct {
	Start     int64     `json:"start" bson:"start"`
	End       int64     `json:"end" bson:"end"`
	Location  string    `json:"location" bson:"location"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" bson:"updatedAt,omitempty"`
}

// ID returns the composite "<start>-<end>" key of the range.
func (r BoxRange) ID() string { return RangeID(r.Start, r.End) }

// Contains reports whether loan falls within the inclusive interval.
func (r BoxRange) Contains(loan int64) bool { return r.Start <= loan && loan <= r.End }

// RangeID formats a composite range key.
func RangeID(start, end int64) string { return fmt.Sprintf("%d-%d", start, end) }

// Validate enforces start <= end. Only applied on writes; stored data is read as-is.
func (r BoxRange) Validate() error {
	if r.Start > r.End {
		return &FieldError{Field: "start", Err: ErrMalformedRange}
	}
	return nil
}

// SortLoans orders loan records by loan number ascending.
func SortLoans(loans []LoanRecord) {
	sort.SliceStable(loans, func(i, j int) bool { return loans[i].Loan < loans[j].Loan })
}

// SortRanges orders ranges by start then end ascending, keeping input order for ties.
func SortRanges(ranges []BoxRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})
}

// StripLoanTimestamps returns copies of loans without UpdatedAt, as written by exports.
func StripLoanTimestamps(loans []LoanRecord) []LoanRecord {
	out := make([]LoanRecord, len(loans))
	for i, l := range loans {
		l.UpdatedAt = time.Time{}
		out[i] = l
	}
	return out
}

// StripRangeTimestamps returns copies of ranges without UpdatedAt.
func StripRangeTimestamps(ranges []BoxRange) []BoxRange {
	out := make([]BoxRange, len(ranges))
	for i, r := range ranges {
		r.UpdatedAt = time.Time{}
		out[i] = r
	}
	return out
}
