package lookup

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status classifies a result by which of its two lookups matched.
type Status string

const (
	StatusFound    Status = "found"
	StatusPartial  Status = "partial"
	StatusNotFound Status = "not_found"
)

// Result is the outcome of a lookup. A nil field means that lookup missed;
// a miss is a normal outcome, not an error.
type Result struct {
	LoanNumber   int64     `json:"loanNumber"`
	CustomerName *string   `json:"customerName"`
	Location     *string   `json:"location"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Status reports found, partial, or not_found from the nil-ness of the fields.
func (r Result) Status() Status {
	switch {
	case r.CustomerName != nil && r.Location != nil:
		return StatusFound
	case r.CustomerName != nil || r.Location != nil:
		return StatusPartial
	default:
		return StatusNotFound
	}
}

// ParseLoanNumber validates raw search input: trimmed, non-empty, digits only.
func ParseLoanNumber(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrEmptyInput
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] < '0' || trimmed[i] > '9' {
			return 0, ErrNonNumericInput
		}
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNonNumericInput, err)
	}
	return n, nil
}

// Locate resolves input against the snapshot. Range and name resolution run
// independently; the first range in snapshot order containing the number wins.
// Blank stored values resolve to nil.
func Locate(s *Snapshot, input string) (Result, error) {
	loan, err := ParseLoanNumber(input)
	if err != nil {
		return Result{}, err
	}
	if s == nil {
		return Result{}, ErrNotLoaded
	}
	res := Result{LoanNumber: loan, LastUpdated: s.lastUpdated}
	for i := range s.ranges {
		if s.ranges[i].Contains(loan) {
			if location := s.ranges[i].Location; location != "" {
				res.Location = &location
			}
			break
		}
	}
	if name, ok := s.names[loan]; ok && name != "" {
		res.CustomerName = &name
	}
	return res, nil
}
