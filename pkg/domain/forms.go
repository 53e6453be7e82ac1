package domain

import (
	"strconv"
	"strings"
)

// LoanForm carries raw admin input for a loan record.
type LoanForm struct {
	Loan string `json:"loan"`
	Name string `json:"name"`
}

// RangeForm carries raw admin input for a box range.
type RangeForm struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
}

// Parse validates the form and returns the loan record it describes.
func (f LoanForm) Parse() (LoanRecord, error) {
	loanRaw := strings.TrimSpace(f.Loan)
	name := strings.TrimSpace(f.Name)
	if loanRaw == "" {
		return LoanRecord{}, &FieldError{Field: "loan", Err: ErrMissingField}
	}
	if name == "" {
		return LoanRecord{}, &FieldError{Field: "name", Err: ErrMissingField}
	}
	loan, err := parseNumber("loan", loanRaw)
	if err != nil {
		return LoanRecord{}, err
	}
	return LoanRecord{Loan: loan, Name: name}, nil
}

// Parse validates the form and returns the range it describes.
func (f RangeForm) Parse() (BoxRange, error) {
	startRaw := strings.TrimSpace(f.Start)
	endRaw := strings.TrimSpace(f.End)
	location := strings.TrimSpace(f.Location)
	switch {
	case startRaw == "":
		return BoxRange{}, &FieldError{Field: "start", Err: ErrMissingField}
	case endRaw == "":
		return BoxRange{}, &FieldError{Field: "end", Err: ErrMissingField}
	case location == "":
		return BoxRange{}, &FieldError{Field: "location", Err: ErrMissingField}
	}
	start, err := parseNumber("start", startRaw)
	if err != nil {
		return BoxRange{}, err
	}
	end, err := parseNumber("end", endRaw)
	if err != nil {
		return BoxRange{}, err
	}
	r := BoxRange{Start: start, End: end, Location: location}
	if err := r.Validate(); err != nil {
		return BoxRange{}, err
	}
	return r, nil
}

// ParseRangeID splits a "<start>-<end>" key.
func ParseRangeID(id string) (start, end int64, err error) {
	startRaw, endRaw, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, &FieldError{Field: "id", Err: ErrNonNumericField}
	}
	if start, err = parseNumber("start", startRaw); err != nil {
		return 0, 0, err
	}
	if end, err = parseNumber("end", endRaw); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseNumber(field, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, &FieldError{Field: field, Err: ErrNonNumericField}
	}
	return n, nil
}
