package lookup

import "errors"

// Lookup path errors. EmptyInput and NonNumericInput are recoverable by
// re-prompting; SourceUnavailable and NotLoaded surface as a blocking error
// state with a manual reload.
var (
	ErrEmptyInput        = errors.New("loan number is required")
	ErrNonNumericInput   = errors.New("loan number must contain only digits")
	ErrSourceUnavailable = errors.New("reference data source unavailable")
	ErrNotLoaded         = errors.New("reference data not loaded")
)
