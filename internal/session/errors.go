package session

import "errors"

// ValidationError reports input that cannot be submitted
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	// ErrMissingOperator is returned when a scan is submitted without an operator name
	ErrMissingOperator = &ValidationError{Reason: "missing operator"}

	// ErrMissingSerial is returned when either serial is empty on submit
	ErrMissingSerial = &ValidationError{Reason: "missing serial"}

	// ErrEmptyExport is returned when export is attempted with no history
	ErrEmptyExport = errors.New("no data to export")
)
