package session

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	exportPrompt = "Are you sure you want to export the current scan history?"
	resetPrompt  = "Are you sure you want to start new scanning? This will clear all current records."
)

// IDGenerator generates unique IDs for scan records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Confirmer asks the operator a yes/no question before a destructive or
// outward-facing action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt)
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Session is the state of one scanning session: the form being filled in,
// the history of completed scans and the notification shown to the operator.
// It is not safe for concurrent use.
type Session struct {
	form     Form
	history  []ScanRecord
	focus    Field
	notifier *Notifier

	idGenerator IDGenerator
	timeSource  TimeSource
}

// New creates an empty Session with UUID record IDs and the system clock
func New(notifier *Notifier) *Session {
	return NewWithDeps(notifier, &uuidGenerator{}, &defaultTimeSource{})
}

// NewWithDeps creates an empty Session with custom dependencies for testing
func NewWithDeps(notifier *Notifier, idGen IDGenerator, timeSrc TimeSource) *Session {
	return &Session{
		history:     []ScanRecord{},
		focus:       FieldOperator,
		notifier:    notifier,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Form returns the current input
func (s *Session) Form() Form {
	return s.form
}

// SetForm replaces all input fields
func (s *Session) SetForm(form Form) {
	s.form = form
}

func (s *Session) SetOperator(operator string) {
	s.form.Operator = operator
}

func (s *Session) SetSensorSerial(serial string) {
	s.form.SensorSerial = serial
}

func (s *Session) SetPackageSerial(serial string) {
	s.form.PackageSerial = serial
}

// Focus returns the input field the operator should type into next
func (s *Session) Focus() Field {
	return s.focus
}

// Notifier returns the session's notifier
func (s *Session) Notifier() *Notifier {
	return s.notifier
}

// Enter handles the operator confirming a field with the keyboard. The
// operator and sensor serial fields move focus forward, the package serial
// field submits the scan.
func (s *Session) Enter(field Field) (*ScanRecord, error) {
	switch field {
	case FieldOperator:
		s.focus = FieldSensorSerial
	case FieldSensorSerial:
		s.focus = FieldPackageSerial
	case FieldPackageSerial:
		record, err := s.Submit()
		if err != nil {
			return nil, err
		}
		return &record, nil
	default:
		return nil, fmt.Errorf("unknown field: %q", field)
	}
	return nil, nil
}

// Submit compares the pending serials and appends the result to the history.
// On a validation error nothing but the notification changes.
func (s *Session) Submit() (ScanRecord, error) {
	if s.form.Operator == "" {
		s.notifier.Show("Please enter operator name", KindError)
		return ScanRecord{}, ErrMissingOperator
	}
	if s.form.SensorSerial == "" || s.form.PackageSerial == "" {
		s.notifier.Show("Please scan both serials", KindError)
		return ScanRecord{}, ErrMissingSerial
	}

	record := ScanRecord{
		ID:            s.idGenerator.Generate(),
		Operator:      s.form.Operator,
		SensorSerial:  s.form.SensorSerial,
		PackageSerial: s.form.PackageSerial,
		Timestamp:     s.timeSource.Now(),
		Match:         Match(s.form.SensorSerial, s.form.PackageSerial),
	}
	s.history = append(s.history, record)

	if record.Match {
		s.notifier.Show("Serials match!", KindInfo)
	} else {
		s.notifier.Show("Serials do not match!", KindError)
	}

	s.form.SensorSerial = ""
	s.form.PackageSerial = ""
	s.focus = FieldSensorSerial

	return record, nil
}

// Export hands a copy of the history, oldest first, to write once the
// operator confirms. It reports false without error when the operator
// declines. Export never changes the history or the form.
func (s *Session) Export(confirm Confirmer, write func([]ScanRecord) error) (bool, error) {
	if len(s.history) == 0 {
		s.notifier.Show("No data to export", KindError)
		return false, ErrEmptyExport
	}

	if !confirm.Confirm(exportPrompt) {
		return false, nil
	}

	if err := write(s.History()); err != nil {
		s.notifier.Show("Export failed", KindError)
		return false, fmt.Errorf("writing export: %w", err)
	}

	s.notifier.Show("Export successful!", KindInfo)
	return true, nil
}

// Reset starts a new session, clearing the history and every input field.
// A non-empty history requires confirmation. It reports whether the
// session was reset.
func (s *Session) Reset(confirm Confirmer) bool {
	if len(s.history) > 0 && !confirm.Confirm(resetPrompt) {
		return false
	}

	s.history = []ScanRecord{}
	s.form = Form{}
	s.focus = FieldOperator
	s.notifier.Show("Started new scanning session", KindInfo)
	return true
}

// History returns a copy of the completed scans in the order they were made
func (s *Session) History() []ScanRecord {
	history := make([]ScanRecord, len(s.history))
	copy(history, s.history)
	return history
}

// Total returns the number of completed scans
func (s *Session) Total() int {
	return len(s.history)
}

// SuccessRate returns the percentage of matching scans rounded to the
// nearest integer, or 0 when there are none
func (s *Session) SuccessRate() int {
	if len(s.history) == 0 {
		return 0
	}
	matches := 0
	for _, record := range s.history {
		if record.Match {
			matches++
		}
	}
	return int(math.Round(float64(matches) / float64(len(s.history)) * 100))
}

// LastScan returns the most recent scan
func (s *Session) LastScan() (ScanRecord, bool) {
	if len(s.history) == 0 {
		return ScanRecord{}, false
	}
	return s.history[len(s.history)-1], true
}
