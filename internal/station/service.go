package station

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zombor/scan-station/internal/session"
	"github.com/zombor/scan-station/internal/workbook"
)

// ErrArchiveDisabled is returned when archived exports are requested but no
// export directory is configured
var ErrArchiveDisabled = errors.New("export archive is not configured")

// Export is a workbook ready to be downloaded
type Export struct {
	Filename    string
	ArchiveName string
	ContentType string
	Data        []byte
	Records     int
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service serializes access to a scan session and produces its exports
type Service struct {
	mu         sync.Mutex
	session    *session.Session
	writer     workbook.Writer
	archive    workbook.Storage
	layout     session.Layout
	timeSource session.TimeSource
}

// NewService creates a new Service. archive may be nil to disable
// archiving of exports.
func NewService(sess *session.Session, writer workbook.Writer, archive workbook.Storage, layout session.Layout) *Service {
	return NewServiceWithDeps(sess, writer, archive, layout, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with a custom time source for testing
func NewServiceWithDeps(sess *session.Session, writer workbook.Writer, archive workbook.Storage, layout session.Layout, timeSrc session.TimeSource) *Service {
	return &Service{
		session:    sess,
		writer:     writer,
		archive:    archive,
		layout:     layout,
		timeSource: timeSrc,
	}
}

// View returns a snapshot of the session
func (s *Service) View() session.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.View(s.layout)
}

// UpdateForm replaces the pending input
func (s *Service) UpdateForm(form session.Form) session.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetForm(form)
	return s.session.View(s.layout)
}

// Enter applies form, if given, and confirms field as the keyboard would
func (s *Service) Enter(field session.Field, form *session.Form) (*session.ScanRecord, session.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if form != nil {
		s.session.SetForm(*form)
	}
	record, err := s.session.Enter(field)
	if record != nil {
		logScan(*record)
	}
	return record, s.session.View(s.layout), err
}

// Submit applies form, if given, and verifies the pending serials
func (s *Service) Submit(form *session.Form) (*session.ScanRecord, session.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if form != nil {
		s.session.SetForm(*form)
	}
	record, err := s.session.Submit()
	if err != nil {
		return nil, s.session.View(s.layout), err
	}
	logScan(record)
	return &record, s.session.View(s.layout), nil
}

func logScan(record session.ScanRecord) {
	slog.Info("Scan verified",
		"id", record.ID,
		"operator", record.Operator,
		"sensor_serial", record.SensorSerial,
		"package_serial", record.PackageSerial,
		"match", record.Match,
	)
}

// Export writes the history to a workbook once confirm agrees. It returns
// a nil Export without error when confirmation was declined.
func (s *Service) Export(confirm session.Confirmer) (*Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var export *Export
	_, err := s.session.Export(confirm, func(records []session.ScanRecord) error {
		rows := session.ExportRows(records, s.layout)
		data, err := s.writer.Write(workbook.SheetName, session.Columns, rows)
		if err != nil {
			return fmt.Errorf("building workbook: %w", err)
		}

		now := s.timeSource.Now()
		export = &Export{
			Filename:    workbook.FileName(now),
			ContentType: workbook.ContentType,
			Data:        data,
			Records:     len(records),
		}

		if s.archive != nil {
			name, err := s.archive.Save(workbook.ArchiveName(now), data)
			if err != nil {
				// The download still goes ahead
				slog.Warn("Failed to archive export", "filename", export.Filename, "error", err)
			} else {
				export.ArchiveName = name
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if export != nil {
		slog.Info("Exported scan history", "filename", export.Filename, "records", export.Records)
	}
	return export, nil
}

// ArchivedExport returns a previously archived export
func (s *Service) ArchivedExport(filename string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	data, err := s.archive.Get(filename)
	if err != nil {
		return nil, fmt.Errorf("getting archived export: %w", err)
	}
	return data, nil
}

// Reset starts a new session once confirm agrees
func (s *Service) Reset(confirm session.Confirmer) (bool, session.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.session.Total()
	reset := s.session.Reset(confirm)
	if reset {
		slog.Info("Scan session reset", "discarded_records", total)
	}
	return reset, s.session.View(s.layout)
}

// DismissNotification clears the notification with the given ID if it is
// still the one being shown
func (s *Service) DismissNotification(id uint64) bool {
	return s.session.Notifier().Dismiss(id)
}
