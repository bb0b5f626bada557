package session

// View is a read-only snapshot of a session for display
type View struct {
	Form         Form          `json:"form"`
	Focus        Field         `json:"focus"`
	History      []HistoryRow  `json:"history"` // newest first
	Total        int           `json:"total"`
	SuccessRate  int           `json:"success_rate"`
	LastScanned  string        `json:"last_scanned"`
	LastScanTime string        `json:"last_scan_time"`
	LastMatch    *bool         `json:"last_match,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// HistoryRow is one scan as shown in the history table
type HistoryRow struct {
	ID            string `json:"id"`
	Time          string `json:"time"`
	Operator      string `json:"operator"`
	SensorSerial  string `json:"sensor_serial"`
	PackageSerial string `json:"package_serial"`
	Match         bool   `json:"match"`
}

// View builds a snapshot of the session
func (s *Session) View(layout Layout) View {
	v := View{
		Form:         s.form,
		Focus:        s.focus,
		History:      make([]HistoryRow, 0, len(s.history)),
		Total:        s.Total(),
		SuccessRate:  s.SuccessRate(),
		LastScanned:  "-",
		LastScanTime: "--:--",
	}

	for i := len(s.history) - 1; i >= 0; i-- {
		record := s.history[i]
		v.History = append(v.History, HistoryRow{
			ID:            record.ID,
			Time:          layout.Time(record.Timestamp),
			Operator:      record.Operator,
			SensorSerial:  record.SensorSerial,
			PackageSerial: record.PackageSerial,
			Match:         record.Match,
		})
	}

	if last, ok := s.LastScan(); ok {
		v.LastScanned = last.PackageSerial
		v.LastScanTime = layout.Time(last.Timestamp)
		match := last.Match
		v.LastMatch = &match
	}

	if note, ok := s.notifier.Current(); ok {
		v.Notification = &note
	}

	return v
}
