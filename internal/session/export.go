package session

import "time"

// Columns is the header of an exported scan history
var Columns = []string{"Date", "Time", "Operator", "Sensor Serial", "Package Serial", "Match"}

// Layout controls how timestamps are rendered in exports and views
type Layout struct {
	DateFormat string
	TimeFormat string
	Location   *time.Location
}

// DefaultLayout renders dates and times the way a US-English browser does
var DefaultLayout = Layout{
	DateFormat: "1/2/2006",
	TimeFormat: "3:04:05 PM",
	Location:   time.Local,
}

func (l Layout) in(t time.Time) time.Time {
	if l.Location == nil {
		return t
	}
	return t.In(l.Location)
}

// Date formats the calendar date of t
func (l Layout) Date(t time.Time) string {
	return l.in(t).Format(l.DateFormat)
}

// Time formats the time of day of t
func (l Layout) Time(t time.Time) string {
	return l.in(t).Format(l.TimeFormat)
}

// ExportRows renders records as rows matching Columns, in the given order
func ExportRows(records []ScanRecord, layout Layout) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		match := "No"
		if record.Match {
			match = "Yes"
		}
		rows = append(rows, []string{
			layout.Date(record.Timestamp),
			layout.Time(record.Timestamp),
			record.Operator,
			record.SensorSerial,
			record.PackageSerial,
			match,
		})
	}
	return rows
}
