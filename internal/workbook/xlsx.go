package workbook

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the name of the worksheet holding the scan history
	SheetName = "Scan History"

	// ContentType is the MIME type of the files produced by XLSX
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	columnWidth = 18
)

// Writer turns a header and rows into a spreadsheet document
type Writer interface {
	Write(sheet string, header []string, rows [][]string) ([]byte, error)
}

// XLSX writes Office Open XML workbooks
type XLSX struct{}

// NewXLSX creates a new XLSX writer
func NewXLSX() *XLSX {
	return &XLSX{}
}

// Write builds a single-sheet workbook with header in the first row
// followed by rows in the order given
func (x *XLSX) Write(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if len(header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("creating header style: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("styling header: %w", err)
		}

		last, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return nil, fmt.Errorf("resolving last column: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
			return nil, fmt.Errorf("sizing columns: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

// FileName returns the download name for an export made at now
func FileName(now time.Time) string {
	return fmt.Sprintf("scan_history_%s.xlsx", now.UTC().Format("2006-01-02"))
}

// ArchiveName returns the name an export made at now is archived under.
// It carries the UTC time as well so that exports made on the same day
// are kept side by side.
func ArchiveName(now time.Time) string {
	return fmt.Sprintf("scan_history_%s.xlsx", now.UTC().Format("2006-01-02_150405"))
}
