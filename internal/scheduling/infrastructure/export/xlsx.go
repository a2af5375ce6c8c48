package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

const sheetName = "Schedule"

// WorkbookHeader lists the XLSX columns.
var WorkbookHeader = []string{
	"Patient ID",
	"First Visit",
	"Date",
	"Procedure",
	"Doctor",
	"Diagnosis",
	"Start",
	"End",
	"Staff",
}

var columnWidths = []float64{14, 11, 12, 12, 24, 18, 18, 18, 24}

// WriteXLSX writes one row per procedure to a single-sheet workbook.
func WriteXLSX(w io.Writer, records []domain.AppointmentRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &WorkbookHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(WorkbookHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	row := 2
	for _, rec := range records {
		for _, p := range rec.Procedures {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{
				rec.PatientID,
				rec.IsFirst,
				rec.Date.Format(domain.DateLayout),
				p.Procedure,
				p.Doctor,
				p.Diagnosis.Format("02-01-2006 15:04"),
				p.Start.Format("02-01-2006 15:04"),
				p.End.Format("02-01-2006 15:04"),
				p.Staff,
			}
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
