// Package export reads and writes appointment datasets: the semicolon CSV
// consumed by the automation layer, the JSON inspection format and an XLSX
// workbook.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

const (
	csvSeparator  = ';'
	listSeparator = "-"
)

// WriteCSV writes records as patient blocks:
//
//	PatientID;proc1-proc2-proc3-proc4;
//	HH:MM;staff1-staff2-staff3;DD-MM-YY
//
// Blocks follow the first appearance of each patient. Staff are the short
// keys by position: the first junior procedure, the senior procedure, then
// the second junior procedure (position 1 again when there is none).
func WriteCSV(w io.Writer, records []domain.AppointmentRecord, roster *staffing.Roster) error {
	var order []string
	byPatient := make(map[string][]domain.AppointmentRecord)
	for _, rec := range records {
		if _, seen := byPatient[rec.PatientID]; !seen {
			order = append(order, rec.PatientID)
		}
		byPatient[rec.PatientID] = append(byPatient[rec.PatientID], rec)
	}

	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator
	for _, id := range order {
		recs := byPatient[id]
		if len(recs[0].Procedures) == 0 {
			continue
		}
		procs := make([]string, len(recs[0].Procedures))
		for i, p := range recs[0].Procedures {
			procs[i] = p.Procedure
		}
		if err := cw.Write([]string{id, strings.Join(procs, listSeparator), ""}); err != nil {
			return fmt.Errorf("write patient %s: %w", id, err)
		}

		for _, rec := range recs {
			if len(rec.Procedures) == 0 {
				continue
			}
			staff, err := lineupKeys(rec, roster)
			if err != nil {
				return err
			}
			row := []string{
				domain.ClockOf(rec.Procedures[0].Start).String(),
				strings.Join(staff, listSeparator),
				rec.Date.Format(domain.ShortDateLayout),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write appointment %s: %w", rec.Label(), err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func lineupKeys(rec domain.AppointmentRecord, roster *staffing.Roster) (domain.Lineup, error) {
	procs := make([]domain.ProcedureAssignment, len(rec.Procedures))
	copy(procs, rec.Procedures)
	for i, p := range procs {
		if p.StaffKey != "" || p.Staff == "" {
			continue
		}
		key, ok := roster.KeyForName(p.Staff)
		if !ok {
			return nil, fmt.Errorf("%w: %s: staff %q is not in the roster", domain.ErrConfiguration, rec.Label(), p.Staff)
		}
		procs[i].StaffKey = key
	}
	rec.Procedures = procs
	return domain.LineupOf(rec), nil
}

// ReadCSV parses a CSV dataset back into records with the scheduling
// context's catalog, roster and doctors. A row with an empty last field opens
// a patient block; the rows after it are that patient's appointments. The
// earliest appointment of each patient, across blocks, is its first visit.
func ReadCSV(r io.Reader, sc *domain.SchedulingContext) ([]domain.AppointmentRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = csvSeparator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		records []domain.AppointmentRecord
		patient string
		procs   []string
		inBlock bool
		lineNo  int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("%w: csv line %d: %v", domain.ErrConfiguration, lineNo, err)
		}
		if blankRow(row) {
			continue
		}

		last := strings.TrimSpace(row[len(row)-1])
		if last == "" || len(row) < 3 {
			patient = strings.TrimSpace(row[0])
			if patient == "" || len(row) < 2 {
				return nil, fmt.Errorf("%w: csv line %d: patient line needs an id and procedures", domain.ErrConfiguration, lineNo)
			}
			procs, err = splitProcedures(sc.Catalog(), row[1])
			if err != nil {
				return nil, fmt.Errorf("csv line %d: patient %s: %w", lineNo, patient, err)
			}
			inBlock = true
			continue
		}

		if !inBlock {
			return nil, fmt.Errorf("%w: csv line %d: appointment before any patient line", domain.ErrConfiguration, lineNo)
		}
		rec, err := parseAppointment(sc, patient, procs, row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	domain.MarkFirsts(records)
	return records, nil
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func splitProcedures(catalog *domain.Catalog, field string) ([]string, error) {
	procs, err := catalog.NormalizeProcedures(strings.Split(field, listSeparator))
	if err != nil {
		return nil, fmt.Errorf("%w (check the '-' separators)", err)
	}
	return procs, nil
}

func parseAppointment(sc *domain.SchedulingContext, patient string, procs []string, row []string) (domain.AppointmentRecord, error) {
	date, err := domain.ParseDate(row[len(row)-1])
	if err != nil {
		return domain.AppointmentRecord{}, fmt.Errorf("patient %s: %w", patient, err)
	}
	start, err := domain.ParseClock(row[0])
	if err != nil {
		return domain.AppointmentRecord{}, fmt.Errorf("patient %s: %w", patient, err)
	}

	var lineup domain.Lineup
	for _, name := range strings.Split(row[1], listSeparator) {
		key := staffing.NormalizeKey(name)
		if key == "" {
			lineup = append(lineup, "")
			continue
		}
		if _, ok := sc.Roster().GroupOf(key); !ok {
			return domain.AppointmentRecord{}, fmt.Errorf("%w: patient %s: unknown staff %q (check the '-' separators)",
				domain.ErrConfiguration, patient, strings.TrimSpace(name))
		}
		lineup = append(lineup, key)
	}
	return sc.BuildAppointment(patient, date, start, procs, lineup)
}
