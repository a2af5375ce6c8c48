package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrManualEntryNotFound = errors.New("manual entry not found")

// ManualEntry is an appointment typed in by an operator instead of generated.
type ManualEntry struct {
	ID         int64
	PatientID  string
	Procedures []string
	Staff      Lineup
	Date       time.Time
	Time       Clock
	Notes      string
	CreatedAt  time.Time
}

// NewManualEntry validates an operator entry against the scheduling context.
func NewManualEntry(sc *SchedulingContext, patientID string, procs []string, staff Lineup, date time.Time, at Clock, notes string) (ManualEntry, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return ManualEntry{}, fmt.Errorf("%w: patient id is required", ErrConfiguration)
	}
	procs, err := sc.Catalog().NormalizeProcedures(procs)
	if err != nil {
		return ManualEntry{}, err
	}
	e := ManualEntry{
		PatientID:  patientID,
		Procedures: procs,
		Staff:      staff,
		Date:       truncateDay(date),
		Time:       at,
		Notes:      strings.TrimSpace(notes),
	}
	if _, err := e.Record(sc); err != nil {
		return ManualEntry{}, err
	}
	return e, nil
}

// Record expands the entry into an appointment record.
func (e ManualEntry) Record(sc *SchedulingContext) (AppointmentRecord, error) {
	rec, err := sc.BuildAppointment(e.PatientID, e.Date, e.Time, e.Procedures, e.Staff)
	if err != nil {
		return AppointmentRecord{}, err
	}
	rec.IsFirst = true
	return rec, nil
}

// ManualEntryRepository persists operator entries.
type ManualEntryRepository interface {
	Save(ctx context.Context, entry ManualEntry) (int64, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]ManualEntry, error)
}
