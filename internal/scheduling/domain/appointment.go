package domain

import (
	"sort"
	"time"
)

// ProcedureAssignment is one procedure of an appointment with its times and staff.
type ProcedureAssignment struct {
	Procedure string
	Role      RoleClass
	Doctor    string // diagnosing doctor for the weekday
	Diagnosis time.Time
	Start     time.Time
	End       time.Time
	Staff     string // full name of the performing staff member
	StaffKey  string
}

// AppointmentRecord is one patient visit made of four procedures.
type AppointmentRecord struct {
	PatientID  string
	Date       time.Time
	Procedures []ProcedureAssignment
	IsFirst    bool
}

// FirstStart is the start of the first procedure, or the date for an empty record.
func (r AppointmentRecord) FirstStart() time.Time {
	if len(r.Procedures) == 0 {
		return r.Date
	}
	return r.Procedures[0].Start
}

// Label identifies a record in conflict messages.
func (r AppointmentRecord) Label() string {
	return r.PatientID + " " + r.Date.Format(DateLayout)
}

// SortRecords orders records by first procedure start, keeping generation order
// for ties, then marks the earliest record of each patient as first.
func SortRecords(records []AppointmentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FirstStart().Before(records[j].FirstStart())
	})
	MarkFirsts(records)
}

// MarkFirsts flags the record with the earliest first start of each patient,
// the earlier one in slice order on ties, and clears the flag on the others.
// The slice order is left as is.
func MarkFirsts(records []AppointmentRecord) {
	first := make(map[string]int, len(records))
	for i := range records {
		j, seen := first[records[i].PatientID]
		if !seen || records[i].FirstStart().Before(records[j].FirstStart()) {
			first[records[i].PatientID] = i
		}
	}
	for i := range records {
		records[i].IsFirst = first[records[i].PatientID] == i
	}
}
