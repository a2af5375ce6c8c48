package domain

import "time"

// Routing keys of the scheduling events.
const (
	RoutingKeyScheduleGenerated  = "schedule.generated"
	RoutingKeyScheduleValidated  = "schedule.validated"
	RoutingKeyManualEntryAdded   = "manual_entry.added"
	RoutingKeyManualEntryRemoved = "manual_entry.removed"
)

const eventDateLayout = "2006-01-02"

// ScheduleGenerated is raised when a run produced a validated dataset.
type ScheduleGenerated struct {
	RunID     string   `json:"run_id"`
	Patients  []string `json:"patients"`
	Records   int      `json:"records"`
	FirstDate string   `json:"first_date,omitempty"`
	LastDate  string   `json:"last_date,omitempty"`
}

// NewScheduleGenerated summarizes records. Patients are listed once, in
// order of first appearance.
func NewScheduleGenerated(runID string, records []AppointmentRecord) ScheduleGenerated {
	e := ScheduleGenerated{RunID: runID, Records: len(records), Patients: []string{}}
	seen := make(map[string]bool)
	var first, last time.Time
	for _, r := range records {
		if !seen[r.PatientID] {
			seen[r.PatientID] = true
			e.Patients = append(e.Patients, r.PatientID)
		}
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	if !first.IsZero() {
		e.FirstDate = first.Format(eventDateLayout)
		e.LastDate = last.Format(eventDateLayout)
	}
	return e
}

// ScheduleValidated is raised after a standalone validation.
type ScheduleValidated struct {
	Records   int  `json:"records"`
	Conflicts int  `json:"conflicts"`
	Valid     bool `json:"valid"`
}

// ManualEntryAdded carries a stored manual entry.
type ManualEntryAdded struct {
	ID         int64    `json:"id"`
	PatientID  string   `json:"patient_id"`
	Procedures []string `json:"procedures"`
	Staff      []string `json:"staff"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
}

// NewManualEntryAdded builds the event for e.
func NewManualEntryAdded(e ManualEntry) ManualEntryAdded {
	return ManualEntryAdded{
		ID:         e.ID,
		PatientID:  e.PatientID,
		Procedures: e.Procedures,
		Staff:      []string(e.Staff),
		Date:       e.Date.Format(eventDateLayout),
		Time:       e.Time.String(),
	}
}

// ManualEntryRemoved carries the id of a deleted manual entry.
type ManualEntryRemoved struct {
	ID int64 `json:"id"`
}
