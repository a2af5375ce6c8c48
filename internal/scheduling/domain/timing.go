package domain

import (
	"fmt"
	"time"

	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

const (
	// DiagnosisLead is how long before the first procedure the diagnosis is stamped.
	DiagnosisLead = 5 * time.Minute
	// ProcedureGap separates the end of one procedure from the start of the next.
	ProcedureGap = 2 * time.Minute
)

// snapWindow moves diagnosis stamps that fall strictly inside (after, to) up to to.
type snapWindow struct {
	after Clock
	to    Clock
}

var diagnosisSnaps = []snapWindow{
	{after: NewClock(6, 0), to: NewClock(7, 0)},
	{after: NewClock(12, 0), to: NewClock(13, 30)},
}

// DiagnosisTime returns the diagnosis stamp for a first procedure starting at start.
func DiagnosisTime(start time.Time) time.Time {
	diag := start.Add(-DiagnosisLead)
	c := ClockOf(diag)
	for _, w := range diagnosisSnaps {
		if c > w.after && c < w.to {
			return w.to.On(diag)
		}
	}
	return diag
}

// ChainProcedureTimes lays out the procedures back to back from start on date.
// The diagnosis stamp is computed once from the first procedure and shared by all.
// Staff is left empty.
func (c *SchedulingContext) ChainProcedureTimes(date time.Time, start Clock, procs []string) ([]ProcedureAssignment, error) {
	if len(procs) == 0 {
		return nil, fmt.Errorf("%w: no procedures to schedule", ErrConfiguration)
	}
	first := start.On(date)
	diag := DiagnosisTime(first)
	doctor := c.doctors.For(date)

	out := make([]ProcedureAssignment, 0, len(procs))
	next := first
	for _, name := range procs {
		spec, err := c.catalog.Lookup(name)
		if err != nil {
			return nil, err
		}
		end := next.Add(spec.Duration)
		out = append(out, ProcedureAssignment{
			Procedure: spec.Name,
			Role:      spec.Role,
			Doctor:    doctor,
			Diagnosis: diag,
			Start:     next,
			End:       end,
		})
		next = end.Add(ProcedureGap)
	}
	return out, nil
}

// Lineup holds staff short keys by position: index 0 and 2 are the junior
// positions, index 1 the senior one. An empty key leaves a position unfilled.
type Lineup []string

// LineupOf recovers the positional lineup of a built record. Position 3
// repeats position 1 when the record has a single junior procedure, and
// position 2 stays empty when it has no senior one.
func LineupOf(rec AppointmentRecord) Lineup {
	lineup := make(Lineup, 3)
	juniorSeen := 0
	for _, p := range rec.Procedures {
		idx := lineup.staffIndex(p.Role, juniorSeen)
		if p.Role == RoleJunior {
			juniorSeen++
		}
		if lineup[idx] == "" {
			lineup[idx] = p.StaffKey
		}
	}
	if lineup[2] == "" {
		lineup[2] = lineup[0]
	}
	return lineup
}

// staffIndex picks the lineup index for a procedure. Senior procedures use
// position 2 (index 1, or 0 for a single-name lineup); junior procedures
// alternate between index 0 and 2 by their order among junior procedures.
func (l Lineup) staffIndex(role RoleClass, juniorSeen int) int {
	if role == RoleSenior {
		if len(l) > 1 {
			return 1
		}
		return 0
	}
	if juniorSeen%2 == 1 {
		return 2
	}
	return 0
}

// BuildAppointment chains the procedure times and assigns staff from the lineup.
// Every assigned key must exist in the roster group matching its position.
func (c *SchedulingContext) BuildAppointment(patientID string, date time.Time, start Clock, procs []string, lineup Lineup) (AppointmentRecord, error) {
	if len(lineup) == 0 {
		return AppointmentRecord{}, fmt.Errorf("%w: patient %s has no staff", ErrConfiguration, patientID)
	}
	assignments, err := c.ChainProcedureTimes(date, start, procs)
	if err != nil {
		return AppointmentRecord{}, fmt.Errorf("patient %s: %w", patientID, err)
	}

	juniorSeen := 0
	for i := range assignments {
		spec, _ := c.catalog.Lookup(assignments[i].Procedure)
		idx := lineup.staffIndex(spec.Role, juniorSeen)
		if spec.Role == RoleJunior {
			juniorSeen++
		}
		if idx >= len(lineup) {
			return AppointmentRecord{}, fmt.Errorf("%w: patient %s needs staff for position %d",
				ErrConfiguration, patientID, idx+1)
		}
		if lineup[idx] == "" {
			return AppointmentRecord{}, fmt.Errorf("%w: patient %s needs staff for position %d",
				ErrConfiguration, patientID, idx+1)
		}
		name, err := c.staffForPosition(lineup[idx], idx)
		if err != nil {
			return AppointmentRecord{}, fmt.Errorf("patient %s: %w", patientID, err)
		}
		assignments[i].Staff = name
		assignments[i].StaffKey = lineup[idx]
	}

	return AppointmentRecord{
		PatientID:  patientID,
		Date:       truncateDay(date),
		Procedures: assignments,
	}, nil
}

func (c *SchedulingContext) staffForPosition(key string, idx int) (string, error) {
	name, err := c.roster.FullName(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if idx == 1 {
		if !c.roster.InGroup(key, staffing.GroupB) {
			return "", fmt.Errorf("%w: staff %q (position 2) is not in group B", ErrConfiguration, name)
		}
		return name, nil
	}
	if !c.roster.InGroup(key, staffing.GroupA) {
		return "", fmt.Errorf("%w: staff %q (position %d) is not in group A", ErrConfiguration, name, idx+1)
	}
	return name, nil
}
