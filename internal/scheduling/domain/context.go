package domain

import (
	"fmt"
	"time"

	staffing "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// WeekdayDoctors maps clinic weekdays (0=Monday .. 6=Sunday) to the diagnosing doctor.
type WeekdayDoctors [7]string

// For returns the diagnosing doctor for the weekday of date.
func (w WeekdayDoctors) For(date time.Time) string {
	return w[staffing.ClinicWeekday(date)]
}

// SchedulingContext is the read-only snapshot a scheduling run works from.
// It is built once per run and never mutated.
type SchedulingContext struct {
	catalog  *Catalog
	roster   *staffing.Roster
	doctors  WeekdayDoctors
	disabled staffing.DisabledSet
}

// NewSchedulingContext validates and snapshots the run configuration.
func NewSchedulingContext(
	catalog *Catalog,
	roster *staffing.Roster,
	doctors WeekdayDoctors,
	disabled staffing.DisabledSet,
) (*SchedulingContext, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: procedure catalog is required", ErrConfiguration)
	}
	if roster == nil {
		return nil, fmt.Errorf("%w: staff roster is required", ErrConfiguration)
	}
	for i, d := range doctors {
		if d == "" {
			return nil, fmt.Errorf("%w: no diagnosing doctor for weekday %d", ErrConfiguration, i)
		}
	}
	snapshot := make(staffing.DisabledSet, len(disabled))
	for k := range disabled {
		snapshot[k] = struct{}{}
	}
	return &SchedulingContext{
		catalog:  catalog,
		roster:   roster,
		doctors:  doctors,
		disabled: snapshot,
	}, nil
}

func (c *SchedulingContext) Catalog() *Catalog          { return c.catalog }
func (c *SchedulingContext) Roster() *staffing.Roster   { return c.roster }
func (c *SchedulingContext) Doctors() WeekdayDoctors    { return c.doctors }
func (c *SchedulingContext) IsDisabled(key string) bool { return c.disabled.Contains(key) }

// CheckedStaff returns the group A key holding a junior procedure. Senior
// procedures, group B and disabled staff are never checked for overlaps.
func (c *SchedulingContext) CheckedStaff(p ProcedureAssignment) (string, bool) {
	if p.Role != RoleJunior || p.StaffKey == "" {
		return "", false
	}
	if !c.roster.InGroup(p.StaffKey, staffing.GroupA) || c.disabled.Contains(p.StaffKey) {
		return "", false
	}
	return p.StaffKey, true
}

// EnabledGroupA lists group A keys minus disabled staff, sorted.
func (c *SchedulingContext) EnabledGroupA() []string {
	return c.enabled(c.roster.GroupAKeys())
}

// EnabledGroupB lists group B keys minus disabled staff, sorted.
func (c *SchedulingContext) EnabledGroupB() []string {
	return c.enabled(c.roster.GroupBKeys())
}

func (c *SchedulingContext) enabled(keys []string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if !c.disabled.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}
