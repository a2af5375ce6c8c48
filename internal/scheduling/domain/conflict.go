package domain

import (
	"fmt"
	"time"
)

// TimeRange represents a time period with start and end.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two ranges share time. Touching endpoints do not overlap.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

func (t TimeRange) String() string {
	return t.Start.Format("02-01-2006 15:04") + " - " + t.End.Format("15:04")
}

// Booking is one procedure window held by a staff member.
type Booking struct {
	Label     string // record label, see AppointmentRecord.Label
	Procedure string
	Window    TimeRange
}

// Conflict is a double booking of a group A staff member.
type Conflict struct {
	StaffKey  string
	StaffName string
	First     Booking
	Second    Booking
}

// Message renders the conflict for operators.
func (c Conflict) Message() string {
	return fmt.Sprintf("Staff %s (%s) is double-booked:\n  %s %s [%s]\n  %s %s [%s]",
		c.StaffName, c.StaffKey,
		c.First.Label, c.First.Procedure, c.First.Window,
		c.Second.Label, c.Second.Procedure, c.Second.Window,
	)
}
