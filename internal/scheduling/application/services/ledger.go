package services

import (
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
)

type staffDay struct {
	date  string
	staff string
}

type daySlot struct {
	date  string
	start domain.Clock
}

// BookingLedger records group A commitments made during a run. A batch
// shares one ledger across all of its patients.
type BookingLedger struct {
	staffTimes   map[staffDay]map[domain.Clock]struct{}
	staffWindows map[staffDay][]domain.TimeRange
	slotStaff    map[daySlot]map[string]struct{}
}

// NewBookingLedger creates an empty ledger.
func NewBookingLedger() *BookingLedger {
	return &BookingLedger{
		staffTimes:   make(map[staffDay]map[domain.Clock]struct{}),
		staffWindows: make(map[staffDay][]domain.TimeRange),
		slotStaff:    make(map[daySlot]map[string]struct{}),
	}
}

func dayKey(date time.Time) string {
	return date.Format(domain.DateLayout)
}

// IsBooked reports whether staff already holds a procedure starting at the time.
func (l *BookingLedger) IsBooked(date time.Time, staff string, at domain.Clock) bool {
	_, ok := l.staffTimes[staffDay{dayKey(date), staff}][at]
	return ok
}

// Collides reports whether window overlaps or shares a start with any
// procedure already booked for staff that day.
func (l *BookingLedger) Collides(staff string, window domain.TimeRange) bool {
	if l.IsBooked(window.Start, staff, domain.ClockOf(window.Start)) {
		return true
	}
	for _, w := range l.staffWindows[staffDay{dayKey(window.Start), staff}] {
		if w.Overlaps(window) {
			return true
		}
	}
	return false
}

// Book commits a procedure window for staff.
func (l *BookingLedger) Book(staff string, window domain.TimeRange) {
	k := staffDay{dayKey(window.Start), staff}
	set, ok := l.staffTimes[k]
	if !ok {
		set = make(map[domain.Clock]struct{})
		l.staffTimes[k] = set
	}
	set[domain.ClockOf(window.Start)] = struct{}{}
	l.staffWindows[k] = append(l.staffWindows[k], window)
}

// UsedAtSlot returns the group A staff already placed in positions 1 or 3
// for an appointment starting at start.
func (l *BookingLedger) UsedAtSlot(date time.Time, start domain.Clock) map[string]struct{} {
	return l.slotStaff[daySlot{dayKey(date), start}]
}

// MarkUsedAtSlot records staff as placed at the slot.
func (l *BookingLedger) MarkUsedAtSlot(date time.Time, start domain.Clock, staff ...string) {
	k := daySlot{dayKey(date), start}
	set, ok := l.slotStaff[k]
	if !ok {
		set = make(map[string]struct{})
		l.slotStaff[k] = set
	}
	for _, s := range staff {
		set[s] = struct{}{}
	}
}
