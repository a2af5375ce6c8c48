package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSession = errors.New("invalid leave session")
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")
	ErrLeaveNotFound  = errors.New("leave record not found")
)

// Session is the part of a working day covered by a leave.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
	SessionFullDay   Session = "full_day"
	// SessionUnknown is reported for appointment times outside both working sessions.
	SessionUnknown Session = "unknown"
)

// ParseSession validates a stored or user-supplied session name.
func ParseSession(s string) (Session, error) {
	switch Session(strings.ToLower(strings.TrimSpace(s))) {
	case SessionMorning:
		return SessionMorning, nil
	case SessionAfternoon:
		return SessionAfternoon, nil
	case SessionFullDay:
		return SessionFullDay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, s)
	}
}

// SessionForHour maps an appointment start hour to its session.
// Morning is [07,13), afternoon [13,18).
func SessionForHour(hour int) Session {
	switch {
	case hour >= 7 && hour < 13:
		return SessionMorning
	case hour >= 13 && hour < 18:
		return SessionAfternoon
	default:
		return SessionUnknown
	}
}

// Blocks reports whether a leave of this session covers an appointment in appt.
func (s Session) Blocks(appt Session) bool {
	if s == SessionFullDay {
		return true
	}
	return appt != SessionUnknown && s == appt
}

// Label is the human-readable reason reported for a blocking leave.
func (s Session) Label() string {
	switch s {
	case SessionFullDay:
		return "full day"
	case SessionMorning:
		return "morning"
	case SessionAfternoon:
		return "afternoon"
	default:
		return string(s)
	}
}

// ClinicWeekday numbers days Monday=0 .. Sunday=6.
func ClinicWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// LeaveRecord is a one-off leave on a specific date.
type LeaveRecord struct {
	ID        int64
	StaffKey  string
	Date      time.Time
	Session   Session
	Reason    string
	CreatedAt time.Time
}

// NewLeaveRecord validates a dated leave.
func NewLeaveRecord(staffKey string, date time.Time, session Session, reason string) (LeaveRecord, error) {
	staffKey = NormalizeKey(staffKey)
	if staffKey == "" {
		return LeaveRecord{}, ErrEmptyStaffKey
	}
	if _, err := ParseSession(string(session)); err != nil {
		return LeaveRecord{}, err
	}
	return LeaveRecord{
		StaffKey: staffKey,
		Date:     time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Session:  session,
		Reason:   strings.TrimSpace(reason),
	}, nil
}

// WeeklyLeave is a leave that recurs on the same weekday every week.
type WeeklyLeave struct {
	ID        int64
	StaffKey  string
	Weekday   int
	Session   Session
	Reason    string
	CreatedAt time.Time
}

// NewWeeklyLeave validates a recurring leave. weekday is 0=Monday .. 6=Sunday.
func NewWeeklyLeave(staffKey string, weekday int, session Session, reason string) (WeeklyLeave, error) {
	staffKey = NormalizeKey(staffKey)
	if staffKey == "" {
		return WeeklyLeave{}, ErrEmptyStaffKey
	}
	if weekday < 0 || weekday > 6 {
		return WeeklyLeave{}, fmt.Errorf("%w: %d", ErrInvalidWeekday, weekday)
	}
	if _, err := ParseSession(string(session)); err != nil {
		return WeeklyLeave{}, err
	}
	return WeeklyLeave{
		StaffKey: staffKey,
		Weekday:  weekday,
		Session:  session,
		Reason:   strings.TrimSpace(reason),
	}, nil
}
