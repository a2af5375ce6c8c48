// Package queries reads the roster and leave calendar.
package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// RosterSource resolves the effective roster and disabled list.
type RosterSource interface {
	Roster(ctx context.Context) (*domain.Roster, error)
	Disabled(ctx context.Context) (domain.DisabledSet, error)
}

// StaffDTO is one row of the staff listing.
type StaffDTO struct {
	Key      string
	FullName string
	Group    domain.Group
	Disabled bool
}

// ListStaffHandler lists the effective roster with disabled flags.
type ListStaffHandler struct {
	source RosterSource
}

// NewListStaffHandler creates a new ListStaffHandler.
func NewListStaffHandler(source RosterSource) *ListStaffHandler {
	return &ListStaffHandler{source: source}
}

// Handle returns group A first, each group in key order.
func (h *ListStaffHandler) Handle(ctx context.Context) ([]StaffDTO, error) {
	roster, err := h.source.Roster(ctx)
	if err != nil {
		return nil, err
	}
	disabled, err := h.source.Disabled(ctx)
	if err != nil {
		return nil, err
	}
	members := roster.Members()
	out := make([]StaffDTO, 0, len(members))
	for _, m := range members {
		out = append(out, StaffDTO{
			Key:      m.Key,
			FullName: m.FullName,
			Group:    m.Group,
			Disabled: disabled.Contains(m.Key),
		})
	}
	return out, nil
}

// LeaveCalendar is the full set of stored leaves.
type LeaveCalendar struct {
	Dated  []domain.LeaveRecord
	Weekly []domain.WeeklyLeave
}

// ListLeavesHandler reads every leave.
type ListLeavesHandler struct {
	repo domain.LeaveRepository
}

// NewListLeavesHandler creates a new ListLeavesHandler.
func NewListLeavesHandler(repo domain.LeaveRepository) *ListLeavesHandler {
	return &ListLeavesHandler{repo: repo}
}

// Handle returns dated leaves, optionally limited to [from, to], and all
// weekly leaves.
func (h *ListLeavesHandler) Handle(ctx context.Context, from, to time.Time) (LeaveCalendar, error) {
	dated, err := h.repo.List(ctx)
	if err != nil {
		return LeaveCalendar{}, err
	}
	weekly, err := h.repo.ListWeekly(ctx)
	if err != nil {
		return LeaveCalendar{}, err
	}
	cal := LeaveCalendar{Weekly: weekly}
	for _, l := range dated {
		if !from.IsZero() && l.Date.Before(from) {
			continue
		}
		if !to.IsZero() && l.Date.After(to) {
			continue
		}
		cal.Dated = append(cal.Dated, l)
	}
	return cal, nil
}

// AvailabilityChecker answers one availability question.
type AvailabilityChecker interface {
	Check(ctx context.Context, staffKey string, date time.Time, hour int) (bool, string, error)
}

// Availability is the answer for one staff member at one time.
type Availability struct {
	StaffKey  string
	Available bool
	Reason    string
}

// CheckAvailabilityHandler answers availability for several staff at once.
type CheckAvailabilityHandler struct {
	checker AvailabilityChecker
}

// NewCheckAvailabilityHandler creates a new CheckAvailabilityHandler.
func NewCheckAvailabilityHandler(checker AvailabilityChecker) *CheckAvailabilityHandler {
	return &CheckAvailabilityHandler{checker: checker}
}

// Handle checks every key at hour on date.
func (h *CheckAvailabilityHandler) Handle(ctx context.Context, keys []string, date time.Time, hour int) ([]Availability, error) {
	out := make([]Availability, 0, len(keys))
	for _, k := range keys {
		key := domain.NormalizeKey(k)
		ok, reason, err := h.checker.Check(ctx, key, date, hour)
		if err != nil {
			return nil, err
		}
		out = append(out, Availability{StaffKey: key, Available: ok, Reason: reason})
	}
	return out, nil
}
