// Package services answers staffing questions for the scheduler.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// LeaveChecker decides staff availability from dated and weekly leaves.
type LeaveChecker struct {
	repo domain.LeaveRepository
}

// NewLeaveChecker creates a checker backed by repo.
func NewLeaveChecker(repo domain.LeaveRepository) *LeaveChecker {
	return &LeaveChecker{repo: repo}
}

// Check reports whether staffKey can work an appointment starting at hour on
// date. Dated leaves are consulted first, then the weekly pattern. The reason
// names the blocking leave.
func (c *LeaveChecker) Check(ctx context.Context, staffKey string, date time.Time, hour int) (bool, string, error) {
	appt := domain.SessionForHour(hour)

	dated, err := c.repo.FindForDate(ctx, staffKey, date)
	if err != nil {
		return false, "", fmt.Errorf("leaves of %s on %s: %w", staffKey, date.Format("2006-01-02"), err)
	}
	for _, l := range dated {
		if l.Session.Blocks(appt) {
			return false, reason("on leave", l.Session, l.Reason), nil
		}
	}

	weekly, err := c.repo.FindWeekly(ctx, staffKey, domain.ClinicWeekday(date))
	if err != nil {
		return false, "", fmt.Errorf("weekly leaves of %s: %w", staffKey, err)
	}
	for _, l := range weekly {
		if l.Session.Blocks(appt) {
			return false, reason("weekly leave", l.Session, l.Reason), nil
		}
	}
	return true, "", nil
}

func reason(kind string, s domain.Session, note string) string {
	out := kind + " (" + s.Label() + ")"
	if note = strings.TrimSpace(note); note != "" {
		out += ": " + note
	}
	return out
}
