package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sharedApplication "github.com/felixgeelhaar/clinicflow/internal/shared/application"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// AddLeaveCommand records a dated leave.
type AddLeaveCommand struct {
	StaffKey string
	Date     time.Time
	Session  string
	Reason   string
}

// AddWeeklyLeaveCommand records a recurring leave. Weekday is 0=Monday.
type AddWeeklyLeaveCommand struct {
	StaffKey string
	Weekday  int
	Session  string
	Reason   string
}

// RemoveLeaveCommand deletes a dated or weekly leave by id.
type RemoveLeaveCommand struct {
	ID     int64
	Weekly bool
}

// LeaveHandler handles the leave commands. Every change is stored together
// with its event.
type LeaveHandler struct {
	roster RosterSource
	repo   domain.LeaveRepository
	uow    sharedApplication.UnitOfWork
	events sharedApplication.EventRecorder
	logger *slog.Logger
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(
	roster RosterSource,
	repo domain.LeaveRepository,
	uow sharedApplication.UnitOfWork,
	events sharedApplication.EventRecorder,
	logger *slog.Logger,
) *LeaveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaveHandler{
		roster: roster,
		repo:   repo,
		uow:    uow,
		events: sharedApplication.RecorderOrNoop(events),
		logger: logger,
	}
}

// AddLeave stores a dated leave for a known staff member.
func (h *LeaveHandler) AddLeave(ctx context.Context, cmd AddLeaveCommand) (int64, error) {
	if err := h.requireStaff(ctx, cmd.StaffKey); err != nil {
		return 0, err
	}
	session, err := parseSessionOrFullDay(cmd.Session)
	if err != nil {
		return 0, err
	}
	leave, err := domain.NewLeaveRecord(cmd.StaffKey, cmd.Date, session, cmd.Reason)
	if err != nil {
		return 0, err
	}
	leave.CreatedAt = time.Now()
	var id int64
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if id, err = h.repo.Add(txCtx, leave); err != nil {
			return err
		}
		return h.events.Record(txCtx, domain.RoutingKeyLeaveAdded, domain.LeaveAdded{
			ID:       id,
			StaffKey: leave.StaffKey,
			Date:     leave.Date.Format("2006-01-02"),
			Session:  leave.Session,
			Reason:   leave.Reason,
		})
	})
	if err != nil {
		return 0, err
	}
	h.logger.Info("leave added", "id", id, "staff", leave.StaffKey, "date", leave.Date.Format("2006-01-02"), "session", leave.Session)
	return id, nil
}

// AddWeeklyLeave stores a recurring leave for a known staff member.
func (h *LeaveHandler) AddWeeklyLeave(ctx context.Context, cmd AddWeeklyLeaveCommand) (int64, error) {
	if err := h.requireStaff(ctx, cmd.StaffKey); err != nil {
		return 0, err
	}
	session, err := parseSessionOrFullDay(cmd.Session)
	if err != nil {
		return 0, err
	}
	leave, err := domain.NewWeeklyLeave(cmd.StaffKey, cmd.Weekday, session, cmd.Reason)
	if err != nil {
		return 0, err
	}
	leave.CreatedAt = time.Now()
	var id int64
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if id, err = h.repo.AddWeekly(txCtx, leave); err != nil {
			return err
		}
		weekday := leave.Weekday
		return h.events.Record(txCtx, domain.RoutingKeyLeaveAdded, domain.LeaveAdded{
			ID:       id,
			StaffKey: leave.StaffKey,
			Weekday:  &weekday,
			Session:  leave.Session,
			Reason:   leave.Reason,
		})
	})
	if err != nil {
		return 0, err
	}
	h.logger.Info("weekly leave added", "id", id, "staff", leave.StaffKey, "weekday", leave.Weekday, "session", leave.Session)
	return id, nil
}

// RemoveLeave deletes a leave.
func (h *LeaveHandler) RemoveLeave(ctx context.Context, cmd RemoveLeaveCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		if cmd.Weekly {
			err = h.repo.DeleteWeekly(txCtx, cmd.ID)
		} else {
			err = h.repo.Delete(txCtx, cmd.ID)
		}
		if err != nil {
			return err
		}
		return h.events.Record(txCtx, domain.RoutingKeyLeaveRemoved, domain.LeaveRemoved{ID: cmd.ID, Weekly: cmd.Weekly})
	})
}

func (h *LeaveHandler) requireStaff(ctx context.Context, key string) error {
	roster, err := h.roster.Roster(ctx)
	if err != nil {
		return err
	}
	if _, ok := roster.GroupOf(key); !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownStaff, domain.NormalizeKey(key))
	}
	return nil
}

func parseSessionOrFullDay(s string) (domain.Session, error) {
	if s == "" {
		return domain.SessionFullDay, nil
	}
	return domain.ParseSession(s)
}
