// Package commands changes the roster, the disabled list and leaves.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	sharedApplication "github.com/felixgeelhaar/clinicflow/internal/shared/application"
	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// RosterSource resolves the effective roster.
type RosterSource interface {
	Roster(ctx context.Context) (*domain.Roster, error)
}

// SaveStaffCommand adds or updates a staff member.
type SaveStaffCommand struct {
	Key      string
	FullName string
	Group    int
}

// SaveStaffHandler handles SaveStaffCommand.
type SaveStaffHandler struct {
	repo   domain.StaffRepository
	logger *slog.Logger
}

// NewSaveStaffHandler creates a new SaveStaffHandler.
func NewSaveStaffHandler(repo domain.StaffRepository, logger *slog.Logger) *SaveStaffHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStaffHandler{repo: repo, logger: logger}
}

// Handle validates and stores the member.
func (h *SaveStaffHandler) Handle(ctx context.Context, cmd SaveStaffCommand) (domain.StaffMember, error) {
	group, err := domain.ParseGroup(cmd.Group)
	if err != nil {
		return domain.StaffMember{}, err
	}
	member, err := domain.NewStaffMember(cmd.Key, cmd.FullName, group)
	if err != nil {
		return domain.StaffMember{}, err
	}
	if err := h.repo.Save(ctx, member); err != nil {
		return domain.StaffMember{}, err
	}
	h.logger.Info("staff saved", "staff", member.Key, "group", member.Group.String())
	return member, nil
}

// RemoveStaffHandler deletes a staff member from the stored roster.
type RemoveStaffHandler struct {
	repo domain.StaffRepository
}

// NewRemoveStaffHandler creates a new RemoveStaffHandler.
func NewRemoveStaffHandler(repo domain.StaffRepository) *RemoveStaffHandler {
	return &RemoveStaffHandler{repo: repo}
}

// Handle removes the member with the given key.
func (h *RemoveStaffHandler) Handle(ctx context.Context, key string) error {
	return h.repo.Delete(ctx, key)
}

// SetStaffEnabledCommand enables or disables staff for assignment.
type SetStaffEnabledCommand struct {
	Keys    []string
	Enabled bool
}

// SetStaffEnabledHandler edits the persisted disabled list.
type SetStaffEnabledHandler struct {
	roster   RosterSource
	settings domain.SettingsRepository
	uow      sharedApplication.UnitOfWork
	events   sharedApplication.EventRecorder
	logger   *slog.Logger
}

// NewSetStaffEnabledHandler creates a new SetStaffEnabledHandler.
func NewSetStaffEnabledHandler(
	roster RosterSource,
	settings domain.SettingsRepository,
	uow sharedApplication.UnitOfWork,
	events sharedApplication.EventRecorder,
	logger *slog.Logger,
) *SetStaffEnabledHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetStaffEnabledHandler{
		roster:   roster,
		settings: settings,
		uow:      uow,
		events:   sharedApplication.RecorderOrNoop(events),
		logger:   logger,
	}
}

// Handle applies the change and returns the resulting disabled keys.
// Unknown keys are rejected before anything is written.
func (h *SetStaffEnabledHandler) Handle(ctx context.Context, cmd SetStaffEnabledCommand) ([]string, error) {
	roster, err := h.roster.Roster(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range cmd.Keys {
		if _, ok := roster.GroupOf(k); !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStaff, domain.NormalizeKey(k))
		}
	}

	var result []string
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		current, err := h.settings.GetDisabledStaff(txCtx)
		if err != nil {
			return err
		}
		set := domain.NewDisabledSet(current)
		for _, k := range cmd.Keys {
			if cmd.Enabled {
				delete(set, domain.NormalizeKey(k))
			} else {
				set[domain.NormalizeKey(k)] = struct{}{}
			}
		}
		result = set.Keys()
		if err := h.settings.SetDisabledStaff(txCtx, result); err != nil {
			return err
		}
		keys := make([]string, len(cmd.Keys))
		for i, k := range cmd.Keys {
			keys[i] = domain.NormalizeKey(k)
		}
		return h.events.Record(txCtx, domain.RoutingKeyStaffAvailabilityChanged, domain.StaffAvailabilityChanged{
			Keys:     keys,
			Enabled:  cmd.Enabled,
			Disabled: result,
		})
	})
	if err != nil {
		return nil, err
	}
	h.logger.Info("disabled staff updated", "disabled", result)
	return result, nil
}
