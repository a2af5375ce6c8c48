package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
)

// RosterProvider loads the roster and disabled list from the store, falling
// back to the catalog roster while the staff table is empty.
type RosterProvider struct {
	staff    domain.StaffRepository
	settings domain.SettingsRepository
	fallback *domain.Roster
	logger   *slog.Logger
}

// NewRosterProvider creates a provider. fallback must not be nil.
func NewRosterProvider(staff domain.StaffRepository, settings domain.SettingsRepository, fallback *domain.Roster, logger *slog.Logger) *RosterProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RosterProvider{staff: staff, settings: settings, fallback: fallback, logger: logger}
}

// Roster returns the stored roster, or the fallback when none is stored.
func (p *RosterProvider) Roster(ctx context.Context) (*domain.Roster, error) {
	members, err := p.staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(members) == 0 {
		p.logger.Debug("staff table empty, using catalog roster")
		return p.fallback, nil
	}
	return domain.RosterFromMembers(members)
}

// Disabled returns the disabled staff set.
func (p *RosterProvider) Disabled(ctx context.Context) (domain.DisabledSet, error) {
	keys, err := p.settings.GetDisabledStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("load disabled staff: %w", err)
	}
	return domain.NewDisabledSet(keys), nil
}

// Seed copies the fallback roster into an empty store and reports how many
// members were written.
func (p *RosterProvider) Seed(ctx context.Context) (int, error) {
	members, err := p.staff.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(members) > 0 {
		return 0, nil
	}
	seed := p.fallback.Members()
	for _, m := range seed {
		if err := p.staff.Save(ctx, m); err != nil {
			return 0, err
		}
	}
	p.logger.Info("roster seeded", "members", len(seed))
	return len(seed), nil
}
