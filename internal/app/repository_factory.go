package app

import (
	schedulingDomain "github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	staffingDomain "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	staffingPersistence "github.com/felixgeelhaar/clinicflow/internal/staffing/infrastructure/persistence"
)

// RepositoryFactory creates repositories on one connection. The repositories
// share their SQL across drivers, so the factory only carries the connection.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// Driver returns the driver of the underlying connection.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}

// StaffRepository creates the roster repository.
func (f *RepositoryFactory) StaffRepository() staffingDomain.StaffRepository {
	return staffingPersistence.NewStaffRepository(f.conn)
}

// LeaveRepository creates the dated and weekly leave repository.
func (f *RepositoryFactory) LeaveRepository() staffingDomain.LeaveRepository {
	return staffingPersistence.NewLeaveRepository(f.conn)
}

// SettingsRepository creates the settings repository.
func (f *RepositoryFactory) SettingsRepository() staffingDomain.SettingsRepository {
	return staffingPersistence.NewSettingsRepository(f.conn)
}

// ManualEntryRepository creates the manual appointment repository.
func (f *RepositoryFactory) ManualEntryRepository() schedulingDomain.ManualEntryRepository {
	return schedulingPersistence.NewManualEntryRepository(f.conn)
}
