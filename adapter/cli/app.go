package cli

import (
	"errors"

	internalApp "github.com/felixgeelhaar/clinicflow/internal/app"
	scheduleCommands "github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicflow/internal/scheduling/application/queries"
	schedulingDomain "github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/catalog"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/outbox"
	staffCommands "github.com/felixgeelhaar/clinicflow/internal/staffing/application/commands"
	staffQueries "github.com/felixgeelhaar/clinicflow/internal/staffing/application/queries"
	staffServices "github.com/felixgeelhaar/clinicflow/internal/staffing/application/services"
	"github.com/felixgeelhaar/clinicflow/pkg/config"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// ErrNotInitialized is returned by commands run without a wired App.
var ErrNotInitialized = errors.New("app not initialized")

// App holds the CLI application dependencies.
type App struct {
	Config  *config.Config
	Clinic  *catalog.Clinic
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Scheduling
	Engines                  scheduleCommands.EngineProvider
	GenerateHandler          *scheduleCommands.GenerateHandler
	ValidateHandler          *scheduleCommands.ValidateDatasetHandler
	ManualEntryHandler       *scheduleCommands.ManualEntryHandler
	ListManualEntriesHandler *scheduleQueries.ListManualEntriesHandler
	ManualEntries            schedulingDomain.ManualEntryRepository

	// Staffing
	Roster                   *staffServices.RosterProvider
	SaveStaffHandler         *staffCommands.SaveStaffHandler
	RemoveStaffHandler       *staffCommands.RemoveStaffHandler
	SetStaffEnabledHandler   *staffCommands.SetStaffEnabledHandler
	LeaveHandler             *staffCommands.LeaveHandler
	ListStaffHandler         *staffQueries.ListStaffHandler
	ListLeavesHandler        *staffQueries.ListLeavesHandler
	CheckAvailabilityHandler *staffQueries.CheckAvailabilityHandler

	// Events
	Outbox      outbox.Repository
	EventsRelay *outbox.Processor
}

// NewApp exposes the container's handlers to the commands.
func NewApp(c *internalApp.Container) *App {
	return &App{
		Config:  c.Config,
		Clinic:  c.Clinic,
		Metrics: c.Metrics,
		Health:  c.Health,

		Engines:                  c.EngineFactory,
		GenerateHandler:          c.GenerateHandler,
		ValidateHandler:          c.ValidateHandler,
		ManualEntryHandler:       c.ManualEntryHandler,
		ListManualEntriesHandler: c.ListManualEntriesHandler,
		ManualEntries:            c.ManualEntryRepo,

		Roster:                   c.RosterProvider,
		SaveStaffHandler:         c.SaveStaffHandler,
		RemoveStaffHandler:       c.RemoveStaffHandler,
		SetStaffEnabledHandler:   c.SetStaffEnabledHandler,
		LeaveHandler:             c.LeaveHandler,
		ListStaffHandler:         c.ListStaffHandler,
		ListLeavesHandler:        c.ListLeavesHandler,
		CheckAvailabilityHandler: c.CheckAvailabilityHandler,

		Outbox:      c.OutboxRepo,
		EventsRelay: c.OutboxProcessor,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the App or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
