// Package app wires the clinicflow services together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	scheduleCommands "github.com/felixgeelhaar/clinicflow/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/clinicflow/internal/scheduling/application/queries"
	schedulerServices "github.com/felixgeelhaar/clinicflow/internal/scheduling/application/services"
	schedulingDomain "github.com/felixgeelhaar/clinicflow/internal/scheduling/domain"
	"github.com/felixgeelhaar/clinicflow/internal/scheduling/infrastructure/catalog"
	sharedApplication "github.com/felixgeelhaar/clinicflow/internal/shared/application"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/clinicflow/internal/shared/infrastructure/outbox"
	staffCommands "github.com/felixgeelhaar/clinicflow/internal/staffing/application/commands"
	staffQueries "github.com/felixgeelhaar/clinicflow/internal/staffing/application/queries"
	staffServices "github.com/felixgeelhaar/clinicflow/internal/staffing/application/services"
	staffingDomain "github.com/felixgeelhaar/clinicflow/internal/staffing/domain"
	leaveCache "github.com/felixgeelhaar/clinicflow/internal/staffing/infrastructure/cache"
	"github.com/felixgeelhaar/clinicflow/pkg/config"
	"github.com/felixgeelhaar/clinicflow/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Database
	DBConn     database.Connection
	DBDriver   database.Driver
	UnitOfWork sharedApplication.UnitOfWork

	// Redis, set when REDIS_URL is configured and reachable
	RedisClient *redis.Client

	// Clinic catalog (procedures, fallback roster, doctors, default slots)
	Clinic *catalog.Clinic

	// Events
	OutboxRepo      outbox.Repository
	EventRecorder   sharedApplication.EventRecorder
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Repositories
	StaffRepo       staffingDomain.StaffRepository
	LeaveRepo       staffingDomain.LeaveRepository
	SettingsRepo    staffingDomain.SettingsRepository
	ManualEntryRepo schedulingDomain.ManualEntryRepository

	// Staffing services
	RosterProvider *staffServices.RosterProvider
	LeaveChecker   *staffServices.LeaveChecker

	// Staffing handlers
	SaveStaffHandler         *staffCommands.SaveStaffHandler
	RemoveStaffHandler       *staffCommands.RemoveStaffHandler
	SetStaffEnabledHandler   *staffCommands.SetStaffEnabledHandler
	LeaveHandler             *staffCommands.LeaveHandler
	ListStaffHandler         *staffQueries.ListStaffHandler
	ListLeavesHandler        *staffQueries.ListLeavesHandler
	CheckAvailabilityHandler *staffQueries.CheckAvailabilityHandler

	// Scheduling
	LeaveBreaker  *gobreaker.CircuitBreaker[bool]
	EngineFactory *schedulerServices.EngineFactory

	GenerateHandler          *scheduleCommands.GenerateHandler
	ValidateHandler          *scheduleCommands.ValidateDatasetHandler
	ManualEntryHandler       *scheduleCommands.ManualEntryHandler
	ListManualEntriesHandler *scheduleQueries.ListManualEntriesHandler
}

// NewContainer opens the configured store, applies migrations and builds
// every handler. An empty DATABASE_URL selects the local SQLite file.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	clinic, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	c.Clinic = clinic

	conn, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.UnitOfWork = database.NewUnitOfWork(conn)

	factory := NewRepositoryFactory(conn)
	c.StaffRepo = factory.StaffRepository()
	c.LeaveRepo = factory.LeaveRepository()
	c.SettingsRepo = factory.SettingsRepository()
	c.ManualEntryRepo = factory.ManualEntryRepository()

	if err := c.connectRedis(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	var cachedLeaves *leaveCache.LeaveRepository
	if c.RedisClient != nil {
		cachedLeaves = leaveCache.NewLeaveRepository(c.LeaveRepo, c.RedisClient, cfg.LeaveCacheTTL, logger, c.Metrics)
		c.LeaveRepo = cachedLeaves
	}

	if err := c.setupEvents(); err != nil {
		c.Close()
		return nil, err
	}

	c.RosterProvider = staffServices.NewRosterProvider(c.StaffRepo, c.SettingsRepo, clinic.Roster, logger)
	c.LeaveChecker = staffServices.NewLeaveChecker(c.LeaveRepo)

	c.SaveStaffHandler = staffCommands.NewSaveStaffHandler(c.StaffRepo, logger)
	c.RemoveStaffHandler = staffCommands.NewRemoveStaffHandler(c.StaffRepo)
	c.SetStaffEnabledHandler = staffCommands.NewSetStaffEnabledHandler(c.RosterProvider, c.SettingsRepo, c.UnitOfWork, c.EventRecorder, logger)
	c.LeaveHandler = staffCommands.NewLeaveHandler(c.RosterProvider, c.LeaveRepo, c.UnitOfWork, c.EventRecorder, logger)
	c.ListStaffHandler = staffQueries.NewListStaffHandler(c.RosterProvider)
	c.ListLeavesHandler = staffQueries.NewListLeavesHandler(c.LeaveRepo)
	c.CheckAvailabilityHandler = staffQueries.NewCheckAvailabilityHandler(c.LeaveChecker)

	c.LeaveBreaker = schedulerServices.NewLeaveBreaker(breakerConfig(cfg), logger)
	c.EngineFactory = schedulerServices.NewEngineFactory(
		clinic.Catalog,
		clinic.Doctors,
		c.RosterProvider,
		leaveLookup(c.LeaveChecker),
		c.LeaveBreaker,
		engineConfig(cfg),
		logger,
		c.Metrics,
	)

	c.GenerateHandler = scheduleCommands.NewGenerateHandler(c.EngineFactory, c.EventRecorder, logger, c.Metrics)
	c.ValidateHandler = scheduleCommands.NewValidateDatasetHandler(c.EngineFactory, c.ManualEntryRepo, c.EventRecorder, logger, c.Metrics)
	c.ManualEntryHandler = scheduleCommands.NewManualEntryHandler(c.EngineFactory, c.ManualEntryRepo, c.UnitOfWork, c.EventRecorder, logger)
	c.ListManualEntriesHandler = scheduleQueries.NewListManualEntriesHandler(c.ManualEntryRepo)

	c.Health = observability.NewHealthRegistry()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	c.Health.Register("leave_lookup", observability.BreakerHealthChecker(c.breakerState))
	c.Health.Register("events", observability.BacklogHealthChecker(c.deadEvents))
	if cachedLeaves != nil {
		c.Health.Register("leave_cache", observability.PingHealthChecker("leave cache", observability.HealthStatusDegraded, cachedLeaves.Ping))
	}

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"procedures", len(clinic.Catalog.Names()),
		"events", c.publisherKind(),
		"leave_cache", c.RedisClient != nil,
	)
	return c, nil
}

// Close stops the relay and releases the broker, Redis and database
// connections.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.DBConn == nil {
		return
	}
	if err := c.DBConn.Close(); err != nil {
		c.Logger.Warn("error closing database connection", "error", err)
		return
	}
	c.Logger.Debug("database connection closed", "driver", c.DBDriver)
}

// connectRedis opens the leave cache connection. Outside production an
// unusable Redis only disables the cache.
func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, leave cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, leave cache disabled", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return nil
}

// setupEvents builds the outbox and its relay. Events go to RabbitMQ when
// RABBITMQ_URL is set and to in-process consumers otherwise.
func (c *Container) setupEvents() error {
	c.OutboxRepo = outbox.NewSQLRepository(c.DBConn)
	c.EventRecorder = outbox.NewRecorder(c.OutboxRepo, c.Metrics)

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	c.EventPublisher = publisher
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, publisher, outboxConfig(c.Config), c.Logger, c.Metrics)
	return nil
}

func (c *Container) newPublisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL != "" {
		pub, err := eventbus.NewRabbitMQPublisher(eventbus.RabbitMQConfig{
			URL:      c.Config.RabbitMQURL,
			Exchange: c.Config.EventsExchange,
		}, c.Logger)
		if err == nil {
			return pub, nil
		}
		if c.Config.IsProduction() {
			return nil, err
		}
		c.Logger.Warn("RabbitMQ not available, delivering events in process", "error", err)
	}
	bus := eventbus.NewInProcessEventBus(c.Logger)
	bus.RegisterConsumer(eventbus.NewMetricsConsumer(c.Metrics))
	return bus, nil
}

func (c *Container) publisherKind() string {
	if _, ok := c.EventPublisher.(*eventbus.RabbitMQPublisher); ok {
		return "rabbitmq"
	}
	return "in-process"
}

func (c *Container) deadEvents(ctx context.Context) (int64, error) {
	counts, err := c.OutboxRepo.Counts(ctx)
	if err != nil {
		return 0, err
	}
	return counts.Dead, nil
}

func (c *Container) breakerState() string {
	if c.LeaveBreaker == nil {
		return gobreaker.StateClosed.String()
	}
	return c.LeaveBreaker.State().String()
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	}
	conn, err := database.Open(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Debug("connected to database", "driver", conn.Driver())
	return conn, nil
}

// leaveLookup adapts the staffing leave checker to the scheduler's lookup,
// which asks by appointment start time.
func leaveLookup(checker *staffServices.LeaveChecker) schedulerServices.LeaveLookup {
	return schedulerServices.LeaveLookupFunc(func(ctx context.Context, staffKey string, date time.Time, at schedulingDomain.Clock) (bool, string, error) {
		return checker.Check(ctx, staffKey, date, at.Hour())
	})
}

func breakerConfig(cfg *config.Config) schedulerServices.BreakerConfig {
	bc := schedulerServices.DefaultBreakerConfig()
	if cfg.BreakerThreshold <= 0 {
		bc.Enabled = false
		return bc
	}
	bc.FailureThreshold = uint32(cfg.BreakerThreshold)
	if cfg.BreakerTimeout > 0 {
		bc.Timeout = cfg.BreakerTimeout
	}
	return bc
}

func outboxConfig(cfg *config.Config) outbox.ProcessorConfig {
	oc := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		oc.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		oc.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		oc.MaxRetries = cfg.OutboxMaxRetries
	}
	return oc
}

func engineConfig(cfg *config.Config) schedulerServices.EngineConfig {
	ec := schedulerServices.DefaultEngineConfig()
	if cfg.ScheduleMaxAttempts > 0 {
		ec.MaxAttempts = cfg.ScheduleMaxAttempts
	}
	return ec
}
