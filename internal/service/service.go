package service

import (
	"context"
	"time"

	"silo_scanner/internal/catalog"
	"silo_scanner/internal/gateway"
	"silo_scanner/internal/logger"
	"silo_scanner/internal/metrics"
	"silo_scanner/internal/models"
	"silo_scanner/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Scanner drives the sequential silo scan and its retry phase.
type Scanner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Reset(ctx context.Context) error
	// Restore loads the stored progress at startup without scheduling anything.
	Restore(ctx context.Context) error
	Status() models.ScanStatus
	// Inspect reads one silo out of band; the scan cursor is left alone.
	Inspect(ctx context.Context, id models.SiloID) (models.SensorReading, error)
	Catalog() []models.SiloID
}

// Readings exposes the latest stored reading per silo.
type Readings interface {
	Latest(ctx context.Context, id models.SiloID) (*models.SensorReading, error)
	List(ctx context.Context) ([]models.SensorReading, error)
}

// EventLog exposes append-only scan logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ScanEvent, error)
}

// Simulator stands in for the remote sensor API.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
	Reading(id models.SiloID) gateway.APIReading
}

// Service aggregates all sub-services.
type Service struct {
	Scanner
	Readings
	EventLog
	Simulator
	Authorization
}

// Deps carries everything NewService wires together.
type Deps struct {
	Repos     *repository.Repository
	Catalog   *catalog.Catalog
	Source    SensorSource
	Cache     ReadingCache // optional
	Notifier  Notifier     // optional
	Metrics   *metrics.Metrics
	Scan      ScanConfig
	Auth      AuthConfig
	Simulator SimulatorConfig
	Log       *logger.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		Scanner:       NewController(d.Catalog, d.Source, d.Repos.ProgressRepo, d.Repos.EventRepo, d.Repos.ReadingRepo, d.Notifier, d.Metrics, d.Scan, d.Log),
		Readings:      NewReadingService(d.Repos.ReadingRepo, d.Catalog, d.Cache),
		EventLog:      NewEventLogService(d.Repos.EventRepo),
		Simulator:     NewSimulatorService(d.Simulator),
		Authorization: NewAuthService(d.Repos.Auth, d.Auth),
	}
}
