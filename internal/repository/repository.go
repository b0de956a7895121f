package repository

import (
	"context"
	"database/sql"
	"time"

	"silo_scanner/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ProgressRepo is the single resume slot of the scan controller.
type ProgressRepo interface {
	Load(ctx context.Context) (*models.ScanProgress, error)
	Save(ctx context.Context, p models.ScanProgress) error
	Clear(ctx context.Context) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.ScanEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ScanEvent, error)
}

// ReadingRepo keeps the latest reading per silo.
type ReadingRepo interface {
	Upsert(ctx context.Context, r models.SensorReading) error
	Get(ctx context.Context, id models.SiloID) (*models.SensorReading, error)
	List(ctx context.Context) ([]models.SensorReading, error)
}

type Repository struct {
	ProgressRepo ProgressRepo
	EventRepo    EventRepo
	ReadingRepo  ReadingRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB, progressKey string) *Repository {
	return &Repository{
		ProgressRepo: NewProgressSQLite(db, progressKey),
		EventRepo:    NewEventSQLite(db),
		ReadingRepo:  NewReadingSQLite(db),
		Auth:         NewUserRepository(db),
	}
}
