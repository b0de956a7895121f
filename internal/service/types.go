package service

import (
	"context"
	"time"

	"silo_scanner/internal/models"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "STOP", "SILO_DISCONNECTED", "RETRY_CYCLE", "COMPLETE", ...
}

// ScanConfig holds the controller timing. Zero values fall back to the fast preset.
type ScanConfig struct {
	TickInterval    time.Duration
	FetchAttempts   int
	FetchBaseDelay  time.Duration
	RetryInterval   time.Duration
	InterCycleDelay time.Duration
	RetryStartDelay time.Duration
	MaxRetryCycles  int
}

// SensorSource is the Sensor Data Gateway as the controller sees it.
type SensorSource interface {
	FetchWithRetry(ctx context.Context, id models.SiloID, maxAttempts int, baseDelay time.Duration) models.SensorReading
	ClearCache()
}

// Notifier receives scan events, e.g. the MQTT publisher.
type Notifier interface {
	Publish(ctx context.Context, ev models.ScanEvent) error
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
