package models

import "time"

// ScanPhase is the controller state exposed to observers.
type ScanPhase string

const (
	PhaseIdle          ScanPhase = "idle"
	PhaseScanning      ScanPhase = "scanning"
	PhaseRetryPending  ScanPhase = "retry_pending"
	PhaseRetryScanning ScanPhase = "retry_scanning"
	PhaseStopped       ScanPhase = "stopped"
	PhaseCompleted     ScanPhase = "completed"
)

// Running reports whether a timer-driven scan is in flight in this phase.
func (p ScanPhase) Running() bool {
	return p == PhaseScanning || p == PhaseRetryPending || p == PhaseRetryScanning
}

// ScanStatus is a read-only snapshot of the controller.
type ScanStatus struct {
	Phase             ScanPhase  `json:"phase"`
	RunID             string     `json:"run_id,omitempty"`
	CurrentSilo       *SiloID    `json:"current_silo,omitempty"`
	ProgressPercent   float64    `json:"progress_percent"`
	Active            bool       `json:"active"`
	RetryPhase        bool       `json:"retry_phase"`
	RetryCycle        int        `json:"retry_cycle"`
	MaxRetryCycles    int        `json:"max_retry_cycles"`
	DisconnectedSilos []SiloID   `json:"disconnected_silos"`
	DisconnectedCount int        `json:"disconnected_count"`
	NextIndex         int        `json:"next_index"`
	CatalogSize       int        `json:"catalog_size"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
}
