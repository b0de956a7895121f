package models

import "time"

// ScanProgress is the persisted resume record of a scan. Every save overwrites it wholesale.
type ScanProgress struct {
	Active            bool      `json:"active"`
	NextIndex         int       `json:"next_index"`
	LastCompletedSilo *SiloID   `json:"last_completed_silo,omitempty"`
	ProgressPercent   float64   `json:"progress_percent"`
	DisconnectedSilos []SiloID  `json:"disconnected_silos"`
	RetryCount        int       `json:"retry_count"`
	RetryPhase        bool      `json:"retry_phase"`
	Completed         bool      `json:"completed,omitempty"` // final snapshot kept for leftover disconnected silos
	RunID             string    `json:"run_id,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}
