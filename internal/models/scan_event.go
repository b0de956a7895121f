package models

import "time"

// Scan event types.
const (
	EventScanStart        = "START"
	EventScanResume       = "RESUME"
	EventResumeDiscarded  = "RESUME_DISCARDED"
	EventScanStop         = "STOP"
	EventSiloDisconnected = "SILO_DISCONNECTED"
	EventRetryCycle       = "RETRY_CYCLE"
	EventScanComplete     = "COMPLETE"
	EventScanReset        = "RESET"
)

// ScanEvent is a single scan log entry.
type ScanEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`              // START | RESUME | STOP | SILO_DISCONNECTED | RETRY_CYCLE | COMPLETE | RESET
	SiloID      *SiloID   `json:"silo_id,omitempty"` // set for silo-scoped events
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
