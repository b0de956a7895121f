package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"silo_scanner/internal/models"
)

// ErrCorruptProgress means the slot holds a value that does not decode as ScanProgress.
var ErrCorruptProgress = errors.New("stored scan progress is corrupt")

// ProgressSQLite stores ScanProgress as JSON under one key of kv_store.
type ProgressSQLite struct {
	db  *sql.DB
	key string
}

func NewProgressSQLite(db *sql.DB, key string) *ProgressSQLite {
	return &ProgressSQLite{db: db, key: key}
}

var _ ProgressRepo = (*ProgressSQLite)(nil)

const (
	upsertKVSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
	selectKVSQL = `SELECT value FROM kv_store WHERE key = ?`
	deleteKVSQL = `DELETE FROM kv_store WHERE key = ?`
)

// Load returns (nil, nil) when the slot is empty and ErrCorruptProgress when it
// holds something unparsable.
func (r *ProgressSQLite) Load(ctx context.Context) (*models.ScanProgress, error) {
	var raw string
	if err := r.db.QueryRowContext(ctx, selectKVSQL, r.key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select progress %q: %w", r.key, err)
	}

	var p models.ScanProgress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptProgress, err)
	}
	return &p, nil
}

// Save overwrites the slot with p.
func (r *ProgressSQLite) Save(ctx context.Context, p models.ScanProgress) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	} else {
		p.UpdatedAt = p.UpdatedAt.UTC()
	}
	if p.DisconnectedSilos == nil {
		p.DisconnectedSilos = []models.SiloID{}
	}

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertKVSQL, r.key, string(b), p.UpdatedAt); err != nil {
		return fmt.Errorf("save progress %q: %w", r.key, err)
	}
	return nil
}

func (r *ProgressSQLite) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteKVSQL, r.key); err != nil {
		return fmt.Errorf("clear progress %q: %w", r.key, err)
	}
	return nil
}
