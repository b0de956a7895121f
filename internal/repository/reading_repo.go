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

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	upsertReadingSQL = `
		INSERT INTO silo_readings (silo_id, levels, colors, silo_color, max_temp, disconnected, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(silo_id) DO UPDATE SET
			levels=excluded.levels,
			colors=excluded.colors,
			silo_color=excluded.silo_color,
			max_temp=excluded.max_temp,
			disconnected=excluded.disconnected,
			read_at=excluded.read_at
	`
	selectReadingColumns = `SELECT silo_id, levels, colors, silo_color, disconnected, read_at FROM silo_readings`
)

// Upsert replaces the latest reading of r.SiloID. max_temp is stored for ad hoc queries only.
func (r *ReadingSQLite) Upsert(ctx context.Context, rd models.SensorReading) error {
	levels, err := json.Marshal(rd.Values)
	if err != nil {
		return fmt.Errorf("marshal levels: %w", err)
	}
	colors, err := json.Marshal(rd.Colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}
	readAt := rd.ReadAt
	if readAt.IsZero() {
		readAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, upsertReadingSQL,
		int(rd.SiloID),
		string(levels),
		string(colors),
		rd.SiloColor,
		rd.Status().MaxTemperature,
		rd.Disconnected,
		readAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert reading for silo %d: %w", rd.SiloID, err)
	}
	return nil
}

// Get returns (nil, nil) when the silo was never read.
func (r *ReadingSQLite) Get(ctx context.Context, id models.SiloID) (*models.SensorReading, error) {
	row := r.db.QueryRowContext(ctx, selectReadingColumns+` WHERE silo_id = ?`, int(id))
	rd, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select reading for silo %d: %w", id, err)
	}
	return &rd, nil
}

// List returns the latest reading of every silo, ordered by silo ID.
func (r *ReadingSQLite) List(ctx context.Context) ([]models.SensorReading, error) {
	rows, err := r.db.QueryContext(ctx, selectReadingColumns+` ORDER BY silo_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SensorReading, 0, 150)
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(s rowScanner) (models.SensorReading, error) {
	var (
		rd             models.SensorReading
		id             int
		levels, colors string
		siloColor      sql.NullString
	)
	if err := s.Scan(&id, &levels, &colors, &siloColor, &rd.Disconnected, &rd.ReadAt); err != nil {
		return models.SensorReading{}, err
	}
	if err := json.Unmarshal([]byte(levels), &rd.Values); err != nil {
		return models.SensorReading{}, fmt.Errorf("decode levels of silo %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(colors), &rd.Colors); err != nil {
		return models.SensorReading{}, fmt.Errorf("decode colors of silo %d: %w", id, err)
	}
	rd.SiloID = models.SiloID(id)
	rd.SiloColor = siloColor.String
	rd.ReadAt = rd.ReadAt.UTC()
	return rd, nil
}
