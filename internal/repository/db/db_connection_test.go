package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"silo_scanner/internal/models"
	"silo_scanner/internal/repository"
	"silo_scanner/internal/repository/db"
)

func TestInitDB_ProgressSlotRoundTrip(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "silos.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	repos := repository.NewRepository(conn, "test-slot")

	if p, err := repos.ProgressRepo.Load(ctx); err != nil || p != nil {
		t.Fatalf("empty slot: got %+v, %v", p, err)
	}

	last := models.SiloID(5)
	for i := 1; i <= 2; i++ {
		err := repos.ProgressRepo.Save(ctx, models.ScanProgress{
			Active:            true,
			NextIndex:         i,
			LastCompletedSilo: &last,
			DisconnectedSilos: []models.SiloID{12},
		})
		if err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
	}

	p, err := repos.ProgressRepo.Load(ctx)
	if err != nil || p == nil {
		t.Fatalf("Load: %+v, %v", p, err)
	}
	if p.NextIndex != 2 || len(p.DisconnectedSilos) != 1 {
		t.Fatalf("slot not overwritten: %+v", p)
	}

	if err := repos.ProgressRepo.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if p, _ := repos.ProgressRepo.Load(ctx); p != nil {
		t.Fatalf("slot should be empty after Clear, got %+v", p)
	}
}

func TestInitDB_ReadingsAndEvents(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "silos.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	repos := repository.NewRepository(conn, "test-slot")

	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	if err := repos.ReadingRepo.Upsert(ctx, models.DisconnectedReading(12, at)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	connected := models.SensorReading{SiloID: 12, Values: [8]float64{30, 29, 28, 27, 26, 25, 24, 23}, ReadAt: at.Add(time.Minute)}
	if err := repos.ReadingRepo.Upsert(ctx, connected); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repos.ReadingRepo.Get(ctx, 12)
	if err != nil || got == nil {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	if got.Disconnected || got.Values[0] != 30 {
		t.Fatalf("latest reading should replace the previous one: %+v", got)
	}

	id := models.SiloID(12)
	if err := repos.EventRepo.Append(ctx, models.ScanEvent{Type: models.EventSiloDisconnected, SiloID: &id, Description: "silo 12"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	events, err := repos.EventRepo.List(ctx, time.Time{}, time.Time{}, "silo_disconnected")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 || events[0].SiloID == nil || *events[0].SiloID != 12 {
		t.Fatalf("unexpected events %+v", events)
	}
}
