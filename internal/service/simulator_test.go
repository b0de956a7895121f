package service

import (
	"context"
	"testing"
	"time"

	"silo_scanner/internal/gateway"
	"silo_scanner/internal/models"
)

func TestSimulatorReading_SortedAndWithinSpread(t *testing.T) {
	svc := NewSimulatorService(SimulatorConfig{Seed: 42})

	r := svc.Reading(7)
	if r.SiloNumber != 7 {
		t.Fatalf("silo number = %d", r.SiloNumber)
	}
	levels := r.Levels()
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1] {
			t.Fatalf("levels not sorted descending: %v", levels)
		}
	}
	if levels[0]-levels[len(levels)-1] > 2*SensorSpreadC+0.1 {
		t.Fatalf("spread too wide: %v", levels)
	}
	if levels[len(levels)-1] < MinBaseTempC-SensorSpreadC-0.1 || levels[0] > MaxBaseTempC+SensorSpreadC+0.1 {
		t.Fatalf("levels out of range: %v", levels)
	}
	if r.SiloColor != gateway.ColorFor(levels[0]) {
		t.Fatalf("silo color %q does not follow the hottest sensor", r.SiloColor)
	}
	if got := r.ToReading(time.Now()); got.Disconnected {
		t.Fatalf("simulated silo should be connected")
	}
}

func TestSimulatorReading_DeterministicWithSeed(t *testing.T) {
	a := NewSimulatorService(SimulatorConfig{Seed: 7}).Reading(12)
	b := NewSimulatorService(SimulatorConfig{Seed: 7}).Reading(12)
	if a.Levels() != b.Levels() {
		t.Fatalf("same seed should give same levels: %v vs %v", a.Levels(), b.Levels())
	}
}

func TestSimulatorReading_DisconnectedAndFlaky(t *testing.T) {
	svc := NewSimulatorService(SimulatorConfig{
		Disconnected: []models.SiloID{12},
		Flaky:        []models.SiloID{40},
		FlakyReads:   2,
		Seed:         1,
	})

	for i := 0; i < 3; i++ {
		if !svc.Reading(12).IsDisconnected() {
			t.Fatalf("silo 12 must always be disconnected (read %d)", i+1)
		}
	}

	if !svc.Reading(40).IsDisconnected() || !svc.Reading(40).IsDisconnected() {
		t.Fatalf("flaky silo should be offline for its first two reads")
	}
	if svc.Reading(40).IsDisconnected() {
		t.Fatalf("flaky silo should recover on the third read")
	}
}

func TestSimulatorDrift_StaysInBounds(t *testing.T) {
	svc := NewSimulatorService(SimulatorConfig{Seed: 3})
	svc.Reading(1)
	for i := 0; i < 10000; i++ {
		svc.drift()
	}
	if b := svc.base[1]; b < MinDriftTempC || b > MaxDriftTempC {
		t.Fatalf("base drifted out of bounds: %v", b)
	}
}

func TestSimulatorRun_StopsOnCancel(t *testing.T) {
	svc := NewSimulatorService(SimulatorConfig{Seed: 3})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
