package service

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"silo_scanner/internal/gateway"
	"silo_scanner/internal/models"
)

// ----------- Simulation constants -----------
const (
	MinBaseTempC   = 20.0 // lowest starting grain temperature °C
	MaxBaseTempC   = 50.0 // highest starting grain temperature °C
	SensorSpreadC  = 2.0  // ± spread of the eight sensors around the base
	DriftPerTickC  = 0.2  // max base temperature change per Run tick
	MinDriftTempC  = 15.0
	MaxDriftTempC  = 55.0
	offlineSiloHex = "#9ca3af"
)

type SimulatorConfig struct {
	Disconnected []models.SiloID // always offline
	Flaky        []models.SiloID // offline for their first FlakyReads reads
	FlakyReads   int
	Seed         int64
}

// SimulatorService generates sensor API readings for a fake grain yard.
type SimulatorService struct {
	mu           sync.Mutex
	rnd          *rand.Rand
	base         map[models.SiloID]float64
	disconnected map[models.SiloID]bool
	flaky        map[models.SiloID]int // remaining offline reads
	now          func() time.Time
}

// NewSimulatorService returns a simulator with defaults.
func NewSimulatorService(cfg SimulatorConfig) *SimulatorService {
	s := &SimulatorService{
		rnd:          rand.New(rand.NewSource(cfg.Seed)),
		base:         make(map[models.SiloID]float64),
		disconnected: make(map[models.SiloID]bool, len(cfg.Disconnected)),
		flaky:        make(map[models.SiloID]int, len(cfg.Flaky)),
		now:          time.Now,
	}
	for _, id := range cfg.Disconnected {
		s.disconnected[id] = true
	}
	for _, id := range cfg.Flaky {
		s.flaky[id] = cfg.FlakyReads
	}
	return s
}

// Run drifts base temperatures at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.drift()
		}
	}
}

func (s *SimulatorService) drift() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, temp := range s.base {
		temp += (s.rnd.Float64()*2 - 1) * DriftPerTickC
		s.base[id] = math.Min(MaxDriftTempC, math.Max(MinDriftTempC, temp))
	}
}

// Reading returns the API shape for one silo.
func (s *SimulatorService) Reading(id models.SiloID) gateway.APIReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := gateway.APIReading{
		SiloGroup:  "SIM",
		SiloNumber: int(id),
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	}

	if s.disconnected[id] {
		out.SiloColor = offlineSiloHex
		return out
	}
	if left := s.flaky[id]; left > 0 {
		s.flaky[id] = left - 1
		out.SiloColor = offlineSiloHex
		return out
	}

	base, ok := s.base[id]
	if !ok {
		base = MinBaseTempC + s.rnd.Float64()*(MaxBaseTempC-MinBaseTempC)
		s.base[id] = base
	}

	levels := make([]float64, models.SensorCount)
	for i := range levels {
		v := base + (s.rnd.Float64()*2-1)*SensorSpreadC
		levels[i] = math.Round(v*10) / 10
	}
	// hottest sensor first, as the hardware reports it
	sort.Sort(sort.Reverse(sort.Float64Slice(levels)))

	for i, v := range levels {
		out.SetSensor(i, v, gateway.ColorFor(v))
	}
	out.SiloColor = gateway.ColorFor(levels[0])
	return out
}
