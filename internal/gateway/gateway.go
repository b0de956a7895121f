// Package gateway reads silo sensors from the remote sensor API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"silo_scanner/internal/logger"
	"silo_scanner/internal/metrics"
	"silo_scanner/internal/models"

	"golang.org/x/time/rate"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected status from sensor api")
	ErrNoData            = errors.New("sensor api returned no reading")
	ErrMalformedResponse = errors.New("malformed sensor api response")
)

type Config struct {
	BaseURL       string
	Endpoint      string
	Timeout       time.Duration
	RatePerSecond float64 // 0 disables rate limiting
	Burst         int
}

// Gateway fetches readings and keeps the last reading per silo.
type Gateway struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	cache map[models.SiloID]models.SensorReading

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, log *logger.Logger, m *metrics.Metrics) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     log,
		metrics: m,
		cache:   make(map[models.SiloID]models.SensorReading),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (g *Gateway) requestURL(id models.SiloID) string {
	q := url.Values{}
	q.Set("silo_number", strconv.Itoa(int(id)))
	return g.cfg.BaseURL + g.cfg.Endpoint + "?" + q.Encode()
}

// Fetch performs a single request. Unlike FetchWithRetry it reports failures as errors.
func (g *Gateway) Fetch(ctx context.Context, id models.SiloID) (models.SensorReading, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return models.SensorReading{}, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	reading, err := g.fetch(ctx, id)
	g.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		return models.SensorReading{}, err
	}

	g.mu.Lock()
	g.cache[id] = reading
	g.mu.Unlock()
	return reading, nil
}

func (g *Gateway) fetch(ctx context.Context, id models.SiloID) (models.SensorReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.requestURL(id), nil)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("get silo %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.SensorReading{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body []APIReading
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.SensorReading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(body) == 0 {
		return models.SensorReading{}, ErrNoData
	}
	if body[0].SiloNumber != int(id) {
		return models.SensorReading{}, fmt.Errorf("%w: asked for silo %d, got %d", ErrMalformedResponse, id, body[0].SiloNumber)
	}
	return body[0].ToReading(g.now()), nil
}

// FetchWithRetry drops any cached reading for id and tries up to maxAttempts times,
// waiting baseDelay*2^(attempt-1) between attempts. It never fails: when every attempt
// errors it returns (and caches) a disconnected reading.
func (g *Gateway) FetchWithRetry(ctx context.Context, id models.SiloID, maxAttempts int, baseDelay time.Duration) models.SensorReading {
	g.Invalidate(id)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reading, err := g.Fetch(ctx, id)
		if err == nil {
			return reading
		}
		lastErr = err
		g.log.Warnw("sensor_fetch_attempt_failed", "silo", id, "attempt", attempt, "max_attempts", maxAttempts, "err", err)

		if attempt == maxAttempts {
			break
		}
		if err := g.sleep(ctx, baseDelay<<(attempt-1)); err != nil {
			lastErr = err
			break
		}
	}

	reading := models.DisconnectedReading(id, g.now())
	if ctx.Err() != nil {
		// cancelled: the caller discards this, do not cache it
		return reading
	}
	g.log.Errorw("sensor_fetch_exhausted", "silo", id, "attempts", maxAttempts, "err", lastErr)
	g.mu.Lock()
	g.cache[id] = reading
	g.mu.Unlock()
	return reading
}

// Cached returns the last reading seen for id.
func (g *Gateway) Cached(id models.SiloID) (models.SensorReading, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.cache[id]
	return r, ok
}

func (g *Gateway) Invalidate(id models.SiloID) {
	g.mu.Lock()
	delete(g.cache, id)
	g.mu.Unlock()
}

func (g *Gateway) ClearCache() {
	g.mu.Lock()
	g.cache = make(map[models.SiloID]models.SensorReading)
	g.mu.Unlock()
}
