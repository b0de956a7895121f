package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"silo_scanner/internal/catalog"
	"silo_scanner/internal/logger"
	"silo_scanner/internal/metrics"
	"silo_scanner/internal/models"
	"silo_scanner/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidCatalog = errors.New("silo catalog is invalid")
	ErrScanInProgress = errors.New("scan already in progress")
	ErrScanNotActive  = errors.New("no active scan")
	ErrUnknownSilo    = errors.New("silo is not in the catalog")
)

const (
	retryProgressBase  = 100.0
	retryProgressSpan  = 30.0
	retryProgressLimit = 130.0

	persistTimeout = 5 * time.Second
)

// Controller is the scan state machine. All state lives behind mu; timer callbacks
// carry the epoch they were armed in and do nothing once the epoch has moved on.
type Controller struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	source   SensorSource
	progress repository.ProgressRepo
	events   repository.EventRepo
	readings repository.ReadingRepo
	notifier Notifier
	metrics  *metrics.Metrics
	sched    Scheduler
	cfg      ScanConfig
	log      *logger.Logger
	now      func() time.Time

	phase       models.ScanPhase
	timer       Timer
	epoch       uint64
	processing  bool
	cancelFetch context.CancelFunc
	outbox      []models.ScanEvent

	runID         string
	nextIndex     int
	lastCompleted *models.SiloID
	current       *models.SiloID
	progressPct   float64
	disconnected  []models.SiloID
	startedAt     *time.Time
	finishedAt    *time.Time

	inRetry    bool
	retryCycle int // cycle running, or the next one while pending
	retryQueue []models.SiloID
	retryIndex int
	stillDown  []models.SiloID
}

// NewController builds an idle controller. readings, notifier and m may be nil.
func NewController(
	cat *catalog.Catalog,
	source SensorSource,
	progress repository.ProgressRepo,
	events repository.EventRepo,
	readings repository.ReadingRepo,
	notifier Notifier,
	m *metrics.Metrics,
	cfg ScanConfig,
	log *logger.Logger,
) *Controller {
	return &Controller{
		catalog:  cat,
		source:   source,
		progress: progress,
		events:   events,
		readings: readings,
		notifier: notifier,
		metrics:  m,
		sched:    realScheduler{},
		cfg:      withDefaults(cfg),
		log:      log,
		now:      time.Now,
		phase:    models.PhaseIdle,
	}
}

func withDefaults(cfg ScanConfig) ScanConfig {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 2 * time.Second
	}
	if cfg.FetchAttempts < 1 {
		cfg.FetchAttempts = 2
	}
	if cfg.FetchBaseDelay <= 0 {
		cfg.FetchBaseDelay = 500 * time.Millisecond
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 2 * time.Second
	}
	if cfg.InterCycleDelay < 0 {
		cfg.InterCycleDelay = 0
	}
	if cfg.RetryStartDelay < 0 {
		cfg.RetryStartDelay = 0
	}
	if cfg.MaxRetryCycles < 0 {
		cfg.MaxRetryCycles = 0
	}
	return cfg
}

// SetScheduler swaps the timer source. Call before Start.
func (c *Controller) SetScheduler(s Scheduler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched = s
}

func (c *Controller) Catalog() []models.SiloID {
	return c.catalog.AllSilos()
}

// Start resumes a stored scan when it is still valid for the catalog, otherwise starts fresh.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if err := c.catalog.Validate(); err != nil {
		c.log.Errorw("scan_catalog_invalid", "err", err)
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if c.phase.Running() {
		return ErrScanInProgress
	}

	c.haltLocked()

	stored, err := c.progress.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrCorruptProgress):
		c.discardStoredLocked(ctx, "corrupt", map[string]any{"err": err.Error()})
		stored = nil
	case err != nil:
		return fmt.Errorf("load scan progress: %w", err)
	}

	resumed := false
	if resumable(stored) {
		if problem := c.resumeProblem(stored); problem != "" {
			c.discardStoredLocked(ctx, problem, map[string]any{
				"next_index":   stored.NextIndex,
				"catalog_size": c.catalog.Len(),
			})
		} else {
			c.restoreLocked(stored)
			resumed = true
		}
	}
	if !resumed {
		c.resetStateLocked()
		c.runID = uuid.NewString()
	}

	now := c.now().UTC()
	c.startedAt = &now
	c.finishedAt = nil

	if c.inRetry {
		c.phase = models.PhaseRetryPending
		c.scheduleLocked(0, c.onRetryCycleStart)
	} else {
		c.phase = models.PhaseScanning
		c.scheduleLocked(0, c.onTick)
	}
	c.saveLocked()
	c.publishMetricsLocked()

	if resumed {
		c.log.Infow("scan_resumed", "run_id", c.runID, "next_index", c.nextIndex, "retry_phase", c.inRetry, "retry_cycle", c.retryCycle)
		c.recordLocked(models.EventScanResume, nil, fmt.Sprintf("scan resumed at position %d of %d", c.nextIndex, c.catalog.Len()), c.progressMeta())
	} else {
		c.log.Infow("scan_started", "run_id", c.runID, "catalog_size", c.catalog.Len())
		c.recordLocked(models.EventScanStart, nil, fmt.Sprintf("scan started over %d silos", c.catalog.Len()), c.progressMeta())
	}
	return nil
}

// Stop cancels the pending timer and any in-flight fetch, then persists the resume point.
// No tick runs after Stop returns.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if !c.phase.Running() {
		return ErrScanNotActive
	}
	c.haltLocked()
	c.current = nil
	c.retryQueue = nil
	c.phase = models.PhaseStopped
	c.saveLocked()
	c.publishMetricsLocked()

	c.log.Infow("scan_stopped", "run_id", c.runID, "next_index", c.nextIndex, "retry_phase", c.inRetry)
	c.recordLocked(models.EventScanStop, nil, fmt.Sprintf("scan stopped at position %d of %d", c.nextIndex, c.catalog.Len()), c.progressMeta())
	return nil
}

// Reset aborts any scan, forgets the stored resume point and the gateway cache.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.unlockAndNotify()

	c.haltLocked()
	if err := c.progress.Clear(ctx); err != nil {
		return fmt.Errorf("clear scan progress: %w", err)
	}
	c.source.ClearCache()
	c.resetStateLocked()
	c.phase = models.PhaseIdle
	c.publishMetricsLocked()

	c.log.Infow("scan_reset")
	c.recordLocked(models.EventScanReset, nil, "scan state reset", nil)
	return nil
}

// Restore loads the stored record at startup without scheduling anything:
// a resumable record leaves the controller stopped, a completed one completed.
func (c *Controller) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase.Running() {
		return ErrScanInProgress
	}
	stored, err := c.progress.Load(ctx)
	if errors.Is(err, repository.ErrCorruptProgress) {
		// Start discards and reports it
		c.log.Warnw("scan_progress_corrupt", "err", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load scan progress: %w", err)
	}
	switch {
	case stored == nil:
		return nil
	case stored.Completed:
		c.restoreLocked(stored)
		c.phase = models.PhaseCompleted
		finished := stored.UpdatedAt
		c.finishedAt = &finished
	case resumable(stored) && c.resumeProblem(stored) == "":
		c.restoreLocked(stored)
		c.phase = models.PhaseStopped
	default:
		return nil
	}
	c.publishMetricsLocked()
	c.log.Infow("scan_state_restored", "phase", c.phase, "next_index", c.nextIndex, "disconnected", len(c.disconnected))
	return nil
}

// Status returns a snapshot for observers.
func (c *Controller) Status() models.ScanStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := models.ScanStatus{
		Phase:             c.phase,
		RunID:             c.runID,
		ProgressPercent:   c.progressPct,
		Active:            c.phase.Running(),
		RetryPhase:        c.inRetry,
		RetryCycle:        c.retryCycle,
		MaxRetryCycles:    c.cfg.MaxRetryCycles,
		DisconnectedSilos: append([]models.SiloID{}, c.disconnected...),
		DisconnectedCount: len(c.disconnected),
		NextIndex:         c.nextIndex,
		CatalogSize:       c.catalog.Len(),
	}
	if c.current != nil {
		id := *c.current
		st.CurrentSilo = &id
	}
	if c.startedAt != nil {
		t := *c.startedAt
		st.StartedAt = &t
	}
	if c.finishedAt != nil {
		t := *c.finishedAt
		st.FinishedAt = &t
	}
	return st
}

// Inspect fetches one silo for display. Scan position, timer and disconnected list are untouched.
func (c *Controller) Inspect(ctx context.Context, id models.SiloID) (models.SensorReading, error) {
	if !c.catalog.Contains(id) {
		return models.SensorReading{}, fmt.Errorf("%w: %d", ErrUnknownSilo, id)
	}
	reading := c.source.FetchWithRetry(ctx, id, c.cfg.FetchAttempts, c.cfg.FetchBaseDelay)
	if err := ctx.Err(); err != nil {
		return models.SensorReading{}, err
	}
	if c.readings != nil {
		if err := c.readings.Upsert(ctx, reading); err != nil {
			c.log.Errorw("reading_store_failed", "silo", id, "err", err)
		}
	}
	c.log.Debugw("silo_inspected", "silo", id, "disconnected", reading.Disconnected)
	return reading, nil
}

// ----- main pass -----

func (c *Controller) onTick(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.phase != models.PhaseScanning {
		c.mu.Unlock()
		return
	}
	// interval semantics: the next firing is armed before this one does any work
	c.scheduleLocked(c.cfg.TickInterval, c.onTick)
	if c.processing {
		c.log.Warnw("scan_tick_skipped", "next_index", c.nextIndex)
		c.mu.Unlock()
		return
	}

	if c.nextIndex >= c.catalog.Len() {
		c.finishMainPassLocked()
		c.unlockAndNotify()
		return
	}

	idx := c.nextIndex
	silo, _ := c.catalog.At(idx)
	c.current = &silo
	reading, ok := c.fetchUnlocked(epoch, silo)
	if !ok {
		c.unlockAndNotify()
		return
	}

	if reading.Disconnected && !containsSilo(c.disconnected, silo) {
		c.disconnected = append(c.disconnected, silo)
	}
	c.lastCompleted = &silo
	c.nextIndex = idx + 1
	c.progressPct = float64(idx+1) / float64(c.catalog.Len()) * 100
	c.saveLocked()
	c.storeReadingLocked(reading)
	c.metrics.SiloScanned(reading.Disconnected)
	c.publishMetricsLocked()

	if reading.Disconnected {
		c.log.Warnw("silo_disconnected", "silo", silo, "next_index", c.nextIndex)
		c.recordLocked(models.EventSiloDisconnected, &silo, fmt.Sprintf("silo %d disconnected", silo), map[string]any{"run_id": c.runID})
	}
	c.unlockAndNotify()
}

func (c *Controller) finishMainPassLocked() {
	c.current = nil
	if len(c.disconnected) == 0 || c.cfg.MaxRetryCycles == 0 {
		c.completeLocked()
		return
	}
	c.inRetry = true
	c.retryCycle = 1
	c.phase = models.PhaseRetryPending
	c.saveLocked()
	c.publishMetricsLocked()
	c.scheduleLocked(c.cfg.RetryStartDelay, c.onRetryCycleStart)
	c.log.Infow("scan_retry_phase_started", "run_id", c.runID, "disconnected", len(c.disconnected), "max_cycles", c.cfg.MaxRetryCycles)
}

// ----- retry phase -----

func (c *Controller) onRetryCycleStart(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.phase != models.PhaseRetryPending {
		c.mu.Unlock()
		return
	}
	c.retryQueue = append([]models.SiloID(nil), c.disconnected...)
	c.retryIndex = 0
	c.stillDown = nil
	c.phase = models.PhaseRetryScanning
	c.scheduleLocked(0, c.onRetryTick)
	c.log.Infow("scan_retry_cycle_started", "cycle", c.retryCycle, "silos", c.retryQueue)
	c.recordLocked(models.EventRetryCycle, nil, fmt.Sprintf("retry cycle %d started for %d silos", c.retryCycle, len(c.retryQueue)), map[string]any{
		"cycle": c.retryCycle,
		"silos": c.retryQueue,
	})
	c.unlockAndNotify()
}

func (c *Controller) onRetryTick(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.phase != models.PhaseRetryScanning {
		c.mu.Unlock()
		return
	}
	c.scheduleLocked(c.cfg.RetryInterval, c.onRetryTick)
	if c.processing {
		c.log.Warnw("scan_tick_skipped", "retry_cycle", c.retryCycle, "retry_index", c.retryIndex)
		c.mu.Unlock()
		return
	}
	if c.retryIndex >= len(c.retryQueue) {
		c.finishRetryCycleLocked()
		c.unlockAndNotify()
		return
	}

	idx := c.retryIndex
	silo := c.retryQueue[idx]
	c.current = &silo
	reading, ok := c.fetchUnlocked(epoch, silo)
	if !ok {
		c.unlockAndNotify()
		return
	}

	if reading.Disconnected {
		c.stillDown = append(c.stillDown, silo)
	} else {
		c.log.Infow("silo_reconnected", "silo", silo, "cycle", c.retryCycle)
	}
	c.retryIndex = idx + 1
	// confirmed-down silos of this cycle followed by the ones not retried yet
	c.disconnected = append(append([]models.SiloID{}, c.stillDown...), c.retryQueue[c.retryIndex:]...)
	c.progressPct = retryProgress(c.retryCycle, idx, len(c.retryQueue))
	c.storeReadingLocked(reading)
	c.metrics.SiloScanned(reading.Disconnected)

	if c.retryIndex >= len(c.retryQueue) {
		c.finishRetryCycleLocked()
	} else {
		c.saveLocked()
		c.publishMetricsLocked()
	}
	c.unlockAndNotify()
}

func (c *Controller) finishRetryCycleLocked() {
	c.current = nil
	c.disconnected = append([]models.SiloID{}, c.stillDown...)
	c.retryQueue = nil
	c.stillDown = nil
	c.log.Infow("scan_retry_cycle_finished", "cycle", c.retryCycle, "still_disconnected", c.disconnected)

	if len(c.disconnected) == 0 || c.retryCycle >= c.cfg.MaxRetryCycles {
		c.completeLocked()
		return
	}
	c.retryCycle++
	c.phase = models.PhaseRetryPending
	c.saveLocked()
	c.publishMetricsLocked()
	c.scheduleLocked(c.cfg.InterCycleDelay, c.onRetryCycleStart)
}

// retryProgress maps position idx of a cycle to 100..130.
func retryProgress(cycle, idx, size int) float64 {
	if size == 0 {
		return retryProgressLimit
	}
	p := retryProgressBase + float64(cycle-1)*retryProgressSpan + float64(idx+1)/float64(size)*retryProgressSpan
	if p > retryProgressLimit {
		return retryProgressLimit
	}
	return p
}

// ----- shared helpers -----

// fetchUnlocked releases mu for the duration of the fetch. It returns ok=false,
// with mu held again, when the scan was stopped or reset meanwhile.
func (c *Controller) fetchUnlocked(epoch uint64, silo models.SiloID) (models.SensorReading, bool) {
	fetchCtx, cancel := context.WithCancel(context.Background())
	c.processing = true
	c.cancelFetch = cancel
	attempts, delay := c.cfg.FetchAttempts, c.cfg.FetchBaseDelay
	c.mu.Unlock()

	reading := c.source.FetchWithRetry(fetchCtx, silo, attempts, delay)
	cancel()

	c.mu.Lock()
	if epoch != c.epoch {
		c.log.Debugw("scan_fetch_discarded", "silo", silo)
		return models.SensorReading{}, false
	}
	c.processing = false
	c.cancelFetch = nil
	return reading, true
}

func (c *Controller) completeLocked() {
	c.cancelTimerLocked()
	c.phase = models.PhaseCompleted
	c.current = nil
	now := c.now().UTC()
	c.finishedAt = &now
	if !c.inRetry {
		c.progressPct = 100
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if len(c.disconnected) == 0 {
		if err := c.progress.Clear(ctx); err != nil {
			c.log.Errorw("scan_progress_clear_failed", "err", err)
		}
	} else {
		c.saveLocked()
	}
	c.publishMetricsLocked()

	c.log.Infow("scan_completed", "run_id", c.runID, "retry_cycles", c.retryCycle, "still_disconnected", c.disconnected)
	c.recordLocked(models.EventScanComplete, nil,
		fmt.Sprintf("scan completed, %d silos still disconnected", len(c.disconnected)),
		map[string]any{"run_id": c.runID, "disconnected_silos": append([]models.SiloID{}, c.disconnected...), "retry_cycles": c.retryCycle})
}

// scheduleLocked replaces the single timer handle.
func (c *Controller) scheduleLocked(d time.Duration, fn func(epoch uint64)) {
	c.cancelTimerLocked()
	epoch := c.epoch
	c.timer = c.sched.AfterFunc(d, func() { fn(epoch) })
}

func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// haltLocked invalidates every armed timer and in-flight fetch.
func (c *Controller) haltLocked() {
	c.cancelTimerLocked()
	c.epoch++
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.processing = false
}

func (c *Controller) resetStateLocked() {
	c.runID = ""
	c.nextIndex = 0
	c.lastCompleted = nil
	c.current = nil
	c.progressPct = 0
	c.disconnected = nil
	c.startedAt = nil
	c.finishedAt = nil
	c.inRetry = false
	c.retryCycle = 0
	c.retryQueue = nil
	c.retryIndex = 0
	c.stillDown = nil
}

func (c *Controller) restoreLocked(p *models.ScanProgress) {
	c.resetStateLocked()
	c.runID = p.RunID
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	c.nextIndex = p.NextIndex
	if p.LastCompletedSilo != nil {
		id := *p.LastCompletedSilo
		c.lastCompleted = &id
	}
	c.progressPct = p.ProgressPercent
	c.disconnected = append([]models.SiloID(nil), p.DisconnectedSilos...)
	c.inRetry = p.RetryPhase
	if c.inRetry {
		c.retryCycle = p.RetryCount
		if c.retryCycle < 1 {
			c.retryCycle = 1
		}
	}
}

func resumable(p *models.ScanProgress) bool {
	return p != nil && !p.Completed && (p.Active || p.NextIndex > 0 || p.RetryPhase)
}

// resumeProblem returns why p cannot be resumed against the catalog, or "".
func (c *Controller) resumeProblem(p *models.ScanProgress) string {
	n := c.catalog.Len()
	if p.NextIndex < 0 || p.NextIndex > n {
		return fmt.Sprintf("next index %d outside catalog of %d silos", p.NextIndex, n)
	}
	if p.LastCompletedSilo != nil {
		if p.NextIndex == 0 {
			return "last completed silo recorded without progress"
		}
		if at, _ := c.catalog.At(p.NextIndex - 1); at != *p.LastCompletedSilo {
			return fmt.Sprintf("last completed silo %d does not match catalog position %d", *p.LastCompletedSilo, p.NextIndex-1)
		}
	}
	seen := make(map[models.SiloID]struct{}, len(p.DisconnectedSilos))
	for _, id := range p.DisconnectedSilos {
		i, ok := c.catalog.IndexOf(id)
		if !ok {
			return fmt.Sprintf("disconnected silo %d not in catalog", id)
		}
		if i >= p.NextIndex {
			return fmt.Sprintf("disconnected silo %d not reached yet", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Sprintf("disconnected silo %d listed twice", id)
		}
		seen[id] = struct{}{}
	}
	if p.RetryCount < 0 {
		return "negative retry count"
	}
	if p.RetryPhase {
		switch {
		case p.NextIndex != n:
			return "retry phase before the main pass finished"
		case len(p.DisconnectedSilos) == 0:
			return "retry phase without disconnected silos"
		case p.RetryCount > c.cfg.MaxRetryCycles:
			return fmt.Sprintf("retry cycle %d beyond limit %d", p.RetryCount, c.cfg.MaxRetryCycles)
		}
	}
	return ""
}

// discardStoredLocked reports a stored record that cannot be resumed and clears the slot.
func (c *Controller) discardStoredLocked(ctx context.Context, reason string, meta map[string]any) {
	c.log.Warnw("scan_resume_discarded", "reason", reason, "detail", meta)
	c.recordLocked(models.EventResumeDiscarded, nil, "stored scan state discarded: "+reason, meta)
	if err := c.progress.Clear(ctx); err != nil {
		c.log.Errorw("scan_progress_clear_failed", "err", err)
	}
}

// saveLocked overwrites the stored record with the current state.
func (c *Controller) saveLocked() {
	p := models.ScanProgress{
		Active:            c.phase.Running(),
		NextIndex:         c.nextIndex,
		ProgressPercent:   c.progressPct,
		DisconnectedSilos: append([]models.SiloID{}, c.disconnected...),
		RetryCount:        c.retryCycle,
		RetryPhase:        c.inRetry,
		Completed:         c.phase == models.PhaseCompleted,
		RunID:             c.runID,
		UpdatedAt:         c.now().UTC(),
	}
	if c.lastCompleted != nil {
		id := *c.lastCompleted
		p.LastCompletedSilo = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.progress.Save(ctx, p); err != nil {
		c.log.Errorw("scan_progress_save_failed", "next_index", p.NextIndex, "err", err)
	}
}

func (c *Controller) storeReadingLocked(r models.SensorReading) {
	if c.readings == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.readings.Upsert(ctx, r); err != nil {
		c.log.Errorw("reading_store_failed", "silo", r.SiloID, "err", err)
	}
}

// recordLocked appends to the event log and queues the event for the notifier.
func (c *Controller) recordLocked(typ string, silo *models.SiloID, msg string, meta any) {
	ev := models.ScanEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  c.now().UTC(),
		Type:        typ,
		SiloID:      silo,
		Description: msg,
		Metadata:    meta,
	}
	if c.events != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.events.Append(ctx, ev); err != nil {
			c.log.Errorw("scan_event_append_failed", "type", typ, "err", err)
		}
	}
	if c.notifier != nil {
		c.outbox = append(c.outbox, ev)
	}
}

// unlockAndNotify releases mu and then hands queued events to the notifier.
func (c *Controller) unlockAndNotify() {
	pending := c.outbox
	c.outbox = nil
	notifier := c.notifier
	c.mu.Unlock()

	for _, ev := range pending {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := notifier.Publish(ctx, ev); err != nil {
			c.log.Warnw("scan_event_publish_failed", "type", ev.Type, "err", err)
		}
		cancel()
	}
}

func (c *Controller) publishMetricsLocked() {
	c.metrics.SetScanState(c.progressPct, len(c.disconnected), c.retryCycle)
}

func (c *Controller) progressMeta() map[string]any {
	return map[string]any{
		"run_id":       c.runID,
		"next_index":   c.nextIndex,
		"retry_phase":  c.inRetry,
		"retry_cycle":  c.retryCycle,
		"disconnected": len(c.disconnected),
	}
}

func containsSilo(ids []models.SiloID, id models.SiloID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
