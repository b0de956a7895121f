package service

import (
	"context"
	"errors"
	"time"

	"silo_scanner/internal/logger"
	"silo_scanner/internal/models"
)

// AutoRestarter starts a fresh scan once a completed scan is older than After.
// A scan stopped by an operator is never restarted.
type AutoRestarter struct {
	scanner Scanner
	after   time.Duration
	log     *logger.Logger
	now     func() time.Time
}

func NewAutoRestarter(scanner Scanner, after time.Duration, log *logger.Logger) *AutoRestarter {
	return &AutoRestarter{scanner: scanner, after: after, log: log, now: time.Now}
}

// Run checks every tick until ctx is canceled. A non-positive After disables it.
func (a *AutoRestarter) Run(ctx context.Context, tick time.Duration) {
	if a.after <= 0 {
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.check(ctx)
		}
	}
}

// check returns true when it started a scan.
func (a *AutoRestarter) check(ctx context.Context) bool {
	st := a.scanner.Status()
	if st.Phase != models.PhaseCompleted || st.FinishedAt == nil {
		return false
	}
	if a.now().Sub(*st.FinishedAt) < a.after {
		return false
	}
	if err := a.scanner.Start(ctx); err != nil {
		if !errors.Is(err, ErrScanInProgress) {
			a.log.Errorw("scan_auto_restart_failed", "err", err)
		}
		return false
	}
	a.log.Infow("scan_auto_restarted", "finished_at", st.FinishedAt, "after", a.after)
	return true
}
