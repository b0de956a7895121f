package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"silo_scanner/internal/config"
	"silo_scanner/internal/models"
	"silo_scanner/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const progressEvery = time.Second

func newScanCmd(opts *rootOptions) *cobra.Command {
	var fast bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan in the foreground and print progress",
		Long:  "Runs (or resumes) a scan without the API. Ctrl-C stops it and keeps the resume point.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var overrides map[string]any
			if fast {
				overrides = map[string]any{"scan.mode": config.ModeFast}
			}
			cfg, log, err := loadConfig(opts, overrides)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScan(ctx, a, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&fast, "fast", false, "use the fast scan timing preset")
	return cmd
}

func runScan(ctx context.Context, a *app, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	ready := closedChan()
	// the simulated sensor API is served by this process
	if a.cfg.Simulator.Enabled {
		srv := &server.Server{}
		ready = srv.Ready()
		g.Go(func() error { return srv.Run(a.cfg.Port, a.handler.InitRoutes()) })
		g.Go(func() error {
			a.services.Simulator.Run(gctx, a.cfg.Simulator.Tick)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return a.shutdownServer(srv)
		})
	}

	g.Go(func() error {
		defer cancel()
		return watchScan(gctx, a, ready, out)
	})
	return g.Wait()
}

func closedChan() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

// watchScan starts the scan once ready is closed and prints its status until it
// completes or ctx ends.
func watchScan(ctx context.Context, a *app, ready <-chan struct{}, out io.Writer) error {
	sc := a.services.Scanner
	if err := sc.Restore(ctx); err != nil {
		return err
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil
	}
	if err := sc.Start(ctx); err != nil {
		return err
	}

	t := time.NewTicker(progressEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			a.stopScan()
			st := sc.Status()
			fmt.Fprintf(out, "stopped at %d/%d; run scan again to resume\n", st.NextIndex, st.CatalogSize)
			return nil
		case <-t.C:
			st := sc.Status()
			fmt.Fprintln(out, formatStatus(st))
			if st.Phase == models.PhaseCompleted {
				fmt.Fprintf(out, "scan complete: %d silos still disconnected %v\n", st.DisconnectedCount, st.DisconnectedSilos)
				return nil
			}
		}
	}
}

func formatStatus(st models.ScanStatus) string {
	current := "-"
	if st.CurrentSilo != nil {
		current = fmt.Sprintf("%d", *st.CurrentSilo)
	}
	line := fmt.Sprintf("%-14s %6.1f%%  %d/%d  silo %-4s disconnected %d",
		st.Phase, st.ProgressPercent, st.NextIndex, st.CatalogSize, current, st.DisconnectedCount)
	if st.RetryPhase {
		line += fmt.Sprintf("  retry %d/%d", st.RetryCycle, st.MaxRetryCycles)
	}
	return line
}
