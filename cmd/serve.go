package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"silo_scanner/internal/server"
	"silo_scanner/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const autoRestartCheck = time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	var startNow bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, status stream and scan controller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(opts, nil)
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
			return runServe(ctx, a, startNow)
		},
	}
	cmd.Flags().BoolVar(&startNow, "start", false, "start (or resume) the scan right away")
	return cmd
}

func runServe(ctx context.Context, a *app, startNow bool) error {
	if err := a.services.Scanner.Restore(ctx); err != nil {
		return err
	}

	srv := &server.Server{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Infow("http_server_started", "port", a.cfg.Port)
		return srv.Run(a.cfg.Port, a.handler.InitRoutes())
	})
	if startNow {
		// with the simulator on, the first silo is read from this server
		g.Go(func() error {
			select {
			case <-srv.Ready():
			case <-gctx.Done():
				return nil
			}
			return a.services.Scanner.Start(gctx)
		})
	}
	if a.cfg.Simulator.Enabled {
		g.Go(func() error {
			a.services.Simulator.Run(gctx, a.cfg.Simulator.Tick)
			return nil
		})
	}
	g.Go(func() error {
		service.NewAutoRestarter(a.services.Scanner, a.cfg.Scan.RestartAfter, a.log).Run(gctx, autoRestartCheck)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Infow("shutting down server...")
		a.stopScan()
		return a.shutdownServer(srv)
	})

	return g.Wait()
}
