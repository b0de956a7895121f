package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"silo_scanner/internal/catalog"
	"silo_scanner/internal/config"
	"silo_scanner/internal/gateway"
	"silo_scanner/internal/handlers"
	"silo_scanner/internal/logger"
	"silo_scanner/internal/metrics"
	"silo_scanner/internal/models"
	"silo_scanner/internal/notify"
	"silo_scanner/internal/repository"
	"silo_scanner/internal/repository/db"
	"silo_scanner/internal/server"
	"silo_scanner/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// app is the fully wired service shared by serve and scan.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *sql.DB
	services  *service.Service
	handler   *handlers.Handler
	publisher *notify.MQTTPublisher
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	cat, err := buildCatalog(cfg.Scan)
	if err != nil {
		return nil, err
	}

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	a := &app{cfg: cfg, log: log, db: conn}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	gw := gateway.New(gateway.Config{
		BaseURL:       sensorBaseURL(cfg),
		Endpoint:      cfg.Sensors.Endpoint,
		Timeout:       cfg.Sensors.Timeout,
		RatePerSecond: cfg.Sensors.RatePerSecond,
		Burst:         cfg.Sensors.Burst,
	}, log, m)

	deps := service.Deps{
		Repos:   repository.NewRepository(conn, cfg.Scan.ProgressKey),
		Catalog: cat,
		Source:  gw,
		Cache:   gw,
		Metrics: m,
		Scan: service.ScanConfig{
			TickInterval:    cfg.Scan.TickInterval,
			FetchAttempts:   cfg.Scan.FetchAttempts,
			FetchBaseDelay:  cfg.Scan.FetchBaseDelay,
			RetryInterval:   cfg.Scan.RetryInterval,
			InterCycleDelay: cfg.Scan.InterCycleDelay,
			RetryStartDelay: cfg.Scan.RetryStartDelay,
			MaxRetryCycles:  cfg.Scan.MaxRetryCycles,
		},
		Auth: service.AuthConfig{SigningKey: cfg.Auth.SigningKey, TokenTTL: cfg.Auth.TokenTTL},
		Simulator: service.SimulatorConfig{
			Disconnected: toSiloIDs(cfg.Simulator.Disconnected),
			Flaky:        toSiloIDs(cfg.Simulator.Flaky),
			FlakyReads:   cfg.Simulator.FlakyReads,
			Seed:         cfg.Simulator.Seed,
		},
		Log: log,
	}

	if cfg.MQTT.Broker != "" {
		pub, err := notify.NewMQTTPublisher(notify.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		}, log)
		if err != nil {
			// scanning works without notifications
			log.Warnw("mqtt_disabled", "broker", cfg.MQTT.Broker, "err", err)
		} else {
			a.publisher = pub
			deps.Notifier = pub
		}
	}
	if cfg.Auth.SigningKey == "" {
		log.Warnw("auth_signing_key_missing", "hint", "set SILO_AUTH_SIGNING_KEY; sign-in will fail")
	}

	a.services = service.NewService(deps)
	a.handler = handlers.NewHandler(a.services, log, handlers.Options{
		Metrics:   m.Handler(),
		Simulator: cfg.Simulator.Enabled,
	})

	log.Infow("app_initialized",
		"catalog_size", cat.Len(),
		"scan_mode", cfg.Scan.Mode,
		"tick", cfg.Scan.TickInterval,
		"sensors", sensorBaseURL(cfg),
		"simulator", cfg.Simulator.Enabled,
		"mqtt", a.publisher != nil,
	)
	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if err := a.db.Close(); err != nil {
		a.log.Errorw("failed to close sqlite", "err", err)
	}
}

// stopScan persists the resume point; a scan that is not running is fine.
func (a *app) stopScan() {
	err := a.services.Scanner.Stop(context.Background())
	if err != nil && !errors.Is(err, service.ErrScanNotActive) {
		a.log.Errorw("scan_stop_on_shutdown_failed", "err", err)
	}
}

func (a *app) shutdownServer(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// buildCatalog picks, in order: an explicit scan.silos list, a layout file, the built-in yard.
// An explicit list is kept as given and validated when a scan starts.
func buildCatalog(cfg config.ScanConfig) (*catalog.Catalog, error) {
	switch {
	case len(cfg.Silos) > 0:
		return catalog.New(toSiloIDs(cfg.Silos)), nil
	case cfg.LayoutFile != "":
		l, err := catalog.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, fmt.Errorf("load silo layout: %w", err)
		}
		return catalog.FromLayout(l), nil
	default:
		return catalog.Default(), nil
	}
}

// sensorBaseURL points the gateway at this process when the simulator is on.
func sensorBaseURL(cfg *config.Config) string {
	if !cfg.Simulator.Enabled {
		return cfg.Sensors.BaseURL
	}
	return localBaseURL(cfg.Port) + "/sim"
}

func localBaseURL(port string) string {
	switch {
	case port == "":
		return "http://127.0.0.1:8080"
	case strings.HasPrefix(port, ":"):
		return "http://127.0.0.1" + port
	case strings.Contains(port, ":"):
		return "http://" + port
	default:
		return "http://127.0.0.1:" + port
	}
}

func toSiloIDs(ids []int) []models.SiloID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]models.SiloID, len(ids))
	for i, id := range ids {
		out[i] = models.SiloID(id)
	}
	return out
}
