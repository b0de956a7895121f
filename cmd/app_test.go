package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"silo_scanner/internal/config"
	"silo_scanner/internal/models"
	"silo_scanner/internal/repository"
	"silo_scanner/internal/repository/db"

	"github.com/stretchr/testify/require"
)

func TestBuildCatalog(t *testing.T) {
	explicit, err := buildCatalog(config.ScanConfig{Silos: []int{40, 5}})
	require.NoError(t, err)
	require.Equal(t, []models.SiloID{40, 5}, explicit.AllSilos(), "explicit list is kept as given")
	require.False(t, explicit.Valid())

	def, err := buildCatalog(config.ScanConfig{})
	require.NoError(t, err)
	require.Equal(t, 150, def.Len())

	layout := filepath.Join(t.TempDir(), "silos.yml")
	require.NoError(t, os.WriteFile(layout, []byte(`
sections:
  - name: test
    groups:
      - rows: [[12, 5], [40]]
`), 0o600))
	fromFile, err := buildCatalog(config.ScanConfig{LayoutFile: layout})
	require.NoError(t, err)
	require.Equal(t, []models.SiloID{5, 12, 40}, fromFile.AllSilos())

	_, err = buildCatalog(config.ScanConfig{LayoutFile: filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)
}

func TestSensorBaseURL(t *testing.T) {
	cfg := &config.Config{Port: "9090", Sensors: config.SensorsConfig{BaseURL: "http://sensors.local"}}
	require.Equal(t, "http://sensors.local", sensorBaseURL(cfg))

	cfg.Simulator.Enabled = true
	require.Equal(t, "http://127.0.0.1:9090/sim", sensorBaseURL(cfg))

	require.Equal(t, "http://127.0.0.1:8080", localBaseURL(""))
	require.Equal(t, "http://127.0.0.1:7000", localBaseURL(":7000"))
	require.Equal(t, "http://0.0.0.0:7000", localBaseURL("0.0.0.0:7000"))
}

func TestFormatStatus(t *testing.T) {
	silo := models.SiloID(12)
	line := formatStatus(models.ScanStatus{
		Phase:             models.PhaseRetryScanning,
		CurrentSilo:       &silo,
		ProgressPercent:   115,
		RetryPhase:        true,
		RetryCycle:        1,
		MaxRetryCycles:    3,
		DisconnectedCount: 1,
		NextIndex:         3,
		CatalogSize:       3,
	})
	require.Contains(t, line, "retry_scanning")
	require.Contains(t, line, "115.0%")
	require.Contains(t, line, "silo 12")
	require.Contains(t, line, "retry 1/3")
}

func TestResetCommand_ClearsStoredProgress(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "scan.db")
	cfgPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db:\n  path: "+dbPath+"\nscan:\n  progress_key: test-slot\n"), 0o600))

	conn, err := db.InitDB(dbPath)
	require.NoError(t, err)
	repos := repository.NewRepository(conn, "test-slot")
	require.NoError(t, repos.ProgressRepo.Save(context.Background(), models.ScanProgress{NextIndex: 4}))
	require.NoError(t, conn.Close())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"reset", "--config", cfgPath})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "scan progress cleared")

	conn, err = db.InitDB(dbPath)
	require.NoError(t, err)
	defer conn.Close()
	p, err := repository.NewRepository(conn, "test-slot").ProgressRepo.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestServe_StartReadsFirstSiloFromListeningSimulator(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	body := fmt.Sprintf(`
port: "%s"
log:
  level: error
db:
  path: %s
scan:
  mode: fast
  tick_interval: 20ms
  fetch_attempts: 1
  restart_after: 0s
  silos: [1, 2, 3]
simulator:
  enabled: true
  tick: 1h
`, addr, filepath.Join(dir, "scan.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	cfg, log, err := loadConfig(&rootOptions{configPath: cfgPath}, nil)
	require.NoError(t, err)
	a, err := newApp(cfg, log)
	require.NoError(t, err)
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, a, true) }()

	require.Eventually(t, func() bool {
		return a.services.Scanner.Status().Phase == models.PhaseCompleted
	}, 10*time.Second, 20*time.Millisecond)
	st := a.services.Scanner.Status()
	require.Zero(t, st.DisconnectedCount, "silo 1 was read before the simulator listened: %v", st.DisconnectedSilos)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
