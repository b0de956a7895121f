// Package config loads service settings from configs/config.yml, .env and SILO_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModeSlow = "slow"
	ModeFast = "fast"

	DefaultProgressKey = "silo-scanner-auto-test-state"
)

type Config struct {
	Port      string
	Log       LogConfig
	DB        DBConfig
	Sensors   SensorsConfig
	Scan      ScanConfig
	Auth      AuthConfig
	MQTT      MQTTConfig
	Simulator SimulatorConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type DBConfig struct {
	Path string
}

type SensorsConfig struct {
	BaseURL       string
	Endpoint      string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

type ScanConfig struct {
	Mode            string
	TickInterval    time.Duration
	FetchAttempts   int
	FetchBaseDelay  time.Duration
	RetryInterval   time.Duration
	InterCycleDelay time.Duration
	RetryStartDelay time.Duration
	MaxRetryCycles  int
	TestDuration    time.Duration
	RestartAfter    time.Duration
	ProgressKey     string
	LayoutFile      string
	Silos           []int
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// MQTTConfig is optional; an empty Broker disables event publishing.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

type SimulatorConfig struct {
	Enabled      bool
	Tick         time.Duration
	Disconnected []int
	Flaky        []int
	FlakyReads   int
	Seed         int64
}

// modePreset holds the timing of one scan mode.
type modePreset struct {
	tick, retryInterval, interCycle, retryStart time.Duration
	maxRetryCycles                              int
}

var presets = map[string]modePreset{
	// hardware needs ~24s to settle per silo
	ModeSlow: {tick: 24 * time.Second, retryInterval: 24 * time.Second, interCycle: 24 * time.Second, retryStart: 24 * time.Second, maxRetryCycles: 3},
	ModeFast: {tick: 2 * time.Second, retryInterval: 2 * time.Second, interCycle: 2 * time.Second, retryStart: time.Second, maxRetryCycles: 3},
}

// slowTicks maps the slow-mode test duration to the time spent on each silo.
var slowTicks = map[time.Duration]time.Duration{
	time.Hour:     24 * time.Second,
	2 * time.Hour: 48 * time.Second,
	3 * time.Hour: 72 * time.Second,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("sensors.base_url", "http://idealchiprnd.pythonanywhere.com")
	v.SetDefault("sensors.endpoint", "/readings/avg/latest/by-silo-number")
	v.SetDefault("sensors.timeout", 10*time.Second)
	v.SetDefault("sensors.rate_per_second", 5.0)
	v.SetDefault("sensors.burst", 1)
	v.SetDefault("scan.mode", ModeFast)
	v.SetDefault("scan.fetch_attempts", 2)
	v.SetDefault("scan.fetch_base_delay", 500*time.Millisecond)
	v.SetDefault("scan.test_duration", time.Hour)
	v.SetDefault("scan.restart_after", time.Hour)
	v.SetDefault("scan.progress_key", DefaultProgressKey)
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("mqtt.client_id", "silo-scanner")
	v.SetDefault("mqtt.topic", "silos/scan")
	v.SetDefault("simulator.tick", time.Second)
	v.SetDefault("simulator.flaky_reads", 2)
	v.SetDefault("simulator.seed", 1)
}

// Load reads path (a config file or a directory holding config.yml) into v.
// An empty path only applies defaults and environment overrides.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	setDefaults(v)
	v.SetEnvPrefix("SILO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
			v.SetConfigFile(path)
		} else {
			v.AddConfigPath(path)
			v.SetConfigName("config")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper converts already-populated viper settings, applying scan mode presets
// to every timing key not set explicitly.
func FromViper(v *viper.Viper) (*Config, error) {
	mode := strings.ToLower(v.GetString("scan.mode"))
	preset, ok := presets[mode]
	if !ok {
		return nil, fmt.Errorf("unknown scan.mode %q (want %q or %q)", mode, ModeSlow, ModeFast)
	}
	testDuration := v.GetDuration("scan.test_duration")
	if mode == ModeSlow {
		tick, ok := slowTicks[testDuration]
		if !ok {
			return nil, fmt.Errorf("unsupported scan.test_duration %v (want 1h, 2h or 3h)", testDuration)
		}
		preset.tick = tick
	}

	cfg := &Config{
		Port: v.GetString("port"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		DB: DBConfig{Path: v.GetString("db.path")},
		Sensors: SensorsConfig{
			BaseURL:       v.GetString("sensors.base_url"),
			Endpoint:      v.GetString("sensors.endpoint"),
			Timeout:       v.GetDuration("sensors.timeout"),
			RatePerSecond: v.GetFloat64("sensors.rate_per_second"),
			Burst:         v.GetInt("sensors.burst"),
		},
		Scan: ScanConfig{
			Mode:            mode,
			TickInterval:    durationOr(v, "scan.tick_interval", preset.tick),
			FetchAttempts:   v.GetInt("scan.fetch_attempts"),
			FetchBaseDelay:  v.GetDuration("scan.fetch_base_delay"),
			RetryInterval:   durationOr(v, "scan.retry_interval", preset.retryInterval),
			InterCycleDelay: durationOr(v, "scan.inter_cycle_delay", preset.interCycle),
			RetryStartDelay: durationOr(v, "scan.retry_start_delay", preset.retryStart),
			MaxRetryCycles:  preset.maxRetryCycles,
			TestDuration:    testDuration,
			RestartAfter:    v.GetDuration("scan.restart_after"),
			ProgressKey:     v.GetString("scan.progress_key"),
			LayoutFile:      v.GetString("scan.layout_file"),
			Silos:           v.GetIntSlice("scan.silos"),
		},
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		MQTT: MQTTConfig{
			Broker:   v.GetString("mqtt.broker"),
			ClientID: v.GetString("mqtt.client_id"),
			Topic:    v.GetString("mqtt.topic"),
			Username: v.GetString("mqtt.username"),
			Password: v.GetString("mqtt.password"),
		},
		Simulator: SimulatorConfig{
			Enabled:      v.GetBool("simulator.enabled"),
			Tick:         v.GetDuration("simulator.tick"),
			Disconnected: v.GetIntSlice("simulator.disconnected"),
			Flaky:        v.GetIntSlice("simulator.flaky"),
			FlakyReads:   v.GetInt("simulator.flaky_reads"),
			Seed:         v.GetInt64("simulator.seed"),
		},
	}
	if v.IsSet("scan.max_retry_cycles") {
		cfg.Scan.MaxRetryCycles = v.GetInt("scan.max_retry_cycles")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		return v.GetDuration(key)
	}
	return def
}

func (c *Config) validate() error {
	switch {
	case c.Scan.TickInterval <= 0:
		return errors.New("scan.tick_interval must be positive")
	case c.Scan.RetryInterval <= 0:
		return errors.New("scan.retry_interval must be positive")
	case c.Scan.FetchAttempts < 1:
		return errors.New("scan.fetch_attempts must be at least 1")
	case c.Scan.MaxRetryCycles < 0:
		return errors.New("scan.max_retry_cycles must not be negative")
	case c.Scan.ProgressKey == "":
		return errors.New("scan.progress_key must not be empty")
	case c.Sensors.BaseURL == "":
		return errors.New("sensors.base_url must not be empty")
	}
	return nil
}
