package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the complete supervisor configuration.
type Config struct {
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Engine     EngineConfig     `yaml:"engine"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Journal    JournalConfig    `yaml:"journal"`
	Log        LogConfig        `yaml:"log"`
}

// ExchangeConfig names the traded instrument. Credentials never live in
// the file; see CredentialsFromEnv.
type ExchangeConfig struct {
	Symbol    string  `yaml:"symbol"`
	PriceTick float64 `yaml:"price_tick"` // 0 means unknown; prices print with format.DefaultDigits
}

// EngineConfig selects and parameterises the trading engine.
type EngineConfig struct {
	Driver         string        `yaml:"driver"` // only "replay" ships with this module
	KlineInterval  string        `yaml:"kline_interval"`
	MAPeriod       int           `yaml:"ma_period"`
	ReplayFile     string        `yaml:"replay_file"`
	ReplayInterval time.Duration `yaml:"replay_interval"`
}

// SupervisorConfig tunes the event loop.
type SupervisorConfig struct {
	StateSchedule string        `yaml:"state_schedule"` // cron spec, seconds optional
	GraceDelay    time.Duration `yaml:"grace_delay"`
	QueueSize     int           `yaml:"queue_size"`
	Overflow      string        `yaml:"overflow"` // drop-oldest, drop-newest or block
}

// JournalConfig says where the audit trail goes. The daily text log is
// always written; SQLite and CSV mirrors are enabled by setting a path.
type JournalConfig struct {
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
	CSVDir     string `yaml:"csv_dir,omitempty"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"` // console or json
	Development bool   `yaml:"development"`
}

// OverflowPolicies lists the accepted supervisor.overflow values.
var OverflowPolicies = []string{"drop-oldest", "drop-newest", "block"}

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule parses a state_schedule value.
func ParseSchedule(spec string) (cron.Schedule, error) {
	return scheduleParser.Parse(spec)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			Symbol:    "BTCUSDT",
			PriceTick: 0.1,
		},
		Engine: EngineConfig{
			Driver:         "replay",
			KlineInterval:  "15m",
			MAPeriod:       30,
			ReplayFile:     "replay.csv",
			ReplayInterval: time.Second,
		},
		Supervisor: SupervisorConfig{
			StateSchedule: "@every 60s",
			GraceDelay:    200 * time.Millisecond,
			QueueSize:     256,
			Overflow:      "drop-oldest",
		},
		Journal: JournalConfig{
			Dir: "logs",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// LoadFromFile loads a YAML (or JSON, which YAML accepts) file on top of
// Default, so omitted keys keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Exchange.Symbol == "" {
		return fmt.Errorf("exchange.symbol is required")
	}
	if c.Exchange.PriceTick < 0 {
		return fmt.Errorf("exchange.price_tick must not be negative")
	}

	if c.Engine.Driver != "replay" {
		return fmt.Errorf("unknown engine.driver %q", c.Engine.Driver)
	}
	if c.Engine.KlineInterval == "" {
		return fmt.Errorf("engine.kline_interval is required")
	}
	if c.Engine.MAPeriod < 0 {
		return fmt.Errorf("engine.ma_period must not be negative")
	}
	if c.Engine.ReplayFile == "" {
		return fmt.Errorf("engine.replay_file is required for the replay driver")
	}
	if c.Engine.ReplayInterval <= 0 {
		return fmt.Errorf("engine.replay_interval must be positive")
	}

	if _, err := ParseSchedule(c.Supervisor.StateSchedule); err != nil {
		return fmt.Errorf("supervisor.state_schedule: %w", err)
	}
	if c.Supervisor.GraceDelay < 0 {
		return fmt.Errorf("supervisor.grace_delay must not be negative")
	}
	if c.Supervisor.QueueSize <= 0 {
		return fmt.Errorf("supervisor.queue_size must be positive")
	}
	if !validOverflow(c.Supervisor.Overflow) {
		return fmt.Errorf("supervisor.overflow must be one of %v", OverflowPolicies)
	}

	if c.Journal.Dir == "" {
		return fmt.Errorf("journal.dir is required")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Encoding != "console" && c.Log.Encoding != "json" {
		return fmt.Errorf("log.encoding must be 'console' or 'json'")
	}
	return nil
}

// ApplyEnv applies environment overrides that do not belong in the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func validOverflow(s string) bool {
	for _, p := range OverflowPolicies {
		if s == p {
			return true
		}
	}
	return false
}
