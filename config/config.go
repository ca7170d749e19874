package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	golobby "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

const (
	defaultAddr            = "0.0.0.0:8765"
	defaultDbPath          = "mediabridge.db"
	defaultBridgeTimeout   = 30 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultHistoryInterval = 15 * time.Second
)

type Config struct {
	Bridge  BridgeConfig
	Server  ServerConfig
	History HistoryConfig
}

type BridgeConfig struct {
	AllowedApps     string `env:"BRIDGE_ALLOWED_APPS"`
	ControlTimeout  string `env:"BRIDGE_CONTROL_TIMEOUT"`
	MetadataTimeout string `env:"BRIDGE_METADATA_TIMEOUT"`
	PeerURL         string `env:"BRIDGE_PEER_URL"`
	RequestTimeout  string `env:"BRIDGE_REQUEST_TIMEOUT"`
	SessionTimeout  string `env:"BRIDGE_SESSION_TIMEOUT"`
}

type ServerConfig struct {
	Addr     string `env:"BRIDGE_ADDR"`
	LogLevel string `env:"LOG_LEVEL"`
}

type HistoryConfig struct {
	DbPath   string `env:"DB_PATH"`
	Enabled  bool   `env:"HISTORY_ENABLED"`
	Interval string `env:"HISTORY_INTERVAL"`
}

// Load feeds an optional dotenv file and then the process environment into
// a Config. Variables from the environment win over the file.
func Load(dotenvPath string) (Config, error) {
	var cfg Config
	c := golobby.New()
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			c.AddFeeder(feeder.DotEnv{Path: dotenvPath})
		} else if !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)
	if err := c.Feed(); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.History.DbPath == "" {
		c.History.DbPath = defaultDbPath
	}
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Server.LogLevel)
	switch logLevel {
	case "error":
		return slog.LevelError
	case "warning", "warn":
		return slog.LevelWarn
	case "info", "":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}

func (b BridgeConfig) SessionBudget() time.Duration {
	return parseDuration("BRIDGE_SESSION_TIMEOUT", b.SessionTimeout, defaultBridgeTimeout)
}

func (b BridgeConfig) MetadataBudget() time.Duration {
	return parseDuration("BRIDGE_METADATA_TIMEOUT", b.MetadataTimeout, defaultBridgeTimeout)
}

func (b BridgeConfig) ControlBudget() time.Duration {
	return parseDuration("BRIDGE_CONTROL_TIMEOUT", b.ControlTimeout, defaultBridgeTimeout)
}

func (b BridgeConfig) OutboundTimeout() time.Duration {
	return parseDuration("BRIDGE_REQUEST_TIMEOUT", b.RequestTimeout, defaultRequestTimeout)
}

// Apps splits BRIDGE_ALLOWED_APPS on commas.
func (b BridgeConfig) Apps() []string {
	var apps []string
	for _, app := range strings.Split(b.AllowedApps, ",") {
		if app = strings.TrimSpace(app); app != "" {
			apps = append(apps, app)
		}
	}
	return apps
}

func (h HistoryConfig) PollInterval() time.Duration {
	return parseDuration("HISTORY_INTERVAL", h.Interval, defaultHistoryInterval)
}

// parseDuration accepts Go durations ("1m30s") or bare seconds ("30").
func parseDuration(key, raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if d, err := time.ParseDuration(raw + "s"); err == nil && d > 0 {
		return d
	}
	slog.With(slog.String("key", key), slog.String("value", raw)).
		Warn("Received invalid duration. Using default.", slog.Duration("default", fallback))
	return fallback
}
