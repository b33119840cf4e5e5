package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store modes.
const (
	StoreMock     = "mock"
	StoreRemote   = "remote"
	StoreLevelDB  = "leveldb"
	StorePostgres = "postgres"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	StoreMode        string        `mapstructure:"STORE_MODE"`
	APIBaseURL       string        `mapstructure:"API_BASE_URL"`
	APITimeout       time.Duration `mapstructure:"API_TIMEOUT"`
	APIToken         string        `mapstructure:"API_TOKEN"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	LevelDBPath      string        `mapstructure:"LEVELDB_PATH"`
	AuthSigningKey   string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer       string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience     string        `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	KafkaBrokers     []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic       string        `mapstructure:"KAFKA_TOPIC"`
	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
	SessionIdleTTL   time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "STORE_MODE",
	"API_BASE_URL", "API_TIMEOUT", "API_TOKEN",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"LEVELDB_PATH",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE",
	"CORS_ORIGINS",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
	"REMINDER_INTERVAL", "SESSION_IDLE_TTL", "REQUEST_TIMEOUT",
}

// Load reads the configuration from the environment and an optional .env
// file in the working directory. It does not validate; call Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_MODE", StoreMock)
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("LEVELDB_PATH", "data/medcontrol.ldb")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("KAFKA_TOPIC", "medcontrol.events")
	v.SetDefault("REMINDER_INTERVAL", "60s")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("REQUEST_TIMEOUT", "15s")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// The .env file is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers, v.GetString("KAFKA_BROKERS"))
	cfg.StoreMode = strings.ToLower(strings.TrimSpace(cfg.StoreMode))
	return cfg, nil
}

// splitList normalizes comma separated values whether viper decoded them
// into a slice already or left them as one string.
func splitList(decoded []string, raw string) []string {
	if len(decoded) > 0 {
		raw = strings.Join(decoded, ",")
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// EventsEnabled reports whether change events go to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Validate checks the settings each store mode depends on, and that
// non-development deployments verify bearer tokens.
func (c *Config) Validate() error {
	switch c.StoreMode {
	case StoreMock:
	case StoreRemote:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API_BASE_URL is required when STORE_MODE is %q", StoreRemote)
		}
		if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
			return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.APIBaseURL)
		}
	case StoreLevelDB:
		if c.LevelDBPath == "" {
			return fmt.Errorf("LEVELDB_PATH is required when STORE_MODE is %q", StoreLevelDB)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_MODE is %q", StorePostgres)
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	default:
		return fmt.Errorf("STORE_MODE must be one of mock, remote, leveldb, postgres, got %q", c.StoreMode)
	}

	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY must be set when ENV=%q; refusing to serve pages without authentication", c.Env)
	}
	if c.AuthSigningKey != "" && len(c.AuthSigningKey) < 32 {
		return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 characters, got %d", len(c.AuthSigningKey))
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	return nil
}
