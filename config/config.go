package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Signup     SignupConfig     `yaml:"signup"`
	Photo      PhotoConfig      `yaml:"photo"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size" validate:"min=0"`
	QueueSize int `yaml:"queue_size" validate:"min=0"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" validate:"min=0,max=65535"`
	ActorHeader     string  `yaml:"actor_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" validate:"min=0"`
	RateLimitBurst  int     `yaml:"rate_limit_burst" validate:"min=0"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds" validate:"min=0"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" validate:"omitempty,oneof=postgres sqlite"`
	DSN                    string `yaml:"dsn" validate:"required"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level" validate:"omitempty,oneof=silent error warn info"`
}

// SignupConfig holds the toggles consulted by the eligibility evaluator and
// the signup coordinator.
type SignupConfig struct {
	ManualReviewDisabledAllowSignups  bool `yaml:"manual_review_disabled_allow_signups"`
	ManualReviewProspectiveAlphaLimit int  `yaml:"manual_review_prospective_alpha_limit" validate:"min=0"`
	EnforceEligibility                bool `yaml:"enforce_eligibility"`
}

// PhotoConfig points at the upstream photo-approval service. When URL is
// empty the photo status is read from the local database instead.
type PhotoConfig struct {
	URL            string            `yaml:"url" validate:"omitempty,url"`
	Headers        map[string]string `yaml:"headers"`
	HTTPProxy      string            `yaml:"http_proxy" validate:"omitempty,url"`
	TimeoutSeconds int               `yaml:"timeout_seconds" validate:"min=0"`
	Timeout        time.Duration     `yaml:"-"` // Ignored by YAML parser
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Env string `yaml:"env" validate:"omitempty,oneof=development production test"`
}

var validate = validator.New()

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs struct validation over the configuration.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ActorHeader == "" {
		cfg.Server.ActorHeader = "X-Person-ID"
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Photo.TimeoutSeconds <= 0 {
		cfg.Photo.TimeoutSeconds = 10
	}
	cfg.Photo.Timeout = time.Duration(cfg.Photo.TimeoutSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = cfg.WorkerPool.Size * 16
	}

	if cfg.Log.Env == "" {
		cfg.Log.Env = "development"
	}
}
