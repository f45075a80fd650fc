// Package config loads the sync service configuration from environment
// variables (with an optional .env file) into one immutable structure
// that is passed to components at construction.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultEnv              = EnvProd
	defaultAPIBaseURL       = "https://api.cloudflare.com"
	defaultTableName        = "sms_logs"
	defaultBatchSize        = 5000
	defaultChunkSize        = 1000
	defaultMaxRetries       = 3
	defaultRequestTimeout   = 30 * time.Second
	defaultStatementTimeout = 5 * time.Minute
	defaultRetryBaseDelay   = time.Second
	defaultSyncIDLayout     = "20060102150405"
	defaultLogFile          = "d1_sync.log"
	defaultHealthAddress    = ":8080"
	defaultMigrationsPath   = "migrations"
)

type Config struct {
	Env        string
	Cloudflare Cloudflare
	Postgres   Postgres
	Sync       Sync
	Health     Health
	Logger     Logger
}

// Cloudflare identifies the D1 database holding the source of truth.
type Cloudflare struct {
	BaseURL    string
	AccountID  string
	DatabaseID string
	APIToken   string
	TableName  string
}

type Postgres struct {
	URL              string
	TableName        string
	StatementTimeout time.Duration
	MigrationsPath   string
}

type Sync struct {
	BatchSize      int64
	ChunkSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration
	RequestTimeout time.Duration
	SyncIDLayout   string
}

type Health struct {
	Address string
}

type Logger struct {
	LogFile string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present but never required.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("CLOUDFLARE_API_BASE_URL", defaultAPIBaseURL)
	viper.SetDefault("CLOUDFLARE_D1_TABLENAME", defaultTableName)
	viper.SetDefault("POSTGRES_TABLENAME", defaultTableName)
	viper.SetDefault("STATEMENT_TIMEOUT_SECONDS", int(defaultStatementTimeout.Seconds()))
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrationsPath)
	viper.SetDefault("BATCH_SIZE", defaultBatchSize)
	viper.SetDefault("CHUNK_SIZE", defaultChunkSize)
	viper.SetDefault("MAX_RETRIES", defaultMaxRetries)
	viper.SetDefault("RETRY_BASE_DELAY_SECONDS", int(defaultRetryBaseDelay.Seconds()))
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", int(defaultRequestTimeout.Seconds()))
	viper.SetDefault("SYNC_ID_FORMAT", defaultSyncIDLayout)
	viper.SetDefault("LOG_FILE", defaultLogFile)
	viper.SetDefault("HEALTH_ADDRESS", defaultHealthAddress)

	cfg := &Config{
		Env: viper.GetString("APP_ENV"),
		Cloudflare: Cloudflare{
			BaseURL:    viper.GetString("CLOUDFLARE_API_BASE_URL"),
			AccountID:  viper.GetString("CLOUDFLARE_ACCOUNT_ID"),
			DatabaseID: viper.GetString("CLOUDFLARE_DATABASE_ID"),
			APIToken:   viper.GetString("CLOUDFLARE_API_TOKEN"),
			TableName:  viper.GetString("CLOUDFLARE_D1_TABLENAME"),
		},
		Postgres: Postgres{
			URL:              viper.GetString("POSTGRES_URL"),
			TableName:        viper.GetString("POSTGRES_TABLENAME"),
			StatementTimeout: time.Duration(viper.GetInt("STATEMENT_TIMEOUT_SECONDS")) * time.Second,
			MigrationsPath:   viper.GetString("MIGRATIONS_PATH"),
		},
		Sync: Sync{
			BatchSize:      viper.GetInt64("BATCH_SIZE"),
			ChunkSize:      viper.GetInt("CHUNK_SIZE"),
			MaxRetries:     viper.GetInt("MAX_RETRIES"),
			RetryBaseDelay: time.Duration(viper.GetInt("RETRY_BASE_DELAY_SECONDS")) * time.Second,
			RequestTimeout: time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
			SyncIDLayout:   viper.GetString("SYNC_ID_FORMAT"),
		},
		Health: Health{
			Address: viper.GetString("HEALTH_ADDRESS"),
		},
		Logger: Logger{
			LogFile: viper.GetString("LOG_FILE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.Sync.BatchSize)
	}
	if c.Sync.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Sync.ChunkSize)
	}
	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.Sync.MaxRetries)
	}
	return nil
}

// RequireCredentials rejects a configuration missing the secrets the
// sync run needs. The health server intentionally does not call this.
func (c *Config) RequireCredentials() error {
	switch {
	case c.Cloudflare.AccountID == "":
		return fmt.Errorf("CLOUDFLARE_ACCOUNT_ID is not set")
	case c.Cloudflare.DatabaseID == "":
		return fmt.Errorf("CLOUDFLARE_DATABASE_ID is not set")
	case c.Cloudflare.APIToken == "":
		return fmt.Errorf("CLOUDFLARE_API_TOKEN is not set")
	case c.Postgres.URL == "":
		return fmt.Errorf("POSTGRES_URL is not set")
	}
	return nil
}
