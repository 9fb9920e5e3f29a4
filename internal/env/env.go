// Package env loads project configuration from the environment.
package env

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the skinwarp commands read from the environment.
type Config struct {
	// APIURL is the base URL of the marketplace API, without a trailing slash.
	APIURL string `env:"API_URL" envDefault:"http://localhost:8080/api"`
	// APIToken authenticates unattended commands such as notify.
	APIToken string `env:"API_TOKEN"`
	// StoragePath is the SQLite file backing the persisted stores.
	StoragePath string `env:"STORAGE_PATH" envDefault:"skinwarp.db"`

	CacheStaleTime time.Duration `env:"CACHE_STALE_TIME" envDefault:"1m"`
	CacheGCTime    time.Duration `env:"CACHE_GC_TIME" envDefault:"5m"`

	ItemPageSize        int `env:"ITEM_PAGE_SIZE" envDefault:"20"`
	ListingPageSize     int `env:"LISTING_PAGE_SIZE" envDefault:"10"`
	TransactionPageSize int `env:"TRANSACTION_PAGE_SIZE" envDefault:"10"`

	StubAddr string `env:"STUB_ADDR" envDefault:":8080"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

// LoadEnvironmentVariables loads the .env file if one exists.
//
// A missing file is fine, so the commands run with plain environment
// variables in deployments without one.
func LoadEnvironmentVariables() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, ".env error: %s\n", err)
		os.Exit(1)
	}
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return config, nil
}
