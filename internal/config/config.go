package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App     App
	HTTP    HTTP
	Market  Market
	Limiter Limiter
	Session Session
	Jobs    Jobs
	Bot     Bot
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"wfm-flipper"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, fmt.Errorf("config.validate: %w", err)
	}

	return config, nil
}

func (c Config) validate() error {
	switch {
	case c.Limiter.RequestsPerSecond <= 0:
		return fmt.Errorf("LIMITER_RPS must be positive, got %d", c.Limiter.RequestsPerSecond)
	case c.Limiter.MaxConcurrent <= 0:
		return fmt.Errorf("LIMITER_MAX_CONCURRENT must be positive, got %d", c.Limiter.MaxConcurrent)
	case c.Jobs.DefaultBatchSize <= 0 || c.Jobs.DefaultBatchSize > c.Jobs.MaxBatchSize:
		return fmt.Errorf("JOBS_DEFAULT_BATCH_SIZE must be in [1, %d], got %d", c.Jobs.MaxBatchSize, c.Jobs.DefaultBatchSize)
	case c.Session.TTL <= 0:
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}

	return nil
}
