// Package config reads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/teamboard/schedule-engine/internal/adapters/cache"
	"github.com/teamboard/schedule-engine/internal/core/calendar"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	CacheRedis  = "redis"
	CacheMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	Storage    string `env:"STORAGE" envDefault:"postgres"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`

	LayoutCache    string        `env:"LAYOUT_CACHE" envDefault:"redis"`
	LayoutCacheTTL time.Duration `env:"LAYOUT_CACHE_TTL" envDefault:"30m"`
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`

	RateLimit  int           `env:"RATE_LIMIT" envDefault:"100"`
	RateWindow time.Duration `env:"RATE_WINDOW" envDefault:"1m"`

	WeekStart string `env:"CALENDAR_WEEK_START" envDefault:"sunday"`
	Timezone  string `env:"CALENDAR_TIMEZONE" envDefault:"UTC"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("%w: DB_USER and DB_NAME are required for postgres storage", ErrInvalidConfig)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("%w: STORAGE must be %q or %q, got %q", ErrInvalidConfig, StoragePostgres, StorageMemory, c.Storage)
	}

	if c.LayoutCache != CacheRedis && c.LayoutCache != CacheMemory {
		return fmt.Errorf("%w: LAYOUT_CACHE must be %q or %q, got %q", ErrInvalidConfig, CacheRedis, CacheMemory, c.LayoutCache)
	}
	if c.RateLimit < 0 || c.RateWindow <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT must be >= 0 and RATE_WINDOW > 0", ErrInvalidConfig)
	}

	if _, err := c.CalendarOptions(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) Redis() cache.RedisOptions {
	return cache.RedisOptions{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// CalendarOptions resolves the week start and timezone used to cut days.
func (c *Config) CalendarOptions() (calendar.Options, error) {
	weekStart, err := calendar.ParseWeekStart(c.WeekStart)
	if err != nil {
		return calendar.Options{}, err
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return calendar.Options{}, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}

	return calendar.Options{WeekStart: weekStart, Location: loc}, nil
}
