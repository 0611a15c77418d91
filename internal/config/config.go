package config

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Lending   LendingConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

type SchedulerConfig struct {
	Spec     string
	Timezone string
}

type LoggingConfig struct {
	Level string
}

// Flags returns the standard logger flags for the level; debug adds
// microseconds and the calling file.
func (c LoggingConfig) Flags() int {
	if c.Level == "debug" {
		return log.LstdFlags | log.Lmicroseconds | log.Lshortfile
	}
	return log.LstdFlags
}

// LendingConfig carries the registry policy values.
type LendingConfig struct {
	RegistryName         string
	ReminderIntervalDays int
	RenewalPeriodDays    int
	SnapshotFile         string
}

type HealthConfig struct {
	Timeout time.Duration
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// SchedulerParser accepts cron specs with an optional leading seconds field.
var SchedulerParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// DefaultLending returns the lending policy used when nothing is configured.
func DefaultLending() LendingConfig {
	return LendingConfig{
		RegistryName:         "main",
		ReminderIntervalDays: 7,
		RenewalPeriodDays:    365,
	}
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := fromViper(v)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	lending := DefaultLending()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_URL", "file:lending-registry.db?_pragma=busy_timeout(5000)")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SNAPSHOT_CACHE_TTL", "10m")
	v.SetDefault("SCHEDULER_SPEC", "0 0 0 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REGISTRY_NAME", lending.RegistryName)
	v.SetDefault("REMINDER_INTERVAL_DAYS", lending.ReminderIntervalDays)
	v.SetDefault("RENEWAL_PERIOD_DAYS", lending.RenewalPeriodDays)
	v.SetDefault("SNAPSHOT_FILE", "")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DATABASE_DRIVER"),
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Enabled:     v.GetBool("REDIS_ENABLED"),
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetString("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			SnapshotTTL: v.GetDuration("SNAPSHOT_CACHE_TTL"),
		},
		Scheduler: SchedulerConfig{
			Spec:     v.GetString("SCHEDULER_SPEC"),
			Timezone: v.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Lending: LendingConfig{
			RegistryName:         v.GetString("REGISTRY_NAME"),
			ReminderIntervalDays: v.GetInt("REMINDER_INTERVAL_DAYS"),
			RenewalPeriodDays:    v.GetInt("RENEWAL_PERIOD_DAYS"),
			SnapshotFile:         v.GetString("SNAPSHOT_FILE"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of %s, %s, %s; got %q",
			DriverPostgres, DriverPgx, DriverSQLite, c.Database.Driver)
	}

	if c.Database.URL == "" && c.Lending.SnapshotFile == "" {
		return fmt.Errorf("DATABASE_URL or SNAPSHOT_FILE is required")
	}

	if err := c.Lending.Validate(); err != nil {
		return err
	}

	if _, err := SchedulerParser.Parse(c.Scheduler.Spec); err != nil {
		return fmt.Errorf("SCHEDULER_SPEC must be a valid cron spec: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if c.Logging.Level != "debug" && c.Logging.Level != "info" {
		return fmt.Errorf("LOG_LEVEL must be debug or info; got %q", c.Logging.Level)
	}

	if c.Redis.Enabled && c.Redis.SnapshotTTL <= 0 {
		return fmt.Errorf("SNAPSHOT_CACHE_TTL must be a positive duration")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// Validate checks the lending policy values
func (c LendingConfig) Validate() error {
	if c.RegistryName == "" {
		return fmt.Errorf("REGISTRY_NAME is required")
	}
	if c.ReminderIntervalDays <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL_DAYS must be greater than 0")
	}
	if c.RenewalPeriodDays <= 0 {
		return fmt.Errorf("RENEWAL_PERIOD_DAYS must be greater than 0")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the scheduler timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}
