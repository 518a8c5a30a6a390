// Package config provides the vault server configuration, assembled from
// command-line flags, an optional JSON config file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/atinyakov/GophVault/internal/db"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN is the Postgres connection string, or the database file
	// path for the sqlite driver.
	DatabaseDSN string `json:"database_dsn"`

	// Driver selects the storage backend: "postgres" or "sqlite".
	Driver string `json:"driver"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// MaintenanceInterval is the period of the storage maintenance loop;
	// zero disables it.
	MaintenanceInterval time.Duration `json:"-"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

var drivers = []string{db.DriverPostgres, db.DriverSQLite}

// Parse builds Options from args (without the program name). Precedence,
// lowest first: flag defaults and values, the JSON config file, then the
// environment (CONFIG, SERVER_ADDRESS, DATABASE_URL, DATABASE_DRIVER, LOG_LEVEL,
// MAINTENANCE_INTERVAL).
func Parse(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:3000", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Driver, "driver", db.DriverPostgres, "storage driver: postgres | sqlite")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.DurationVar(&options.MaintenanceInterval, "m", time.Hour, "storage maintenance interval, 0 disables")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		options.Driver = driver
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	if interval := os.Getenv("MAINTENANCE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid MAINTENANCE_INTERVAL: %w", err)
		}
		options.MaintenanceInterval = d
	}

	if options.MaintenanceInterval < 0 {
		return nil, errors.New("maintenance interval must not be negative")
	}
	if !slices.Contains(drivers, options.Driver) {
		return nil, fmt.Errorf("unknown driver %q", options.Driver)
	}
	if options.DatabaseDSN == "" {
		return nil, errors.New("database address is required (-d or DATABASE_URL)")
	}

	return options, nil
}
