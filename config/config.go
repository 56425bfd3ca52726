package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"go.uber.org/zap/zapcore"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr     string
	DB           Database
	Location     *time.Location
	LogLevel     zapcore.Level
	DefaultAdmin Admin
	SeedCatalog  bool
}

type Database struct {
	Driver     string
	SQLitePath string
	// PostgresDSN is a key=value connection string.
	PostgresDSN string
}

type Admin struct {
	Username string
	Password string
}

// Load reads the given dotenv files (".env" when none are given), ignoring
// missing ones, and then builds the config from the process environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		HTTPAddr: get("HTTP_ADDR", ":8080"),
		DefaultAdmin: Admin{
			Username: get("DEFAULT_ADMIN_USERNAME", "admin"),
			Password: get("DEFAULT_ADMIN_PASSWORD", "admin123"),
		},
	}

	seed, err := strconv.ParseBool(get("SEED_CATALOG", "true"))
	if err != nil {
		return nil, fmt.Errorf("SEED_CATALOG: %w", err)
	}
	cfg.SeedCatalog = seed

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg.Location = time.Local
	if tz := get("TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	cfg.DB.Driver = strings.ToLower(get("DB_DRIVER", DriverSQLite))
	switch cfg.DB.Driver {
	case DriverSQLite:
		cfg.DB.SQLitePath = get("SQLITE_PATH", "juicebar.db")
	case DriverPostgres:
		dsn, err := postgresDSN(get)
		if err != nil {
			return nil, err
		}
		cfg.DB.PostgresDSN = dsn
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DB.Driver)
	}

	return cfg, nil
}

func postgresDSN(get func(key, fallback string) string) (string, error) {
	if url := get("DATABASE_URL", ""); url != "" {
		dsn, err := pq.ParseURL(url)
		if err != nil {
			return "", fmt.Errorf("DATABASE_URL: %w", err)
		}
		return dsn, nil
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		get("POSTGRES_HOST", "localhost"),
		get("POSTGRES_PORT", "5432"),
		get("POSTGRES_USER", "juicebar"),
		get("POSTGRES_PASSWORD", ""),
		get("POSTGRES_DB", "juicebar"),
		get("POSTGRES_SSLMODE", "disable"),
	), nil
}
