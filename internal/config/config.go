package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported event store backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

// Config contains runtime configuration required by the service.
type Config struct {
	DBDriver      string `yaml:"db_driver"`
	DBURL         string `yaml:"db_url"`
	DBPath        string `yaml:"db_path"` // sqlite only
	MongoDatabase string `yaml:"mongo_database"`
	HTTPAddr      string `yaml:"http_addr"`
	LogLevel      string `yaml:"log_level"`
	GinMode       string `yaml:"gin_mode"`
}

// Load reads the optional YAML file named by CONFIG_FILE, then lets
// environment variables override it, then applies defaults and validates.
func Load() (Config, error) {
	var cfg Config

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	override(&cfg.DBDriver, "DB_DRIVER")
	override(&cfg.DBURL, "DB_URL")
	override(&cfg.DBPath, "DB_PATH")
	override(&cfg.MongoDatabase, "MONGO_DATABASE")
	override(&cfg.HTTPAddr, "HTTP_ADDR")
	override(&cfg.LogLevel, "LOG_LEVEL")
	override(&cfg.GinMode, "GIN_MODE")

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile parses a YAML config file. Missing keys stay empty.
func LoadFile(path string) (Config, error) {
	var cfg Config

	file, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected driver has what it needs to connect.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverMongo:
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL required for %s", c.DBDriver)
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH required for sqlite")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, sqlite, mysql, mongo (got %q)", c.DBDriver)
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test (got %q)", c.GinMode)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DBDriver == "" {
		c.DBDriver = DriverPostgres
	}
	c.DBDriver = strings.ToLower(c.DBDriver)

	// Local dev fallback so the sqlite backend runs out-of-the-box.
	if c.DBPath == "" {
		c.DBPath = "./data/analytics.db"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "analytics"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
}

func override(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
