package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/paramxml/pkg/paramxml/store"
	"github.com/cognicore/paramxml/pkg/paramxml/store/postgres"
	"github.com/cognicore/paramxml/pkg/paramxml/strategy"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting of a conversion run
type Config struct {
	Translation   strategy.TranslationKind `yaml:"translation_strategy"`
	Splitting     strategy.SplittingKind   `yaml:"splitting_strategy"`
	InputEncoding string                   `yaml:"input_encoding"`
	Workers       int                      `yaml:"workers"`
	OutputXML     bool                     `yaml:"output_xml"`
	XMLDir        string                   `yaml:"xml_dir"`
	Database      Database                 `yaml:"database"`
	Log           Log                      `yaml:"log"`
}

// Database selects and addresses the persistence backend
type Database struct {
	Enabled  bool   `yaml:"enabled"`
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"` // sqlite file
	URL      string `yaml:"url"`  // postgres URL; overrides the parts below
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
}

// Log configures the process logger
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Translation:   strategy.TranslationTranslit,
		Splitting:     strategy.SplittingNone,
		InputEncoding: "utf-8",
		Workers:       1,
		Database: Database{
			Enabled:  true,
			Driver:   DriverSQLite,
			Path:     "paramxml.db",
			User:     "postgres",
			Password: "postgres",
			Host:     "localhost",
			Port:     5432,
			Name:     "documents_db",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides database settings from DB_USER, DB_PASSWORD, DB_HOST,
// DB_PORT, DB_NAME and DATABASE_URL. DATABASE_URL also selects the postgres
// driver; the DB_* parts only address it and leave the driver unchanged.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DB_USER"); ok {
		c.Database.User = v
	}
	if v, ok := lookup("DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := lookup("DB_HOST"); ok {
		c.Database.Host = v
	}
	if v, ok := lookup("DB_PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: DB_PORT %q: %v", store.ErrInvalidConfig, v, err)
		}
		c.Database.Port = port
	}
	if v, ok := lookup("DB_NAME"); ok {
		c.Database.Name = v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		c.Database.URL = v
		c.Database.Driver = DriverPostgres
	}
	return nil
}

// Validate checks that every setting is usable
func (c Config) Validate() error {
	if _, err := c.Translation.MarshalText(); err != nil {
		return err
	}
	if _, err := c.Splitting.MarshalText(); err != nil {
		return err
	}
	if strings.TrimSpace(c.InputEncoding) == "" {
		return fmt.Errorf("%w: input encoding is required", store.ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", store.ErrInvalidConfig, c.Workers)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", store.ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", store.ErrInvalidConfig, c.Log.Format)
	}

	if c.Database.Enabled {
		return c.Database.Validate()
	}
	return nil
}

// Validate checks the settings of the selected driver
func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("%w: sqlite path is required", store.ErrInvalidConfig)
		}
	case DriverPostgres:
		if d.URL != "" {
			return nil
		}
		if d.Host == "" || d.Name == "" {
			return fmt.Errorf("%w: postgres host and database name are required", store.ErrInvalidConfig)
		}
		if d.Port < 1 || d.Port > 65535 {
			return fmt.Errorf("%w: postgres port %d", store.ErrInvalidConfig, d.Port)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database driver %q", store.ErrInvalidConfig, d.Driver)
	}
	return nil
}

// DSN returns the PostgreSQL connection URL
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return postgres.DSN(d.User, d.Password, d.Host, d.Port, d.Name)
}
