package sql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syssam/joli/dialect"
)

const (
	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"

	dirPermissions    = 0o750
	connectionTimeout = 5 * time.Second
)

// Config holds the options used by OpenSQLite. It maps to a YAML document:
//
//	path: data/app.db
//	busy_timeout: 5
//	read_uncommitted: true
//	wal_mode: false
type Config struct {
	// Path is the database file. MemoryPath keeps the database in memory
	// for the lifetime of the connection.
	Path string `yaml:"path" koanf:"path"`

	// BusyTimeout is the maximum time to wait for a database lock, in seconds.
	BusyTimeout int `yaml:"busy_timeout" koanf:"busy_timeout"`

	// ReadUncommitted enables the read_uncommitted pragma.
	ReadUncommitted bool `yaml:"read_uncommitted" koanf:"read_uncommitted"`

	// WALMode enables Write-Ahead Logging.
	WALMode bool `yaml:"wal_mode" koanf:"wal_mode"`
}

// DefaultConfig returns an in-memory configuration with read_uncommitted on.
func DefaultConfig() Config {
	return Config{
		Path:            MemoryPath,
		BusyTimeout:     5,
		ReadUncommitted: true,
	}
}

// DecodeConfig reads a YAML Config from r. Keys missing from the document
// keep their DefaultConfig values; an empty document yields DefaultConfig.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yamlv3.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("dialect/sql: decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig layers DefaultConfig, the YAML file at path and the
// environment variables starting with envPrefix, later sources winning.
// An empty path skips the file; an empty prefix skips the environment.
// Variables map to keys by trimming the prefix and lowering the rest,
// so JOLI_BUSY_TIMEOUT sets busy_timeout.
func LoadConfig(path, envPrefix string) (Config, error) {
	k := koanf.New(".")
	def := DefaultConfig()
	if err := k.Load(confmap.Provider(map[string]any{
		"path":             def.Path,
		"busy_timeout":     def.BusyTimeout,
		"read_uncommitted": def.ReadUncommitted,
		"wal_mode":         def.WALMode,
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("dialect/sql: loading config defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("dialect/sql: reading config file %s: %w", path, err)
		}
	}
	if envPrefix != "" {
		if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, envPrefix))
		}), nil); err != nil {
			return Config{}, fmt.Errorf("dialect/sql: loading config env: %w", err)
		}
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("dialect/sql: decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Path == "" {
		return errors.New("dialect/sql: config: path is required")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("dialect/sql: config: negative busy_timeout %d", c.BusyTimeout)
	}
	return nil
}

// DSN returns the modernc.org/sqlite data source name for the config.
func (c Config) DSN() string {
	q := url.Values{}
	pragma := func(name, value string) {
		q.Add("_pragma", fmt.Sprintf("%s(%s)", name, value))
	}
	if c.BusyTimeout > 0 {
		pragma("busy_timeout", fmt.Sprint(c.BusyTimeout*1000))
	}
	if c.ReadUncommitted {
		pragma("read_uncommitted", "1")
	}
	if c.WALMode {
		pragma("journal_mode", "WAL")
		pragma("synchronous", "NORMAL")
	}
	if len(q) == 0 {
		return c.Path
	}
	return c.Path + "?" + q.Encode()
}

// OpenSQLite opens the embedded SQLite engine described by cfg.
//
// It performs the following setup:
//  1. Creates the database directory if it doesn't exist
//  2. Opens the database with the configured pragmas
//  3. Pins the pool to a single connection
//  4. Verifies the connection with a ping
func OpenSQLite(cfg Config) (*Driver, error) {
	if cfg.Path == "" {
		return nil, errors.New("dialect/sql: sqlite: empty path")
	}
	if cfg.Path != MemoryPath && !strings.HasPrefix(cfg.Path, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("dialect/sql: creating database directory: %w", err)
		}
	}
	drv, err := Open(dialect.SQLite, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: opening database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := drv.DB().PingContext(ctx); err != nil {
		drv.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("dialect/sql: verifying database connection: %w", err)
	}
	return drv, nil
}
