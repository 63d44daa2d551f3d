// Package config собирает настройки сервера: значения по умолчанию,
// затем YAML-файл, затем переменные окружения. Флаги командной строки
// применяются поверх в cmd/server.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverInMemory = "in-memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultPort = "8080"

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	WSPingInterval  time.Duration `yaml:"ws_ping_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
	// LogLevel - уровень логов gorm: silent | error | warn | info.
	LogLevel string `yaml:"log_level"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type PaginationConfig struct {
	FeedLimit       int `yaml:"feed_limit"`
	AccountLimit    int `yaml:"account_limit"`
	SuggestionLimit int `yaml:"suggestion_limit"`
	MaxLimit        int `yaml:"max_limit"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":" + defaultPort,
			WSPingInterval:  10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:     DriverInMemory,
			SQLitePath: "socialgraph.db",
			LogLevel:   "warn",
		},
		Log: LogConfig{Level: "info"},
		Pagination: PaginationConfig{
			FeedLimit:       10,
			AccountLimit:    20,
			SuggestionLimit: 5,
			MaxLimit:        100,
		},
	}
}

// Load читает файл (если путь задан) и переменные окружения.
// getenv передается явно, чтобы тесты не трогали окружение процесса.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.applyEnv(getenv)

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	if dsn := getenv("DATABASE_URL"); dsn != "" {
		c.Storage.DSN = dsn
	}
	if driver := getenv("STORAGE"); driver != "" {
		c.Storage.Driver = driver
	}
	if path := getenv("SQLITE_PATH"); path != "" {
		c.Storage.SQLitePath = path
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverInMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("DATABASE_URL must be set for postgres storage")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite_path must be set for sqlite storage")
		}
	default:
		return errors.Errorf("unknown storage driver %q (in-memory, postgres or sqlite)", c.Storage.Driver)
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr must not be empty")
	}
	if c.HTTP.WSPingInterval <= 0 {
		return errors.New("http.ws_ping_interval must be positive")
	}

	p := c.Pagination
	if p.FeedLimit <= 0 || p.AccountLimit <= 0 || p.SuggestionLimit <= 0 || p.MaxLimit <= 0 {
		return errors.New("pagination limits must be positive")
	}
	if p.FeedLimit > p.MaxLimit || p.AccountLimit > p.MaxLimit || p.SuggestionLimit > p.MaxLimit {
		return errors.Errorf("default page sizes must not exceed max_limit %d", p.MaxLimit)
	}
	return nil
}

// ConnString возвращает строку подключения для выбранного драйвера.
func (s StorageConfig) ConnString() string {
	if s.Driver == DriverSQLite {
		return s.SQLitePath
	}
	return s.DSN
}
