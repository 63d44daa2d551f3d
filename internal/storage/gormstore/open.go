package gormstore

import (
	"context"
	"database/sql/driver"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	modernc "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options - параметры подключения к базе.
type Options struct {
	Driver   string
	DSN      string
	LogLevel string // silent | error | warn | info
}

// Open подключается к базе, применяет миграции и возвращает хранилище.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		if err := registerLower(); err != nil {
			return nil, errors.Wrap(err, "registering sqlite lower()")
		}
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: sqliteDSN(opts.DSN)}
	default:
		return nil, errors.Errorf("unsupported driver %q", opts.Driver)
	}

	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(zapWriter{log.Sugar()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  parseLogLevel(opts.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if opts.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite допускает одного писателя
		sqlDB.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db, log); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return New(db), nil
}

// registerLower подменяет встроенную LOWER в SQLite: своя складывает только ASCII,
// а поиск сравнивает с запросом, приведенным через strings.ToLower.
var registerLower = sync.OnceValue(func() error {
	return modernc.RegisterDeterministicScalarFunction("lower", 1, func(_ *modernc.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return []byte(strings.ToLower(string(v))), nil
		default:
			return v, nil
		}
	})
})

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// zapWriter направляет логи gorm и goose в zap.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(strings.TrimSuffix(format, "\n"), args...)
}

func (w zapWriter) Fatalf(format string, args ...interface{}) {
	w.log.Fatalf(strings.TrimSuffix(format, "\n"), args...)
}
