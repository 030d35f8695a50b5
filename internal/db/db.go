package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/service-marketplace/internal/config"
)

// Open подключается к PostgreSQL, настраивает пул и проверяет соединение.
// Возвращает Gateway с уровнем изоляции из конфига; закрывает его вызывающий.
func Open(ctx context.Context, cfg *config.DBConfig, log *slog.Logger) (*Gateway, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: NewLogger(log, 200*time.Millisecond),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	configurePool(sqlDB, cfg)

	gw := NewGateway(gormDB, IsolationLevel(cfg.Isolation))
	if err := gw.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info("database connected",
		slog.String("host", cfg.Host),
		slog.String("name", cfg.Name),
		slog.String("isolation", cfg.Isolation),
	)
	return gw, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeTime) * time.Minute)
	}
}

// NewLogger направляет журнал gorm в slog: ошибки и медленные запросы,
// без трассировки каждого SQL.
func NewLogger(log *slog.Logger, slowThreshold time.Duration) gormlogger.Interface {
	return gormlogger.New(slogWriter{log: log}, gormlogger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Warn("gorm", slog.String("msg", fmt.Sprintf(format, args...)))
}

// IsolationLevel переводит значение из конфига в уровень database/sql.
func IsolationLevel(name string) sql.IsolationLevel {
	switch name {
	case "read_committed":
		return sql.LevelReadCommitted
	case "repeatable_read":
		return sql.LevelRepeatableRead
	case "serializable":
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}
