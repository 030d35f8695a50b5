package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// Gateway — единая точка доступа к пулу соединений.
// Создаётся в main и передаётся сервисам явно; закрывается при остановке процесса.
type Gateway struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
}

// NewGateway оборачивает готовый *gorm.DB. isolation == sql.LevelDefault
// оставляет уровень изоляции на усмотрение драйвера.
func NewGateway(db *gorm.DB, isolation sql.IsolationLevel) *Gateway {
	return &Gateway{db: db, isolation: isolation}
}

// DB возвращает хэндл для одиночных запросов вне транзакции.
func (g *Gateway) DB(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx)
}

// Gorm возвращает общий хэндл для репозиториев и миграций.
func (g *Gateway) Gorm() *gorm.DB {
	return g.db
}

// InTx выполняет fn в одной транзакции на одном соединении из пула.
// nil от fn — commit, любая ошибка — rollback и та же ошибка без обёртки.
// Паника внутри fn откатывает транзакцию и пробрасывается дальше.
// Соединение возвращается в пул на любом пути выхода.
func (g *Gateway) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var opts *sql.TxOptions
	if g.isolation != sql.LevelDefault {
		opts = &sql.TxOptions{Isolation: g.isolation}
	}
	return g.db.WithContext(ctx).Transaction(fn, opts)
}

func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("db.DB(): %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("db.DB(): %w", err)
	}
	return sqlDB.Close()
}
