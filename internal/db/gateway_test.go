package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/testing/testdb"
)

func newTestGateway(t *testing.T) (*Gateway, *gorm.DB) {
	t.Helper()
	gormDB := testdb.New(t)
	return NewGateway(gormDB, sql.LevelDefault), gormDB
}

func TestInTx_Commit(t *testing.T) {
	gw, gormDB := newTestGateway(t)

	err := gw.InTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&model.SuperCategory{Title: "Home"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), testdb.Count(t, gormDB, &model.SuperCategory{}))
}

func TestInTx_RollbackReturnsSameError(t *testing.T) {
	gw, gormDB := newTestGateway(t)
	sentinel := errors.New("boom")

	err := gw.InTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&model.SuperCategory{Title: "Home"}).Error; err != nil {
			return err
		}
		return sentinel
	})
	assert.Same(t, sentinel, err)
	assert.Equal(t, int64(0), testdb.Count(t, gormDB, &model.SuperCategory{}))
}

func TestInTx_PanicRollsBackAndReleasesConnection(t *testing.T) {
	gw, gormDB := newTestGateway(t)

	assert.Panics(t, func() {
		_ = gw.InTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&model.SuperCategory{Title: "Home"})
			panic("fn exploded")
		})
	})
	assert.Equal(t, int64(0), testdb.Count(t, gormDB, &model.SuperCategory{}))

	// Пул из одного соединения: следующая транзакция пройдёт, только если
	// предыдущая вернула соединение.
	err := gw.InTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&model.SuperCategory{Title: "Garden"}).Error
	})
	require.NoError(t, err)
}

func TestGatewayPing(t *testing.T) {
	gw, _ := newTestGateway(t)
	require.NoError(t, gw.Ping(context.Background()))
}

func TestIsolationLevel(t *testing.T) {
	assert.Equal(t, sql.LevelReadCommitted, IsolationLevel("read_committed"))
	assert.Equal(t, sql.LevelRepeatableRead, IsolationLevel("repeatable_read"))
	assert.Equal(t, sql.LevelSerializable, IsolationLevel("serializable"))
	assert.Equal(t, sql.LevelDefault, IsolationLevel(""))
}

func TestGatewayGormSharesHandle(t *testing.T) {
	gw, gormDB := newTestGateway(t)
	assert.Same(t, gormDB, gw.Gorm())
}

func TestLoggerWritesToSlog(t *testing.T) {
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, nil))

	l := NewLogger(log, time.Second)
	l.Error(context.Background(), "boom %d", 42)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "boom 42")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Error(context.Background(), "quiet")
	assert.Empty(t, buf.String())
}
