package health

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в grpc.health.v1.
const ServiceName = "marketplace.v1.Marketplace"

// Pinger — то, что умеет проверить доступность БД (db.Gateway).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker периодически пингует БД и переключает статус health-сервера.
type Checker struct {
	srv      *health.Server
	pinger   Pinger
	interval time.Duration
	log      *slog.Logger

	serving atomic.Bool
}

func NewChecker(srv *health.Server, pinger Pinger, interval time.Duration, log *slog.Logger) *Checker {
	return &Checker{srv: srv, pinger: pinger, interval: interval, log: log}
}

// Check выполняет одну проверку и обновляет статус.
func (c *Checker) Check(ctx context.Context) error {
	timeout := c.interval / 2
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.pinger.Ping(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	if prev := c.serving.Swap(err == nil); prev != (err == nil) {
		if err != nil {
			c.log.Warn("database unreachable", slog.Any("err", err))
		} else {
			c.log.Info("database reachable")
		}
	}

	c.srv.SetServingStatus("", status)
	c.srv.SetServingStatus(ServiceName, status)
	return err
}

// Run проверяет БД каждые interval до отмены ctx.
func (c *Checker) Run(ctx context.Context) {
	_ = c.Check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Check(ctx)
		}
	}
}

// Serving — результат последней проверки.
func (c *Checker) Serving() bool {
	return c.serving.Load()
}
