package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ServerConfig — параметры HTTP/WebSocket и gRPC поверхностей.
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        slog.Level

	// Периодичность проверки БД для gRPC health.
	HealthInterval time.Duration

	Realtime RealtimeConfig
}

// RealtimeConfig — ограничения на одно WebSocket-соединение.
type RealtimeConfig struct {
	SendBuffer      int
	EventsPerSecond float64
	Burst           int
	MaxMessageBytes int64
	PongWait        time.Duration
}

func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		HTTPAddr:        getEnv("HTTP_ADDR", ":3000"),
		GRPCAddr:        getEnv("GRPC_ADDR", ":50051"),
		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HealthInterval:  getEnvDuration("HEALTH_INTERVAL", 10*time.Second),
		Realtime: RealtimeConfig{
			SendBuffer:      getEnvInt("WS_SEND_BUFFER", 64),
			EventsPerSecond: getEnvFloat("WS_EVENTS_PER_SECOND", 20),
			Burst:           getEnvInt("WS_BURST", 40),
			MaxMessageBytes: int64(getEnvInt("WS_MAX_MESSAGE_BYTES", 64*1024)),
			PongWait:        getEnvDuration("WS_PONG_WAIT", 60*time.Second),
		},
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("invalid server config: HTTP_ADDR must not be empty")
	}
	if cfg.HealthInterval <= 0 {
		return nil, fmt.Errorf("invalid server config: HEALTH_INTERVAL must be positive")
	}
	if cfg.Realtime.SendBuffer <= 0 {
		return nil, fmt.Errorf("invalid server config: WS_SEND_BUFFER must be positive")
	}
	if cfg.Realtime.EventsPerSecond <= 0 || cfg.Realtime.Burst <= 0 {
		return nil, fmt.Errorf("invalid server config: WS_EVENTS_PER_SECOND and WS_BURST must be positive")
	}
	if cfg.Realtime.PongWait <= 0 {
		return nil, fmt.Errorf("invalid server config: WS_PONG_WAIT must be positive")
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid server config: unknown log level %q", s)
}
