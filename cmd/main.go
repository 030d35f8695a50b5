package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/service-marketplace/internal/config"
	"github.com/Leganyst/service-marketplace/internal/db"
	"github.com/Leganyst/service-marketplace/internal/handler"
	"github.com/Leganyst/service-marketplace/internal/health"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/realtime"
	"github.com/Leganyst/service-marketplace/internal/repository"
	"github.com/Leganyst/service-marketplace/internal/service"
)

func main() {
	// 1. Конфиг сервера и логгер.
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		slog.Error("load server config", slog.Any("err", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: srvCfg.LogLevel}))
	slog.SetDefault(logger)

	// 2. Загружаем конфиг БД из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		fatal(logger, "load db config", err)
	}

	// 3. Подключаемся к БД через GORM.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	gw, err := db.Open(connectCtx, dbCfg, logger)
	cancelConnect()
	if err != nil {
		fatal(logger, "init db", err)
	}
	defer gw.Close()
	gormDB := gw.Gorm()

	// 4. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		fatal(logger, "auto migrate", err)
	}

	// 5. Репозитории (реализации на GORM).
	serviceRepo := repository.NewGormServiceRepository(gormDB)
	categoryRepo := repository.NewGormCategoryRepository(gormDB)
	permissionRepo := repository.NewGormPermissionRepository(gormDB)
	offeringRepo := repository.NewGormOfferingRepository(gormDB)
	providerRepo := repository.NewGormProviderRepository(gormDB)
	clientRepo := repository.NewGormClientRepository(gormDB)
	requestRepo := repository.NewGormRequestRepository(gormDB)

	// 6. Сервисы.
	catalogSvc := service.NewCatalogService(gw, serviceRepo, categoryRepo, offeringRepo)
	provisioningSvc := service.NewProvisioningService(gw, serviceRepo, categoryRepo, permissionRepo, offeringRepo, providerRepo, logger)
	requestSvc := service.NewRequestService(requestRepo, offeringRepo, clientRepo, logger)

	// 7. Метрики и realtime.
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rtMetrics := realtime.NewMetrics()
	httpMetrics := handler.NewHTTPMetrics()
	promReg.MustRegister(rtMetrics, httpMetrics)

	registry := realtime.NewRegistry()
	router := realtime.NewRouter(registry, rtMetrics, logger)
	wsServer := realtime.NewServer(registry, router, rtMetrics, srvCfg.Realtime, logger)

	// 8. gRPC: health + reflection.
	healthSrv := grpchealth.NewServer()
	checker := health.NewChecker(healthSrv, gw, srvCfg.HealthInterval, logger)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", srvCfg.GRPCAddr)
	if err != nil {
		fatal(logger, "listen "+srvCfg.GRPCAddr, err)
	}

	// 9. HTTP.
	httpServer := &http.Server{
		Addr: srvCfg.HTTPAddr,
		Handler: handler.NewRouter(handler.Deps{
			Catalog:      catalogSvc,
			Provisioning: provisioningSvc,
			Requests:     requestSvc,
			Realtime:     wsServer,
			Metrics:      httpMetrics,
			Gatherer:     promReg,
			Ready:        checker.Serving,
			Log:          logger,
		}),
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go checker.Run(ctx)

	// 10. Запускаем серверы в горутинах.
	go func() {
		logger.Info("gRPC server listening", slog.String("addr", srvCfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", slog.Any("err", err))
			stop()
		}
	}()
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", srvCfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", slog.Any("err", err))
			stop()
		}
	}()

	// 11. Грейсфул-шатдаун по сигналу.
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	healthSrv.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("err", err))
	}
	// http.Server.Shutdown не трогает захваченные websocket-соединения.
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("websocket shutdown", slog.Any("err", err))
	}
	grpcServer.GracefulStop()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("err", err))
	os.Exit(1)
}
