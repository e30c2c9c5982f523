package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Krimson/ctg-contractions/analyzer/internal/config"
	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/handler"
	"github.com/Krimson/ctg-contractions/analyzer/internal/health"
	"github.com/Krimson/ctg-contractions/analyzer/internal/logger"
	"github.com/Krimson/ctg-contractions/analyzer/internal/repository"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
	"github.com/Krimson/ctg-contractions/analyzer/internal/service"
	"github.com/Krimson/ctg-contractions/analyzer/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP, WebSocket and gRPC health servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg, logger.New(cfg.LogLevel, cfg.LogFormat))
		},
	}
}

func runServer(cfg *config.Config, log zerolog.Logger) error {
	rules, err := loadRuleTable(cfg.RulesFile)
	if err != nil {
		return err
	}

	analyzer := contraction.NewAnalyzer(
		contraction.WithRules(rules),
		contraction.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheRepo, dbRepo, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cacheRepo.Close()
	defer dbRepo.Close()

	analysisService := service.NewAnalysisService(
		analyzer,
		cacheRepo,
		dbRepo,
		service.WithDefaults(cfg.DefaultParams()),
		service.WithLoadOptions(series.LoadOptions{
			TimeColumn:      cfg.TimeColumn,
			AmplitudeColumn: cfg.UCColumn,
		}),
		service.WithLogger(log),
	)

	hub := websocket.NewHub(analysisService, log)
	analysisService.SetNotifier(hub)
	go hub.Run(ctx)

	healthServer := health.NewHealthServer()
	monitor := health.NewMonitor(healthServer, health.ServiceName, cfg.HealthCheckInterval, log)
	monitor.AddCheck("cache", cacheRepo.CheckConnection)
	monitor.AddCheck("database", dbRepo.Ping)
	go monitor.Run(ctx)

	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %s: %w", cfg.GRPCPort, err)
	}

	httpHandler := handler.NewHTTPHandler(analysisService, hub, monitor, log)
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpHandler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 2)

	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("gRPC health server listening")
		if err := grpcServer.Serve(listener); err != nil {
			serverErr <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Int("rules", len(rules)).
			Bool("memory_store", cfg.UseMemoryStore).
			Msg("analyzer HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("server failed")
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		log.Warn().Msg("graceful gRPC shutdown timed out, forcing stop")
		grpcServer.Stop()
	}

	log.Info().Msg("server exited")
	return runErr
}

func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (service.CacheRepository, service.DBRepository, error) {
	if cfg.UseMemoryStore {
		log.Warn().Msg("using in-memory storage, recordings are lost on restart")
		return repository.NewMemoryStore(cfg.RecordingTTL), repository.NewMemoryStore(0), nil
	}

	redisRepo := repository.NewRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RecordingTTL, log)
	if err := redisRepo.CheckConnection(ctx); err != nil {
		redisRepo.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	postgresRepo, err := repository.NewPostgreSQLRepository(ctx, cfg.PostgresDSN, log)
	if err != nil {
		redisRepo.Close()
		return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info().Msg("connected to PostgreSQL")

	return redisRepo, postgresRepo, nil
}

// loadRuleTable читает таблицу классификации из YAML; пустой путь - таблица по умолчанию
func loadRuleTable(path string) (contraction.RuleTable, error) {
	if path == "" {
		return contraction.DefaultRules(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()

	rules, err := contraction.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rules, nil
}
