package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/repository"
	"github.com/noah-isme/iep-hero-api/internal/service"
	"github.com/noah-isme/iep-hero-api/pkg/cache"
	"github.com/noah-isme/iep-hero-api/pkg/config"
	"github.com/noah-isme/iep-hero-api/pkg/database"
	"github.com/noah-isme/iep-hero-api/pkg/events"
	"github.com/noah-isme/iep-hero-api/pkg/llm/factory"
	"github.com/noah-isme/iep-hero-api/pkg/logger"
	"github.com/noah-isme/iep-hero-api/pkg/storage"
	"github.com/noah-isme/iep-hero-api/pkg/tracing"
)

// @title IEP Hero API
// @version 1.0.0
// @description Generates, reviews and approves IEP accommodation plans.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, logr)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx, db.DB, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	metrics := service.NewMetricsService()

	cacheRepo, closeCache, err := buildCache(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer closeCache()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	provider, err := factory.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("init llm provider: %w", err)
	}

	var publisher eventPublisher
	var bus *events.Bus
	if cfg.Events.Enabled {
		bus = events.NewBus(logr)
		defer bus.Close()
		publisher = bus
	}

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}

	profiles := repository.NewProfileRepository(db)
	sessionsRepo := repository.NewSessionRepository(db)
	commentsRepo := repository.NewCommentRepository(db)
	studentsRepo := repository.NewStudentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	autismProfilesRepo := repository.NewAutismProfileRepository(db)

	validate := service.NewValidator()
	identity := service.NewIdentityService(profiles, cacheSvc, service.IdentityConfig{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	}, logr)
	generation := service.NewGenerationService(provider, service.GenerationConfig{
		Timeout:     cfg.LLM.Timeout,
		MaxAttempts: cfg.LLM.MaxAttempts,
	}, metrics, logr)
	sessions := service.NewSessionService(sessionsRepo, commentsRepo, cacheSvc, publisher, metrics, validate, logr,
		service.SessionConfig{ListLimit: cfg.Sessions.ListLimit, DetailTTL: cfg.Cache.TTL})
	exports := service.NewExportService(sessions, store,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: 24 * time.Hour}, validate, logr)
	students := service.NewStudentService(studentsRepo, validate, logr)

	deps := routeDeps{
		identity:      identity,
		metrics:       metrics,
		db:            db,
		accommodation: service.NewAccommodationService(sessionsRepo, studentsRepo, identity, generation, publisher, metrics, validate, logr),
		sessions:      sessions,
		reviews:       service.NewReviewService(sessions, generation, validate, logr),
		advocates:     service.NewAdvocateService(identity, profiles, logr),
		students:      students,
		exports:       exports,
		autismProfiles: service.NewAutismProfileService(autismProfilesRepo, generation, students, publisher, metrics, validate, logr,
			service.AutismProfileConfig{ListLimit: cfg.Sessions.ListLimit}),
	}

	if bus != nil {
		consumer := events.NewConsumer("audit", bus, service.AuditTopics,
			service.NewAuditRecorder(auditRepo, logr).Handle,
			events.ConsumerConfig{Workers: 2, Logger: logr})
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("start audit consumer: %w", err)
		}
		defer consumer.Stop()
	}

	go cleanupExports(ctx, exports, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("llm_provider", provider.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type eventPublisher interface {
	Publish(ctx context.Context, topic string, evt events.Event) error
}

func buildCache(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if cfg.Cache.Driver == "memory" {
		return repository.NewMemoryCacheRepository(cfg.Cache.TTL), func() {}, nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	repo := repository.NewCacheRepository(client, logr)
	return repo, func() { _ = repo.Close() }, nil
}

func cleanupExports(ctx context.Context, exports *service.ExportService, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
