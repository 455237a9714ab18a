package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/civisuite/vitals-ledger/api/swagger"
	"github.com/civisuite/vitals-ledger/internal/handler"
	"github.com/civisuite/vitals-ledger/internal/ledger"
	"github.com/civisuite/vitals-ledger/internal/middleware"
	"github.com/civisuite/vitals-ledger/internal/repository"
	"github.com/civisuite/vitals-ledger/internal/service"
	"github.com/civisuite/vitals-ledger/pkg/cache"
	"github.com/civisuite/vitals-ledger/pkg/config"
	"github.com/civisuite/vitals-ledger/pkg/database"
	"github.com/civisuite/vitals-ledger/pkg/export"
	"github.com/civisuite/vitals-ledger/pkg/logger"
	corsmiddleware "github.com/civisuite/vitals-ledger/pkg/middleware/cors"
	reqidmiddleware "github.com/civisuite/vitals-ledger/pkg/middleware/requestid"
	"github.com/civisuite/vitals-ledger/pkg/storage"
)

// @title Vitals Ledger API
// @version 0.1.0
// @description Cross-record civil registry ledger
// @BasePath /
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := ledger.New(cfg.Ledger.EventJournalCap)
	metrics := service.NewMetricsService()

	// The audit trail and the proof cache are both optional planes. The
	// ledger runs without them; steps never block on either.
	var auditSvc *service.AuditService
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		auditSvc = service.NewAuditService(repository.NewAuditRepository(db), logr, cfg.Audit.Workers, cfg.Audit.BufferSize, true)
		auditSvc.Start(ctx)
		defer auditSvc.Stop()
	}

	var cacheSvc *service.CacheService
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, disclosure proofs uncached", "error", err)
	} else {
		repo := repository.NewCacheRepository(client, logr)
		defer repo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(repo, metrics, cfg.Disclosure.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(logr, service.UTCClock, service.AuthConfig{
		Secret:       cfg.JWT.Secret,
		Expiration:   cfg.JWT.Expiration,
		Issuer:       cfg.JWT.Issuer,
		DevTokenMint: cfg.JWT.DevTokenMint,
	})

	registrySvc := service.NewRegistryService(eng, auditSvc, metrics, logr, service.UTCClock)
	marriageSvc := service.NewMarriageService(eng, auditSvc, nil, metrics, logr, service.UTCClock)
	birthSvc := service.NewBirthService(eng, auditSvc, nil, metrics, logr, service.UTCClock)
	deathSvc := service.NewDeathService(eng, auditSvc, nil, metrics, logr, service.UTCClock)
	licenseSvc := service.NewLicenseService(eng, auditSvc, nil, metrics, logr, service.UTCClock, cfg.Ledger.MinimumDrivingAge)
	districtSvc := service.NewDistrictService(eng, auditSvc, nil, metrics, logr, service.UTCClock)
	voterSvc := service.NewVoterService(eng, auditSvc, nil, metrics, logr, service.UTCClock)
	effectsSvc := service.NewEffectsService(eng, auditSvc, nil, metrics, logr, service.UTCClock)
	disclosureSvc := service.NewDisclosureService(eng, cacheSvc, auditSvc, nil, metrics, logr, cfg.Disclosure.Secret, cfg.Disclosure.CacheTTL)

	handlers := handler.Handlers{
		Registry:   handler.NewRegistryHandler(registrySvc),
		Marriage:   handler.NewMarriageHandler(marriageSvc),
		Birth:      handler.NewBirthHandler(birthSvc, disclosureSvc),
		Death:      handler.NewDeathHandler(deathSvc, effectsSvc),
		License:    handler.NewLicenseHandler(licenseSvc),
		District:   handler.NewDistrictHandler(districtSvc, effectsSvc),
		Voter:      handler.NewVoterHandler(voterSvc),
		Disclosure: handler.NewDisclosureHandler(disclosureSvc),
		Event:      handler.NewEventHandler(eng),
		Metrics:    handler.NewMetricsHandler(metrics, eng),
	}

	if cfg.Simulation.Enabled {
		simulationSvc := service.NewSimulationService(eng, auditSvc, nil, metrics, logr, service.UTCClock, cfg.Simulation.AllowCommit)
		handlers.Simulation = handler.NewSimulationHandler(simulationSvc)
	}

	if cfg.Extracts.Enabled {
		store, err := storage.NewLocalStorage("")
		if err != nil {
			logr.Sugar().Fatalw("failed to init extract storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.JWT.Secret, 24*time.Hour)
		extractSvc := service.NewExtractService(eng, store, signer, service.ExtractConfig{
			Enabled:   true,
			Authority: cfg.Extracts.Authority,
		}, logr, service.UTCClock, export.NewCSVExporter(), export.NewPDFExporter())
		handlers.Extract = handler.NewExtractHandler(extractSvc)
	}

	if cfg.JWT.DevTokenMint {
		handlers.Auth = handler.NewAuthHandler(authSvc)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, handlers, handler.RouterDeps{
		AuthService: authSvc,
		Metrics:     metrics,
		Audit:       auditSvc,
		EnableDocs:  cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
