package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/config"
	"github.com/mamadbah2/farmledger/internal/repository/mongodb"
	"github.com/mamadbah2/farmledger/internal/repository/sheets"
	"github.com/mamadbah2/farmledger/internal/repository/sqlstore"
	"github.com/mamadbah2/farmledger/internal/scheduler"
	"github.com/mamadbah2/farmledger/internal/server/handlers"
	"github.com/mamadbah2/farmledger/internal/server/middleware"
	"github.com/mamadbah2/farmledger/internal/server/router"
	categorysvc "github.com/mamadbah2/farmledger/internal/service/categories"
	recordsvc "github.com/mamadbah2/farmledger/internal/service/records"
	reportingsvc "github.com/mamadbah2/farmledger/internal/service/reporting"
	settingssvc "github.com/mamadbah2/farmledger/internal/service/settings"
	"github.com/mamadbah2/farmledger/internal/validation"
	amqpclient "github.com/mamadbah2/farmledger/pkg/clients/amqp"
	whatsappclient "github.com/mamadbah2/farmledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/farmledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)
	decimal.MarshalJSONWithoutQuotes = true

	loc, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.Database.Path, baseLogger.Named("repo.sql"))
	if err != nil {
		baseLogger.Fatal("failed to open ledger database", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close ledger database", zap.Error(err))
		}
	}()

	if err := store.SeedCategories(ctx, sqlstore.DefaultCategories); err != nil {
		baseLogger.Fatal("failed to seed expense categories", zap.Error(err))
	}

	var events recordsvc.EventPublisher
	if cfg.AMQP.Enabled() {
		amqpClient, err := amqpclient.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, baseLogger.Named("client.amqp"))
		if err != nil {
			baseLogger.Fatal("failed to connect to amqp broker", zap.Error(err))
		}
		defer func() {
			if err := amqpClient.Close(); err != nil {
				baseLogger.Error("failed to close amqp connection", zap.Error(err))
			}
		}()
		events = amqpClient
	} else {
		baseLogger.Warn("amqp url missing, record events disabled")
	}

	checker := validation.New()
	recordSvc := recordsvc.NewService(store, validation.NewRecordValidator(checker, loc), events, baseLogger.Named("svc.records"))
	reportingSvc := reportingsvc.NewService(store, loc, baseLogger.Named("svc.reporting"))
	categorySvc := categorysvc.NewService(store, checker, baseLogger.Named("svc.categories"))
	settingsSvc := settingssvc.NewService(store, checker, baseLogger.Named("svc.settings"))

	sinks := scheduler.Sinks{ManagerID: cfg.WhatsApp.ManagerID}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks.Archive = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, digest archive disabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks.Export = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, digest export disabled")
	}

	if cfg.WhatsApp.Enabled() {
		sinks.Notify = whatsappclient.NewClient(cfg.WhatsApp, baseLogger.Named("client.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp not configured, digest delivery disabled")
	}

	sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, loc, store, reportingSvc, sinks, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, baseLogger.Named("auth"))
	engine := router.New(router.Handlers{
		Records:    handlers.NewRecordHandler(recordSvc, loc, baseLogger.Named("handlers.records")),
		Indicators: handlers.NewIndicatorHandler(reportingSvc, baseLogger.Named("handlers.indicators")),
		Categories: handlers.NewCategoryHandler(categorySvc, baseLogger.Named("handlers.categories")),
		Settings:   handlers.NewSettingsHandler(settingsSvc, baseLogger.Named("handlers.settings")),
	}, auth, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
