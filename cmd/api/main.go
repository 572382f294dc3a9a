package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/mintverse-golang/internal/ai"
	"github.com/01moynul/mintverse-golang/internal/approval"
	"github.com/01moynul/mintverse-golang/internal/auth"
	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/database"
	"github.com/01moynul/mintverse-golang/internal/email"
	"github.com/01moynul/mintverse-golang/internal/handlers"
	"github.com/01moynul/mintverse-golang/internal/jobs"
	"github.com/01moynul/mintverse-golang/internal/metrics"
	"github.com/01moynul/mintverse-golang/internal/middleware"
	"github.com/01moynul/mintverse-golang/internal/oracle"
	"github.com/01moynul/mintverse-golang/internal/routes"
	"github.com/01moynul/mintverse-golang/internal/stats"
	"github.com/01moynul/mintverse-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 0. --- Configuration & Logging ---
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := newLogger(cfg)

	// 1. --- Main Database Connection (Read/Write) ---
	db, err := database.Open(cfg.Database.DSN, log.WithField("pool", "primary"))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to primary database")
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(cfg.Database.DSN, log.WithField("component", "migrate")); err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
	}
	if err := database.EnsureAdmin(context.Background(), db, cfg.Admin, log); err != nil {
		log.WithError(err).Fatal("bootstrap administrator failed")
	}

	// 2. --- Collaborators ---
	usdFee, err := cfg.Oracle.Fee()
	if err != nil {
		log.WithError(err).Fatal("invalid minting fee")
	}
	prices := oracle.NewHTTPFetcher(&http.Client{}, cfg.Oracle.URL, cfg.Oracle.Timeout)
	fees := oracle.NewQuoter(prices, usdFee)
	mailer := email.New(cfg.SMTP, log.WithField("component", "email"))

	files, err := storage.NewFileStore(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.WithError(err).Fatal("upload directory unavailable")
	}

	m := metrics.New()
	statsStore := &stats.Store{DB: db}
	approvals := approval.NewService(db, fees, mailer, m, log.WithField("component", "approval"))

	// 3. --- AI Assistant (optional) ---
	aiService := newAssistant(cfg, log)
	if aiService != nil {
		defer aiService.Close()
		defer aiService.DB.Close()
	}

	// 4. --- Background Jobs ---
	limiter := middleware.NewRateLimiter(cfg.Limits.AuthPerMinute, cfg.Limits.AuthBurst, log.WithField("component", "ratelimit"))
	scheduler := jobs.New(log.WithField("component", "jobs"), 30*time.Second)
	for _, j := range []jobs.Job{
		{Name: "pending-gauges", Spec: cfg.MetricsRefresh, Run: func(ctx context.Context) {
			m.RefreshPending(ctx, statsStore, log)
		}},
		{Name: "limiter-cleanup", Spec: "@every 10m", Run: func(context.Context) {
			limiter.Cleanup()
		}},
	} {
		if err := scheduler.Add(j); err != nil {
			log.WithError(err).Fatal("invalid job schedule")
		}
	}
	m.RefreshPending(context.Background(), statsStore, log)
	scheduler.Start()
	defer scheduler.Stop()

	// --- Application Setup ---
	if err := handlers.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("register validators")
	}
	app := &handlers.Handlers{
		DB:        db,
		Config:    cfg,
		Tokens:    auth.NewTokenIssuer(cfg.Auth),
		Approvals: approvals,
		Fees:      fees,
		Mailer:    mailer,
		Files:     files,
		Stats:     statsStore,
		AIService: aiService,
		Log:       log.WithField("component", "http"),
	}

	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(app, routes.Options{Metrics: m, AuthLimiter: limiter})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.Addr).Info("starting MintVerse API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func newLogger(cfg *config.Config) *logrus.Entry {
	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logrus.NewEntry(logger).WithField("service", "mintverse-api")
}

// newAssistant returns nil when the assistant is not configured or its
// read-only pool cannot be opened; the API runs without it.
func newAssistant(cfg *config.Config, log *logrus.Entry) *ai.AIService {
	if cfg.AI.GeminiKey == "" || cfg.Database.ReadOnlyDSN == "" {
		log.Info("AI assistant disabled (GEMINI_API_KEY or DB_DSN_READONLY not set)")
		return nil
	}

	ro, err := database.Open(cfg.Database.ReadOnlyDSN, log.WithField("pool", "readonly"))
	if err != nil {
		log.WithError(err).Warn("AI assistant disabled: read-only database unavailable")
		return nil
	}

	svc, err := ai.NewAIService(context.Background(), cfg.AI.GeminiKey, cfg.AI.Model, ro, log.WithField("component", "ai"))
	if err != nil {
		ro.Close()
		log.WithError(err).Warn("AI assistant disabled")
		return nil
	}
	return svc
}
