package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"opsplan-service/internal/infrastructure/config"
	"opsplan-service/internal/infrastructure/oauth"
	"opsplan-service/internal/infrastructure/persistence"
	"opsplan-service/internal/interface/httpapi"
	planRepo "opsplan-service/internal/interface/repository"
	"opsplan-service/internal/usecase"
	"opsplan-service/pkg/logger"
	"opsplan-service/pkg/metrics"
	"opsplan-service/templates"

	domainRepo "opsplan-service/internal/domain/repository"
)

func main() {
	// Load configuration first so the logger knows the mode
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Debug)
	log.Info("Starting Opsplan Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up PostgreSQL connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if cfg.AutoMigrate {
		if err := planRepo.AutoMigrate(gormDB); err != nil {
			log.Fatal("Failed to migrate schema", "error", err)
		}
	}

	// Set up MongoDB connection for the audit trail
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	auditDB := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up repositories
	plans := planRepo.NewGormPlanRepository(gormDB)
	customers := planRepo.NewGormCustomerDirectory(gormDB)
	tags := planRepo.NewGormTagIndex(gormDB)
	audit := planRepo.NewMongoAuditSink(auditDB, log)

	// Set up the plan service
	m := metrics.NewMetrics("opsplan", prometheus.DefaultRegisterer)
	risk := usecase.RiskPolicy{FinalWindowFraction: cfg.RiskFinalWindowFraction}
	planService := usecase.NewPlanService(plans, customers, tags, audit, risk, log, m)

	// Set up the reminder dispatcher
	if cfg.ReminderDispatchEnabled {
		var notifier domainRepo.NotifierRepository
		if cfg.NotifierBackend == "gmail" {
			gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log)
			notifier, err = planRepo.NewGmailNotifier(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailSender, log)
			if err != nil {
				log.Fatal("Failed to create Gmail notifier", "error", err)
			}
		} else {
			notifier = planRepo.NewWebhookNotifier(cfg.WebhookEndpoint, cfg.WebhookToken, log)
		}

		renderer := templates.NewReminderMessageRenderer(log)
		dispatcher := usecase.NewReminderDispatcher(planService, renderer, notifier, log, m, cfg.ReminderInterval)
		go dispatcher.Run(ctx)
	}

	// Set up HTTP server
	handler := httpapi.NewPlanHandler(planService, log)
	router := httpapi.NewRouter(handler, log, cfg.Debug)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the dispatcher

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Opsplan Service stopped")
}
