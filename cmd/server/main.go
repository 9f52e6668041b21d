package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "buyback-backend/internal/api/http"
	"buyback-backend/internal/carrier"
	"buyback-backend/internal/catalog"
	"buyback-backend/internal/config"
	"buyback-backend/internal/logger"
	fsrepo "buyback-backend/internal/repository/firestore"
	"buyback-backend/internal/security"
	"buyback-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Buyback Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Firestore configuration", "project_id", cfg.Firestore.ProjectID)

	ctx := context.Background()

	// Initialize Firestore
	fsClient, err := fsrepo.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
	if err != nil {
		logger.Error("Failed to connect to Firestore", "error", err)
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer fsClient.Close()
	logger.Info("Firestore connection established")

	orderRepo := fsrepo.NewOrderRepository(fsClient)

	// Initialize price catalog database
	logger.Info("Connecting to price catalog database...", "host", cfg.Catalog.Host, "port", cfg.Catalog.Port)
	db, err := sql.Open("postgres", cfg.GetCatalogConnectionString())
	if err != nil {
		logger.Error("Failed to connect to catalog database", "error", err)
		log.Fatalf("Failed to connect to catalog database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping catalog database", "error", err)
		log.Fatalf("Failed to ping catalog database: %v", err)
	}
	logger.Info("Catalog database connection established")
	priceCatalog := catalog.NewPostgresCatalog(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Initialize carrier client
	var carrierClient carrier.Client
	if cfg.Carrier.Mode == "" || cfg.Carrier.Mode == "mock" {
		logger.Info("Using mock carrier client")
		carrierClient = carrier.NewMockClient(cfg.Carrier.BaseURL)
	} else {
		logger.Error("Unsupported carrier mode", "mode", cfg.Carrier.Mode)
		log.Fatalf("Carrier mode '%s' not yet implemented", cfg.Carrier.Mode)
	}

	// Initialize Services
	emailSvc := service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromName, cfg.SendGrid.FromEmail)
	orderSvc := service.NewOrderService(orderRepo, emailSvc)
	reofferSvc := service.NewReofferService(orderRepo, emailSvc, priceCatalog,
		time.Duration(cfg.Lifecycle.AutoAcceptDays)*24*time.Hour)
	labelSvc := service.NewLabelService(orderRepo, carrierClient)
	reminderSvc := service.NewReminderService(orderRepo, emailSvc)

	// Initialize HTTP API
	handler := httpapi.NewHandler(orderSvc, reofferSvc, labelSvc, reminderSvc)
	router := httpapi.NewRouter(handler, tokenManager)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
