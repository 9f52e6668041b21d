package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buyback-backend/internal/config"
	"buyback-backend/internal/jobs"
	"buyback-backend/internal/logger"
	fsrepo "buyback-backend/internal/repository/firestore"
	"buyback-backend/internal/scheduler"
	"buyback-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-seven-day-reminders', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Buyback Cronjob Runner...", "log_level", cfg.Log.Level)

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

	// Initialize Services. The sweeps never need the price catalog, so the
	// cronjob binary skips the catalog database entirely.
	emailSvc := service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromName, cfg.SendGrid.FromEmail)
	reminderSvc := service.NewReminderService(orderRepo, emailSvc)
	reofferSvc := service.NewReofferService(orderRepo, emailSvc, nil,
		time.Duration(cfg.Lifecycle.AutoAcceptDays)*24*time.Hour)

	jobServices := &jobs.Services{
		Reminder: reminderSvc,
		Reoffer:  reofferSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(orderRepo, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-seven-day-reminders":
		jobRunner.SendSevenDayReminders()
	case "send-fifteen-day-reminders":
		jobRunner.SendFifteenDayReminders()
	case "cancel-stale-orders":
		jobRunner.CancelStaleOrders()
	case "auto-accept-reoffers":
		jobRunner.AutoAcceptReoffers()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-seven-day-reminders\n")
		fmt.Printf("  - send-fifteen-day-reminders\n")
		fmt.Printf("  - cancel-stale-orders\n")
		fmt.Printf("  - auto-accept-reoffers\n")
		fmt.Printf("  - all-nightly\n")
	}
}
