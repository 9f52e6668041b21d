package jobs

import (
	"buyback-backend/internal/config"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
	"buyback-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	orderRepo repository.OrderRepository
	services  *Services
	config    *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reminder service.ReminderService
	Reoffer  service.ReofferService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(orderRepo repository.OrderRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		orderRepo: orderRepo,
		services:  services,
		config:    cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SendSevenDayReminders()
	jr.SendFifteenDayReminders()
	jr.CancelStaleOrders()
	jr.AutoAcceptReoffers()
}
