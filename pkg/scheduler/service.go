package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/pipeline"
)

// Service runs the training pipeline on a cron schedule. Every tick is a
// full, independent run; a failed run is logged and discarded and the next
// tick starts fresh.
type Service struct {
	pipeline *pipeline.Pipeline
	cron     *cron.Cron

	mu       sync.Mutex
	schedule cron.Schedule
	running  bool
}

// NewService creates a new retraining scheduler
func NewService(p *pipeline.Pipeline) *Service {
	return &Service{
		pipeline: p,
		cron:     cron.New(),
	}
}

// Start validates the cron expression and starts scheduled retraining
func (s *Service) Start(spec string) error {
	// Parse cron expression
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already started")
	}

	s.schedule = schedule
	s.cron.Schedule(schedule, cron.FuncJob(s.executeRun))
	s.cron.Start()
	s.running = true

	log.Printf("Retraining scheduler started with schedule: %s (next run: %s)",
		spec, schedule.Next(time.Now()).Format(time.RFC3339))

	return nil
}

// Stop stops the scheduler. A run already in progress is not interrupted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	log.Println("Retraining scheduler stopped")
}

// NextRun returns the next scheduled execution time
func (s *Service) NextRun() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}, false
	}
	return s.schedule.Next(time.Now()), true
}

// executeRun executes one scheduled retraining run
func (s *Service) executeRun() {
	log.Printf("Executing scheduled retraining run")

	result, err := s.pipeline.Run()
	if err != nil {
		if result != nil {
			log.Printf("Error promoting scheduled run %s (version %d): %v", result.RunID, result.Version, err)
		} else {
			log.Printf("Error executing scheduled run: %v", err)
		}
		return
	}

	log.Printf("Scheduled run %s completed: version %d, rmse %.2f (promoted: %v)",
		result.RunID, result.Version, result.Metrics.RMSE, result.Promoted)
}
