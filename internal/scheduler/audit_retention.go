package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/tasks"
)

// AuditRetentionScheduler periodically enqueues an audit cleanup task
// so the audit trail does not grow without bound.
type AuditRetentionScheduler struct {
	taskClient    *tasks.Client
	schedule      string
	retentionDays int

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditRetentionScheduler creates a new scheduler instance.
func NewAuditRetentionScheduler(taskClient *tasks.Client, schedule string, retentionDays int) *AuditRetentionScheduler {
	return &AuditRetentionScheduler{
		taskClient:    taskClient,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *AuditRetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.taskClient == nil {
		log.Printf("Audit retention scheduler: task queue disabled, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit retention scheduler: started with schedule '%s' (keeping %d days)",
		s.schedule, s.retentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to
// complete.
func (s *AuditRetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Audit retention scheduler: stopped")
}

// RunNow enqueues an immediate cleanup.
func (s *AuditRetentionScheduler) RunNow() {
	s.enqueueCleanup()
}

func (s *AuditRetentionScheduler) enqueueCleanup() {
	_, err := s.taskClient.Add(tasks.CleanupAuditEventsTask{
		RetentionDays: s.retentionDays,
	}).Save()
	if err != nil {
		log.Printf("Audit retention scheduler: failed to enqueue cleanup: %v", err)
		return
	}
	log.Printf("Audit retention scheduler: cleanup task enqueued")
}
