// Package scheduler runs the periodic job that queues catalog metadata
// refreshes for stale reading-list entries.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/bookshelf/internal/config"
	"github.com/openshelf/bookshelf/internal/database/entries"
	"github.com/openshelf/bookshelf/internal/tasks"
)

// batchLimit caps how many stale entries one scheduler run enqueues.
const batchLimit = 200

// RefreshScheduler periodically finds entries whose cached catalog payload
// is stale and enqueues refresh tasks for them.
type RefreshScheduler struct {
	repo       *entries.Repository
	taskClient *tasks.Client
	cfg        config.Refresh

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewRefreshScheduler creates a scheduler instance.
func NewRefreshScheduler(repo *entries.Repository, taskClient *tasks.Client, cfg config.Refresh) *RefreshScheduler {
	return &RefreshScheduler{
		repo:       repo,
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if refresh is enabled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Metadata refresh scheduler: disabled")
		return nil
	}
	if s.taskClient == nil {
		log.Printf("Metadata refresh scheduler: task queue not available, skipping")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.enqueueStale); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Metadata refresh scheduler: started with schedule '%s' (stale after %v)",
		s.cfg.Schedule, s.cfg.StaleAfter)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Metadata refresh scheduler: stopped")
}

func (s *RefreshScheduler) enqueueStale() {
	cutoff := time.Now().Add(-s.cfg.StaleAfter)

	stale, err := s.repo.ListStale(cutoff, batchLimit)
	if err != nil {
		log.Printf("Metadata refresh scheduler: listing stale entries failed: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	queued := 0
	for _, entry := range stale {
		if _, err := s.taskClient.Add(tasks.RefreshEntryTask{EntryID: entry.ID}).Save(); err != nil {
			log.Printf("Metadata refresh scheduler: enqueue for entry %d failed: %v", entry.ID, err)
			continue
		}
		queued++
	}

	log.Printf("Metadata refresh scheduler: queued %d of %d stale entries", queued, len(stale))
}
