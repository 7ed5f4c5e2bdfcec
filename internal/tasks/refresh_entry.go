package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// EntryRefresher re-fetches the catalog metadata behind a reading-list
// entry. Implemented by the reading-list service.
type EntryRefresher interface {
	RefreshEntry(ctx context.Context, entryID uint) error
}

// RefreshEntryTask refreshes the cached catalog payload of one entry.
type RefreshEntryTask struct {
	EntryID uint `json:"entry_id"`
}

// Config returns the queue configuration for refresh tasks.
func (t RefreshEntryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_entry",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshEntryProcessor creates a processor function for RefreshEntryTask.
func RefreshEntryProcessor(refresher EntryRefresher) backlite.QueueProcessor[RefreshEntryTask] {
	return func(ctx context.Context, task RefreshEntryTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		if err := refresher.RefreshEntry(ctx, task.EntryID); err != nil {
			return fmt.Errorf("refresh entry %d: %w", task.EntryID, err)
		}

		log.Printf("[TASK] Refreshed catalog metadata for entry %d", task.EntryID)
		return nil
	}
}

// NewRefreshEntryQueue creates a backlite queue for refresh tasks.
func NewRefreshEntryQueue(refresher EntryRefresher) backlite.Queue {
	return backlite.NewQueue(RefreshEntryProcessor(refresher))
}
