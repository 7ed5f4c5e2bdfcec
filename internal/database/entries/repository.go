// Package entries provides database operations for reading-list entries.
//
// # Usage
//
//	repo := entries.NewRepository(db)
//	entry, err := repo.Get(userID, catalogBookID)
package entries

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openshelf/bookshelf/internal/entities"
)

// ErrEntryNotFound is returned when no entry exists for the
// (user, catalog book) pair.
var ErrEntryNotFound = errors.New("reading list entry not found")

// Repository handles all reading-list database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading-list repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves the entry for a (user, catalog book) pair.
func (r *Repository) Get(userID uint, catalogBookID string) (*entities.ReadingListEntry, error) {
	var entry entities.ReadingListEntry
	err := r.db.Where("user_id = ? AND catalog_book_id = ?", userID, catalogBookID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// GetByID retrieves an entry by its primary key.
func (r *Repository) GetByID(id uint) (*entities.ReadingListEntry, error) {
	var entry entities.ReadingListEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// UpdateState sets the state of an existing entry, leaving progress
// untouched. Returns ErrEntryNotFound when no row matches the pair.
func (r *Repository) UpdateState(userID uint, catalogBookID string, state entities.BookState) error {
	result := r.db.Model(&entities.ReadingListEntry{}).
		Where("user_id = ? AND catalog_book_id = ?", userID, catalogBookID).
		Update("state", state)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Upsert inserts an entry, or updates only the state of an existing one.
// The conflict target is the (user_id, catalog_book_id) unique index, so a
// concurrent add of the same book cannot produce a second row.
func (r *Repository) Upsert(entry *entities.ReadingListEntry) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "catalog_book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(entry).Error
}

// UpdateProgress sets the current page and state of an entry.
func (r *Repository) UpdateProgress(entryID uint, page *int, state entities.BookState) error {
	result := r.db.Model(&entities.ReadingListEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"current_page": page,
			"state":        state,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// UpdateMetadata replaces the cached catalog payload and total page count
// of an entry, optionally adjusting progress when the page count changed.
func (r *Repository) UpdateMetadata(entryID uint, totalPages int, payload string, page *int, state entities.BookState) error {
	updates := map[string]any{
		"total_pages":     totalPages,
		"catalog_payload": payload,
		"refreshed_at":    time.Now(),
		"state":           state,
	}
	if page != nil {
		updates["current_page"] = *page
	}

	result := r.db.Model(&entities.ReadingListEntry{}).
		Where("id = ?", entryID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ListByUser returns all entries for a user in insertion order.
func (r *Repository) ListByUser(userID uint) ([]entities.ReadingListEntry, error) {
	var list []entities.ReadingListEntry
	err := r.db.Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// ListStale returns entries whose cached catalog payload has not been
// refreshed since the cutoff.
func (r *Repository) ListStale(olderThan time.Time, limit int) ([]entities.ReadingListEntry, error) {
	var list []entities.ReadingListEntry
	query := r.db.Where("refreshed_at < ?", olderThan).Order("refreshed_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}
