// Package readinglist implements the reading-list manager: the state
// transitions between WANTS_TO_READ, IS_READING and READ, and the page
// progress rule that drives them.
package readinglist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openshelf/bookshelf/internal/catalog"
	"github.com/openshelf/bookshelf/internal/database/entries"
	"github.com/openshelf/bookshelf/internal/entities"
)

// ErrInvalidState is returned when a requested state is not one of the
// known reading states.
var ErrInvalidState = errors.New("invalid book state")

// EntryStore is the persistence surface the manager needs.
type EntryStore interface {
	Get(userID uint, catalogBookID string) (*entities.ReadingListEntry, error)
	GetByID(id uint) (*entities.ReadingListEntry, error)
	UpdateState(userID uint, catalogBookID string, state entities.BookState) error
	Upsert(entry *entities.ReadingListEntry) error
	UpdateProgress(entryID uint, page *int, state entities.BookState) error
	UpdateMetadata(entryID uint, totalPages int, payload string, page *int, state entities.BookState) error
	ListByUser(userID uint) ([]entities.ReadingListEntry, error)
}

// CatalogClient fetches volume metadata for books not yet on the list.
type CatalogClient interface {
	GetByID(ctx context.Context, catalogBookID string) (*catalog.Volume, error)
}

// Shelves is a user's reading list partitioned by state.
type Shelves struct {
	Reading     []entities.ReadingListEntry `json:"reading"`
	Read        []entities.ReadingListEntry `json:"read"`
	WantsToRead []entities.ReadingListEntry `json:"wants_to_read"`
}

// Service is the reading-list manager.
type Service struct {
	store   EntryStore
	catalog CatalogClient
}

// NewService creates a reading-list manager.
func NewService(store EntryStore, catalogClient CatalogClient) *Service {
	return &Service{store: store, catalog: catalogClient}
}

// AddOrUpdateBook puts a book on the user's list in the requested state.
//
// An existing entry only has its state changed; progress is untouched. A new
// entry is created from the catalog volume: total pages from the provider's
// page count, current page unset, and the provider response cached verbatim.
// The write path is conditional-update-then-upsert so a concurrent add of
// the same book cannot create a duplicate entry.
func (s *Service) AddOrUpdateBook(ctx context.Context, userID uint, catalogBookID string, requestedState entities.BookState) (*entities.ReadingListEntry, error) {
	if !requestedState.Valid() {
		return nil, ErrInvalidState
	}

	err := s.store.UpdateState(userID, catalogBookID, requestedState)
	if err == nil {
		return s.store.Get(userID, catalogBookID)
	}
	if !errors.Is(err, entries.ErrEntryNotFound) {
		return nil, fmt.Errorf("update entry state: %w", err)
	}

	volume, err := s.catalog.GetByID(ctx, catalogBookID)
	if err != nil {
		// catalog.ErrBookNotFound and catalog.ErrUnavailable surface as-is
		return nil, err
	}

	entry := &entities.ReadingListEntry{
		UserID:         userID,
		CatalogBookID:  catalogBookID,
		State:          requestedState,
		TotalPages:     volume.VolumeInfo.PageCount,
		CatalogPayload: string(volume.Raw),
		RefreshedAt:    time.Now(),
	}
	if err := s.store.Upsert(entry); err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}

	// Re-read so a lost upsert race still returns the canonical row.
	return s.store.Get(userID, catalogBookID)
}

// RecordProgress records the page a user reached in a book.
//
// The reported page is clamped to the entry's total pages; reaching (or
// overshooting) the last page forces the READ state. Below the last page the
// state stays whatever it was -- progress never auto-promotes to IS_READING.
func (s *Service) RecordProgress(ctx context.Context, userID uint, catalogBookID string, reportedPage int) (*entities.ReadingListEntry, error) {
	entry, err := s.store.Get(userID, catalogBookID)
	if err != nil {
		return nil, err
	}

	page := reportedPage
	state := entry.State
	if reportedPage >= entry.TotalPages {
		page = entry.TotalPages
		state = entities.BookStateRead
	}

	if err := s.store.UpdateProgress(entry.ID, &page, state); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	entry.CurrentPage = &page
	entry.State = state
	return entry, nil
}

// ListForUser returns the user's entries grouped by state. Within a group
// the store's insertion order is preserved.
func (s *Service) ListForUser(ctx context.Context, userID uint) (*Shelves, error) {
	list, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	shelves := &Shelves{
		Reading:     []entities.ReadingListEntry{},
		Read:        []entities.ReadingListEntry{},
		WantsToRead: []entities.ReadingListEntry{},
	}
	for _, entry := range list {
		switch entry.State {
		case entities.BookStateIsReading:
			shelves.Reading = append(shelves.Reading, entry)
		case entities.BookStateRead:
			shelves.Read = append(shelves.Read, entry)
		default:
			shelves.WantsToRead = append(shelves.WantsToRead, entry)
		}
	}
	return shelves, nil
}

// RefreshEntry re-fetches the catalog volume behind an entry and replaces
// the cached payload and page count. If the refreshed page count dropped
// below the recorded progress, the progress is clamped and the entry moves
// to READ, keeping current page within total pages.
func (s *Service) RefreshEntry(ctx context.Context, entryID uint) error {
	entry, err := s.store.GetByID(entryID)
	if err != nil {
		return err
	}

	volume, err := s.catalog.GetByID(ctx, entry.CatalogBookID)
	if err != nil {
		return fmt.Errorf("refresh entry %d: %w", entryID, err)
	}

	totalPages := volume.VolumeInfo.PageCount
	if totalPages == 0 {
		// Provider dropped the page count; keep the recorded one.
		totalPages = entry.TotalPages
	}

	page := entry.CurrentPage
	state := entry.State
	if page != nil && *page >= totalPages {
		clamped := totalPages
		page = &clamped
		state = entities.BookStateRead
	}

	return s.store.UpdateMetadata(entry.ID, totalPages, string(volume.Raw), page, state)
}
