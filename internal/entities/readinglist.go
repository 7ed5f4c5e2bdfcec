package entities

import "time"

// BookState is the user's relationship to a book on their reading list.
type BookState string

const (
	BookStateWantsToRead BookState = "WANTS_TO_READ"
	BookStateIsReading   BookState = "IS_READING"
	BookStateRead        BookState = "READ"
)

// Valid reports whether s is one of the known reading states.
func (s BookState) Valid() bool {
	switch s {
	case BookStateWantsToRead, BookStateIsReading, BookStateRead:
		return true
	}
	return false
}

// ReadingListEntry is one user's record for one catalog book.
//
// The composite unique index on (user_id, catalog_book_id) lets the add path
// be a single upsert rather than a check-then-create sequence.
type ReadingListEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_catalog_book;index" json:"user_id"`
	CatalogBookID string    `gorm:"uniqueIndex:idx_user_catalog_book;index;size:64" json:"catalog_book_id"`
	State         BookState `gorm:"size:20" json:"state"`
	CurrentPage   *int      `json:"current_page,omitempty"`
	TotalPages    int       `json:"total_pages"`

	// CatalogPayload is the catalog provider's volume response, stored
	// verbatim at add time and refreshed by the background refresher.
	CatalogPayload string    `gorm:"type:text" json:"-"`
	RefreshedAt    time.Time `json:"refreshed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ReadingListEntry) TableName() string {
	return "reading_list_entries"
}
