package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/bookshelf/internal/catalog"
	"github.com/openshelf/bookshelf/internal/database/entries"
	"github.com/openshelf/bookshelf/internal/entities"
	"github.com/openshelf/bookshelf/internal/readinglist"
)

const defaultMaxResults = 10

// CatalogSearcher covers the catalog lookups the book endpoints need.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, maxResults int) (*catalog.SearchResult, error)
	GetByID(ctx context.Context, catalogBookID string) (*catalog.Volume, error)
}

// ReadingListManager covers the reading-list operations the book
// endpoints need.
type ReadingListManager interface {
	AddOrUpdateBook(ctx context.Context, userID uint, catalogBookID string, state entities.BookState) (*entities.ReadingListEntry, error)
	RecordProgress(ctx context.Context, userID uint, catalogBookID string, reportedPage int) (*entities.ReadingListEntry, error)
	ListForUser(ctx context.Context, userID uint) (*readinglist.Shelves, error)
}

type BooksController struct {
	catalog CatalogSearcher
	list    ReadingListManager
}

func NewBooksController(catalogClient CatalogSearcher, list ReadingListManager) *BooksController {
	return &BooksController{catalog: catalogClient, list: list}
}

// entryResponse is a reading-list entry with its cached catalog volume
// inlined for the client.
type entryResponse struct {
	ID          uint               `json:"id"`
	BookID      string             `json:"book_id"`
	State       entities.BookState `json:"state"`
	CurrentPage *int               `json:"current_page,omitempty"`
	TotalPages  int                `json:"total_pages"`
	Book        json.RawMessage    `json:"book,omitempty"`
}

func toEntryResponse(entry *entities.ReadingListEntry) entryResponse {
	resp := entryResponse{
		ID:          entry.ID,
		BookID:      entry.CatalogBookID,
		State:       entry.State,
		CurrentPage: entry.CurrentPage,
		TotalPages:  entry.TotalPages,
	}
	if entry.CatalogPayload != "" {
		resp.Book = json.RawMessage(entry.CatalogPayload)
	}
	return resp
}

func toEntryResponses(list []entities.ReadingListEntry) []entryResponse {
	out := make([]entryResponse, 0, len(list))
	for i := range list {
		out = append(out, toEntryResponse(&list[i]))
	}
	return out
}

// Search queries the catalog provider by free text.
// GET /books?q=...&maxResults=...
func (bc *BooksController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	maxResults := defaultMaxResults
	if raw := c.Query("maxResults"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondBadRequest(c, "invalid maxResults")
			return
		}
		maxResults = n
	}

	result, err := bc.catalog.Search(c.Request.Context(), query, maxResults)
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			respondUpstreamUnavailable(c)
			return
		}
		respondInternalError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBook looks up a single catalog volume by identifier.
// GET /books/:bookId
func (bc *BooksController) GetBook(c *gin.Context) {
	volume, err := bc.catalog.GetByID(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, catalog.ErrUnavailable):
			respondUpstreamUnavailable(c)
		default:
			respondInternalError(c, err, "get book")
		}
		return
	}

	c.Data(http.StatusOK, "application/json", volume.Raw)
}

// MyBooks returns the user's reading list grouped by state.
// GET /my-books
func (bc *BooksController) MyBooks(c *gin.Context) {
	shelves, err := bc.list.ListForUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list my books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reading":       toEntryResponses(shelves.Reading),
		"read":          toEntryResponses(shelves.Read),
		"wants_to_read": toEntryResponses(shelves.WantsToRead),
	})
}

type addBookRequest struct {
	BookID    string             `json:"bookId" binding:"required"`
	BookState entities.BookState `json:"bookState" binding:"required"`
}

// AddToMyBooks adds a catalog book to the user's list, or changes the
// state of an existing entry.
// POST /books/my-books
func (bc *BooksController) AddToMyBooks(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "bookId and bookState are required")
		return
	}

	entry, err := bc.list.AddOrUpdateBook(c.Request.Context(), GetUserID(c), req.BookID, req.BookState)
	if err != nil {
		switch {
		case errors.Is(err, readinglist.ErrInvalidState):
			respondBadRequest(c, "invalid bookState")
		case errors.Is(err, catalog.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, catalog.ErrUnavailable):
			respondUpstreamUnavailable(c)
		default:
			respondInternalError(c, err, "add book")
		}
		return
	}

	c.JSON(http.StatusOK, toEntryResponse(entry))
}

type progressRequest struct {
	Page *int `json:"page" binding:"required"`
}

// RecordProgress records the page the user reached in a book.
// PUT /books/:id/reading
func (bc *BooksController) RecordProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Page == nil {
		respondBadRequest(c, "page is required")
		return
	}
	if *req.Page < 0 {
		respondBadRequest(c, "page must not be negative")
		return
	}

	entry, err := bc.list.RecordProgress(c.Request.Context(), GetUserID(c), c.Param("id"), *req.Page)
	if err != nil {
		if errors.Is(err, entries.ErrEntryNotFound) {
			respondNotFound(c, "reading list entry")
			return
		}
		respondInternalError(c, err, "record progress")
		return
	}

	c.JSON(http.StatusOK, toEntryResponse(entry))
}
