package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/bookshelf/internal/auth"
	"github.com/openshelf/bookshelf/internal/catalog"
	"github.com/openshelf/bookshelf/internal/database"
	"github.com/openshelf/bookshelf/internal/database/entries"
	"github.com/openshelf/bookshelf/internal/database/users"
	"github.com/openshelf/bookshelf/internal/readinglist"
)

// stubCatalog implements both CatalogSearcher and the reading-list
// service's catalog dependency.
type stubCatalog struct {
	volumes map[string]*catalog.Volume
	err     error
}

func (s *stubCatalog) Search(ctx context.Context, query string, maxResults int) (*catalog.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	items := make([]json.RawMessage, 0, len(s.volumes))
	for _, v := range s.volumes {
		items = append(items, v.Raw)
	}
	return &catalog.SearchResult{TotalItems: len(items), Items: items}, nil
}

func (s *stubCatalog) GetByID(ctx context.Context, catalogBookID string) (*catalog.Volume, error) {
	if s.err != nil {
		return nil, s.err
	}
	volume, ok := s.volumes[catalogBookID]
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	return volume, nil
}

func stubVolume(id string, pageCount int) *catalog.Volume {
	raw, _ := json.Marshal(map[string]any{
		"id":         id,
		"volumeInfo": map[string]any{"title": "Book " + id, "pageCount": pageCount},
	})
	return &catalog.Volume{
		ID:         id,
		VolumeInfo: catalog.VolumeInfo{Title: "Book " + id, PageCount: pageCount},
		Raw:        raw,
	}
}

type testHarness struct {
	router  *gin.Engine
	catalog *stubCatalog
	auth    *auth.Service
}

func setupRouter(t *testing.T) (*testHarness, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cat := &stubCatalog{volumes: map[string]*catalog.Volume{
		"b1": stubVolume("b1", 300),
		"b2": stubVolume("b2", 150),
	}}

	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour, 3*time.Hour)
	authService := auth.NewService(users.NewRepository(db.DB), tokens, 4)
	listService := readinglist.NewService(entries.NewRepository(db.DB), cat)

	router := NewRouter(RouterConfig{
		AuthService: authService,
		Catalog:     cat,
		ReadingList: listService,
		Database:    db,
		Version:     "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return &testHarness{router: router, catalog: cat, auth: authService}, cleanup
}

// signUpUser registers a user through the service and returns a valid
// access token for request authentication.
func signUpUser(t *testing.T, h *testHarness, email string) string {
	t.Helper()
	_, pair, err := h.auth.SignUp("Test User", email, "hunter2hunter2")
	require.NoError(t, err)
	return pair.AccessToken
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}
