package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volumes":
			if r.URL.Query().Get("q") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"totalItems": 2,
				"items": [
					{"id": "vol-1", "volumeInfo": {"title": "The Go Programming Language", "pageCount": 380}},
					{"id": "vol-2", "volumeInfo": {"title": "Learning Go", "pageCount": 375}}
				]
			}`))
		case "/volumes/vol-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "vol-1",
				"volumeInfo": {
					"title": "The Go Programming Language",
					"subtitle": "",
					"authors": ["Alan A. A. Donovan", "Brian W. Kernighan"],
					"pageCount": 380,
					"imageLinks": {"thumbnail": "http://example.com/cover.jpg"}
				}
			}`))
		case "/volumes/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_Search(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	result, err := client.Search(context.Background(), "golang", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalItems)
	require.Len(t, result.Items, 2)

	// Items pass through verbatim
	var first struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(result.Items[0], &first))
	assert.Equal(t, "vol-1", first.ID)
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	client := NewClient("http://localhost:0", "", time.Second)

	_, err := client.Search(context.Background(), "", 10)
	assert.Error(t, err)
}

func TestClient_GetByID(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	volume, err := client.GetByID(context.Background(), "vol-1")
	require.NoError(t, err)
	assert.Equal(t, "vol-1", volume.ID)
	assert.Equal(t, "The Go Programming Language", volume.VolumeInfo.Title)
	assert.Equal(t, 380, volume.VolumeInfo.PageCount)
	assert.NotEmpty(t, volume.Raw, "raw payload should be preserved for caching")
}

func TestClient_GetByID_NotFound(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	_, err := client.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestClient_GetByID_ServerError(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)

	_, err := client.GetByID(context.Background(), "boom")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_GetByID_Unreachable(t *testing.T) {
	// Closed server: connection refused must surface as ErrUnavailable.
	server := newTestServer(t)
	server.Close()

	client := NewClient(server.URL, "", time.Second)

	_, err := client.GetByID(context.Background(), "vol-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
