package artwork

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"arttimeline/internal/cache"
	"arttimeline/internal/platform/metmuseum"
)

func newTestMux(remote Remote) *http.ServeMux {
	h := NewHTTPHandler(newTestFetcher(remote, cache.NewMemory()))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/artworks/{id}", h.Get)
	mux.HandleFunc("GET /api/met/search", h.Search)
	return mux
}

func TestHTTPHandler_Get(t *testing.T) {
	remote := &mockRemote{}
	remote.On("Object", mock.Anything, 436535).Return(&metmuseum.Object{
		ObjectID:     436535,
		Title:        "Wheat Field with Cypresses",
		PrimaryImage: "https://images.example/436535.jpg",
	}, nil)
	remote.On("Object", mock.Anything, 1).Return(nil, metmuseum.ErrNotFound)

	mux := newTestMux(remote)

	tests := []struct {
		path string
		want int
	}{
		{"/api/artworks/436535", http.StatusOK},
		{"/api/artworks/1", http.StatusNotFound},
		{"/api/artworks/abc", http.StatusBadRequest},
		{"/api/artworks/-5", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/artworks/436535", nil))
	var body struct {
		Success bool    `json:"success"`
		Data    Artwork `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Wheat Field with Cypresses", body.Data.Title)
	assert.Equal(t, DefaultArtist, body.Data.Artist)
}

func TestHTTPHandler_Search(t *testing.T) {
	remote := &mockRemote{}
	remote.On("Search", mock.Anything, "Greek", false).Return(&metmuseum.SearchResult{Total: 2, ObjectIDs: []int{1, 2}}, nil)
	remote.On("Search", mock.Anything, "down", true).Return(nil, errors.New("boom"))

	mux := newTestMux(remote)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/met/search?q=Greek&hasImages=false", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"total":2,"objectIDs":[1,2]}}`, w.Body.String())

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/met/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/met/search?q=Greek&hasImages=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/met/search?q=down", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
