package artwork

import (
	"net/http"
	"strconv"
	"strings"

	"arttimeline/internal/httpx"
)

type HTTPHandler struct {
	fetcher *Fetcher
}

func NewHTTPHandler(fetcher *Fetcher) *HTTPHandler {
	return &HTTPHandler{fetcher: fetcher}
}

// Get handles GET /api/artworks/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Artwork id must be a positive integer", nil)
		return
	}

	a, ok := h.fetcher.Lookup(r.Context(), id)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Artwork not found", nil)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Search handles GET /api/met/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			[]httpx.ErrorDetail{{Field: "q", Message: "q is required"}})
		return
	}
	hasImages := true
	if v := r.URL.Query().Get("hasImages"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
				[]httpx.ErrorDetail{{Field: "hasImages", Message: "hasImages must be true or false"}})
			return
		}
		hasImages = parsed
	}

	res, ok := h.fetcher.SearchObjects(r.Context(), q, hasImages)
	if !ok {
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Collection search is unavailable", nil)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}
