package collection

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"arttimeline/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	log     zerolog.Logger
}

func NewHTTPHandler(service *Service, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

// List handles GET /api/collection
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, entries, map[string]any{"total": len(entries)})
}

// Save handles POST /api/collection
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)

	var in SaveInput
	if !httpx.DecodeAndValidate(w, r, &in) {
		return
	}

	entry, err := h.service.Save(r.Context(), userID, in)
	if err != nil {
		if errors.Is(err, ErrAlreadySaved) {
			httpx.JSONSuccess(w, r, map[string]any{
				"artwork_id":    in.ArtworkID,
				"already_saved": true,
				"message":       "Artwork already in collection",
			}, nil)
			return
		}
		h.internal(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, entry)
}

// Remove handles DELETE /api/collection/{artworkId}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	artworkID, ok := artworkIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Remove(r.Context(), httpx.UserIDFrom(r), artworkID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Artwork not found in collection", nil)
			return
		}
		h.internal(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"artwork_id": artworkID, "removed": true}, nil)
}

// Check handles GET /api/collection/check/{artworkId}
func (h *HTTPHandler) Check(w http.ResponseWriter, r *http.Request) {
	artworkID, ok := artworkIDParam(w, r)
	if !ok {
		return
	}
	saved, err := h.service.IsSaved(r.Context(), httpx.UserIDFrom(r), artworkID)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"artwork_id": artworkID, "is_saved": saved}, nil)
}

func artworkIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("artworkId"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Artwork id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) internal(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error().Stack().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg("collection request failed")
	httpx.InternalError(w, r)
}
