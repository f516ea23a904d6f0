package timeline

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"arttimeline/internal/httpx"
)

// MaxLimit caps ?limit on the period endpoint.
const MaxLimit = 20

type HTTPHandler struct {
	service      *Service
	defaultLimit int
	log          zerolog.Logger
}

func NewHTTPHandler(service *Service, defaultLimit int, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, defaultLimit: defaultLimit, log: log}
}

// ListPeriods handles GET /api/periods
func (h *HTTPHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.service.Periods(), nil)
}

// PeriodArtworks handles GET /api/artworks/period/{periodId}
func (h *HTTPHandler) PeriodArtworks(w http.ResponseWriter, r *http.Request) {
	periodID := r.PathValue("periodId")

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
				[]httpx.ErrorDetail{{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", MaxLimit)}})
			return
		}
		limit = n
	}

	arts, err := h.service.PeriodArtworks(r.Context(), periodID, limit)
	if err != nil {
		if errors.Is(err, ErrUnknownPeriod) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Period not found", nil)
			return
		}
		h.log.Error().Stack().Err(err).Str("period", periodID).Str("request_id", httpx.RequestIDFrom(r)).Msg("period request failed")
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccess(w, r, arts, map[string]any{
		"period": periodID,
		"count":  len(arts),
		"limit":  limit,
	})
}
