package handler

import (
	"net/http"
	"strings"

	"github.com/motorline/boost/internal/model"
	"github.com/motorline/boost/internal/service"
)

// HistoryHandler handles bump event history queries
type HistoryHandler struct {
	service *service.EventService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *service.EventService) *HistoryHandler {
	return &HistoryHandler{
		service: service,
	}
}

// EventListResponse represents the bump event list response
type EventListResponse struct {
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
	Results []model.BumpEventSummary `json:"results"`
}

// List handles GET /api/v1/bump-events
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	adID := r.URL.Query().Get("ad_id")
	h.list(w, r, adID)
}

// ListByAd handles GET /api/v1/ads/{id}/bumps
func (h *HistoryHandler) ListByAd(w http.ResponseWriter, r *http.Request) {
	adID := strings.TrimPrefix(r.URL.Path, "/api/v1/ads/")
	adID = strings.Split(adID, "/")[0]
	h.list(w, r, adID)
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request, adID string) {
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	if limit > 100 {
		limit = 100
	}

	items, total, err := h.service.List(r.Context(), adID, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := EventListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: items,
	}

	writeJSON(w, http.StatusOK, response)
}
