package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/motorline/boost/internal/model"
	"github.com/motorline/boost/internal/service"
)

// AdHandler handles vehicle ad CRUD operations
type AdHandler struct {
	service *service.AdService
}

// NewAdHandler creates a new ad handler
func NewAdHandler(service *service.AdService) *AdHandler {
	return &AdHandler{
		service: service,
	}
}

// AdListResponse represents the ad list response
type AdListResponse struct {
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Results []model.AdListItem `json:"results"`
}

// Create handles POST /api/v1/ads
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ad model.VehicleAd
	if err := json.NewDecoder(r.Body).Decode(&ad); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.Create(r.Context(), &ad); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ad)
}

// Get handles GET /api/v1/ads/{id}
func (h *AdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/ads/")
	id = strings.Split(id, "/")[0]

	ad, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ad)
}

// List handles GET /api/v1/ads
func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicleMake := r.URL.Query().Get("make")
	promoted := parseQueryBool(r, "promoted")
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	if limit > 100 {
		limit = 100
	}

	items, total, err := h.service.List(r.Context(), vehicleMake, promoted, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := AdListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: items,
	}

	writeJSON(w, http.StatusOK, response)
}

// Delete handles DELETE /api/v1/ads/{id}
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/ads/")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Ad deleted successfully",
	})
}
