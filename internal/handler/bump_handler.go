package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/motorline/boost/internal/service"
	"github.com/motorline/boost/pkg/middleware"
)

// BumpHandler handles bump schedule activation, inspection and cancellation
type BumpHandler struct {
	service *service.BumpService
}

// NewBumpHandler creates a new bump handler
func NewBumpHandler(service *service.BumpService) *BumpHandler {
	return &BumpHandler{
		service: service,
	}
}

// Activate handles POST /api/v1/ads/{id}/bump
func (h *BumpHandler) Activate(w http.ResponseWriter, r *http.Request) {
	adID := adIDFromPath(r.URL.Path)

	var req service.ActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	correlationID := middleware.GetCorrelationID(r.Context())
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	result, err := h.service.Activate(r.Context(), adID, req, correlationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "Bump schedule activated, first bump applied"
	if !result.Immediate {
		message = "Bump schedule activated, first bump scheduled"
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    result,
	})
}

// Get handles GET /api/v1/ads/{id}/bump
func (h *BumpHandler) Get(w http.ResponseWriter, r *http.Request) {
	adID := adIDFromPath(r.URL.Path)

	schedule, err := h.service.GetSchedule(r.Context(), adID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// Cancel handles DELETE /api/v1/ads/{id}/bump
func (h *BumpHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	adID := adIDFromPath(r.URL.Path)

	schedule, err := h.service.Cancel(r.Context(), adID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Bump schedule cancelled",
		Data:    schedule,
	})
}

// adIDFromPath extracts the ad ID from /api/v1/ads/{id}/...
func adIDFromPath(path string) string {
	id := strings.TrimPrefix(path, "/api/v1/ads/")
	return strings.Split(id, "/")[0]
}
