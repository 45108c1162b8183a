package handler

import (
	"net/http"
	"strings"

	"github.com/motorline/boost/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	adHandler      *AdHandler
	bumpHandler    *BumpHandler
	historyHandler *HistoryHandler
	healthHandler  *HealthHandler
	corsConfig     middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	adHandler *AdHandler,
	bumpHandler *BumpHandler,
	historyHandler *HistoryHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		adHandler:      adHandler,
		bumpHandler:    bumpHandler,
		historyHandler: historyHandler,
		healthHandler:  healthHandler,
		corsConfig:     corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// API endpoints
	mux.HandleFunc("/api/v1/ads", rt.handleAds)
	mux.HandleFunc("/api/v1/ads/", rt.handleAdsWithID)
	mux.HandleFunc("/api/v1/bump-events", rt.historyHandler.List)

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// handleAds routes ad collection endpoints
func (rt *Router) handleAds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.adHandler.List(w, r)
	case http.MethodPost:
		rt.adHandler.Create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAdsWithID routes individual ad endpoints and bump sub-resources
func (rt *Router) handleAdsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/ads/")

	// Bump schedule sub-resource
	if strings.HasSuffix(path, "/bump") {
		switch r.Method {
		case http.MethodPost:
			rt.bumpHandler.Activate(w, r)
		case http.MethodGet:
			rt.bumpHandler.Get(w, r)
		case http.MethodDelete:
			rt.bumpHandler.Cancel(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	// Bump history sub-resource
	if strings.HasSuffix(path, "/bumps") {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.historyHandler.ListByAd(w, r)
		return
	}

	// Ad CRUD
	switch r.Method {
	case http.MethodGet:
		rt.adHandler.Get(w, r)
	case http.MethodDelete:
		rt.adHandler.Delete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
