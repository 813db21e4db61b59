package indicators

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Handler handles indicator HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new indicator handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "indicators").Logger(),
	}
}

// RegisterRoutes mounts the indicator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/indicators/{region}/update", h.HandleUpdateRegion)
	r.Post("/indicators/{region}/{symbol}/update", h.HandleUpdateSymbol)
	r.Get("/indicators/{region}/{symbol}/summary", h.HandleSummary)
}

// HandleUpdateSymbol updates indicators for a single symbol.
// ?force=latest recomputes the most recent date as well.
func (h *Handler) HandleUpdateSymbol(w http.ResponseWriter, r *http.Request) {
	region, ok := h.region(w, r)
	if !ok {
		return
	}
	symbol := chi.URLParam(r, "symbol")
	force := r.URL.Query().Get("force") == "latest"

	result, err := h.service.UpdateSymbol(symbol, region, force)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleUpdateRegion updates indicators for every symbol in a region and
// returns the partial-success summary.
func (h *Handler) HandleUpdateRegion(w http.ResponseWriter, r *http.Request) {
	region, ok := h.region(w, r)
	if !ok {
		return
	}

	result, err := h.service.UpdateRegion(region)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleSummary returns the latest indicator record plus derived context.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	region, ok := h.region(w, r)
	if !ok {
		return
	}
	symbol := chi.URLParam(r, "symbol")

	summary, err := h.service.Summary(symbol, region)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) region(w http.ResponseWriter, r *http.Request) (domain.Region, bool) {
	region := domain.Region(chi.URLParam(r, "region"))
	if domain.RegionConfigFor(region) == nil {
		h.writeError(w, http.StatusBadRequest, "unknown region")
		return "", false
	}
	return region, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
