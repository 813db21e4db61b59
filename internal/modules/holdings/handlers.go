package holdings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Handler handles holdings HTTP requests
type Handler struct {
	aggregator *Aggregator
	repo       *Repository
	log        zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(aggregator *Aggregator, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		repo:       repo,
		log:        log.With().Str("handler", "holdings").Logger(),
	}
}

// RegisterRoutes mounts the holdings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/holdings/aggregate", h.HandleAggregateAll)
	r.Post("/holdings/{region}/aggregate", h.HandleAggregateRegion)
	r.Get("/holdings/{region}", h.HandleGetHoldings)
}

// HandleAggregateRegion recomputes one region's holdings table.
func (h *Handler) HandleAggregateRegion(w http.ResponseWriter, r *http.Request) {
	region, ok := h.region(w, r)
	if !ok {
		return
	}

	rows, err := h.aggregator.AggregateRegion(region)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, rows)
}

// HandleAggregateAll recomputes every region and returns per-region outcomes.
func (h *Handler) HandleAggregateAll(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.aggregator.AggregateAll())
}

// HandleGetHoldings returns the stored holdings view for a region.
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	region, ok := h.region(w, r)
	if !ok {
		return
	}

	rows, err := h.repo.GetHoldings(region)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, rows)
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
