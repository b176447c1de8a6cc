package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swellwatch/swellwatch/internal/api/respond"
	"github.com/swellwatch/swellwatch/internal/spot"
)

// ListSpots returns the spot catalog, optionally filtered by region.
// @Summary List spots
// @Description Returns all spots, or the spots in one region when region_id is given.
// @Tags spots
// @Produce json
// @Param region_id query string false "Region ID filter"
// @Success 200 {array} spot.Profile
// @Router /api/v1/spots [get]
func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	var (
		profiles []*spot.Profile
		err      error
	)
	if regionID := r.URL.Query().Get("region_id"); regionID != "" {
		profiles, err = h.spots.ListByRegion(r.Context(), regionID)
	} else {
		profiles, err = h.spots.List(r.Context())
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "SPOTS_QUERY_FAILED", "Failed to list spots")
		return
	}
	respond.WriteJSON(w, http.StatusOK, profiles)
}

// GetSpot returns one spot profile.
// @Summary Get spot
// @Description Returns the full profile for one spot.
// @Tags spots
// @Produce json
// @Param spotID path string true "Spot ID"
// @Success 200 {object} spot.Profile
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/spots/{spotID} [get]
func (h *Handler) GetSpot(w http.ResponseWriter, r *http.Request) {
	profile, err := h.spots.Get(r.Context(), chi.URLParam(r, "spotID"))
	if err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "SPOT_NOT_FOUND", "No spot with that ID")
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "SPOTS_QUERY_FAILED", "Failed to load spot")
		return
	}
	respond.WriteJSON(w, http.StatusOK, profile)
}
