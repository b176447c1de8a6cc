package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/swellwatch/swellwatch/internal/api/respond"
	"github.com/swellwatch/swellwatch/internal/spot"
)

// GetForecast returns the scored forecast for one spot.
// @Summary Spot forecast
// @Description Returns scored hourly conditions, ranked surf windows, chart series, and tide events for a spot.
// @Tags forecast
// @Produce json
// @Param spotID path string true "Spot ID"
// @Param days query int false "Forecast horizon in days (1-7)" default(3)
// @Success 200 {object} forecast.Response
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/forecast/{spotID} [get]
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	spotID := chi.URLParam(r, "spotID")

	days := h.cfg.ForecastDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 7 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_DAYS", "days must be an integer between 1 and 7")
			return
		}
		days = n
	}

	resp, err := h.forecasts.Forecast(r.Context(), spotID, days)
	if err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "SPOT_NOT_FOUND", "No spot with that ID")
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "FORECAST_FAILED", "Failed to build forecast")
		return
	}

	respond.WriteJSON(w, http.StatusOK, resp)
}
