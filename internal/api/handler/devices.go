package handler

import (
	"encoding/json"
	"net/http"

	"github.com/swellwatch/swellwatch/internal/api/respond"
)

type registerDeviceRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// RegisterDevice upserts a push token for a user.
// @Summary Register device token
// @Description Registers (or re-assigns) an FCM device token for push delivery.
// @Tags devices
// @Accept json
// @Produce json
// @Param device body registerDeviceRequest true "Device registration"
// @Success 200 {object} map[string]string
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/devices [post]
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if req.UserID == "" || req.Token == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_FIELDS", "user_id and token are required")
		return
	}

	if err := h.devices.Register(r.Context(), req.UserID, req.Token); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DEVICE_REGISTER_FAILED", "Failed to register device")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}
