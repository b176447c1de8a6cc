package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swellwatch/swellwatch/internal/api/respond"
	"github.com/swellwatch/swellwatch/internal/scheduling"
)

// CreateScheduling registers a new notification scheduling.
// @Summary Create scheduling
// @Description Validates and persists a notification scheduling for a user.
// @Tags schedulings
// @Accept json
// @Produce json
// @Param scheduling body scheduling.Scheduling true "Scheduling to create"
// @Success 201 {object} scheduling.Scheduling
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/schedulings [post]
func (h *Handler) CreateScheduling(w http.ResponseWriter, r *http.Request) {
	var sched scheduling.Scheduling
	if err := json.NewDecoder(r.Body).Decode(&sched); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a valid scheduling JSON object")
		return
	}

	created, err := h.schedulings.Create(r.Context(), &sched)
	if err != nil {
		if verr := sched.Validate(); verr != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SCHEDULING", "Scheduling failed validation", verr.Error())
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULING_CREATE_FAILED", "Failed to create scheduling")
		return
	}

	respond.WriteJSON(w, http.StatusCreated, created)
}

// GetScheduling returns one scheduling by ID.
// @Summary Get scheduling
// @Tags schedulings
// @Produce json
// @Param schedulingID path string true "Scheduling ID"
// @Success 200 {object} scheduling.Scheduling
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/schedulings/{schedulingID} [get]
func (h *Handler) GetScheduling(w http.ResponseWriter, r *http.Request) {
	sched, err := h.schedulings.Get(r.Context(), chi.URLParam(r, "schedulingID"))
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "SCHEDULING_NOT_FOUND", "No scheduling with that ID")
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULING_QUERY_FAILED", "Failed to load scheduling")
		return
	}
	respond.WriteJSON(w, http.StatusOK, sched)
}

// ListUserSchedulings returns all schedulings owned by a user.
// @Summary List user schedulings
// @Tags schedulings
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {array} scheduling.Scheduling
// @Router /api/v1/users/{userID}/schedulings [get]
func (h *Handler) ListUserSchedulings(w http.ResponseWriter, r *http.Request) {
	scheds, err := h.schedulings.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULING_QUERY_FAILED", "Failed to list schedulings")
		return
	}
	respond.WriteJSON(w, http.StatusOK, scheds)
}

// UpdateScheduling replaces a scheduling's target, preferences, and settings.
// @Summary Update scheduling
// @Description Full replacement update. The path ID wins over any ID in the body.
// @Tags schedulings
// @Accept json
// @Produce json
// @Param schedulingID path string true "Scheduling ID"
// @Param scheduling body scheduling.Scheduling true "New scheduling state"
// @Success 200 {object} scheduling.Scheduling
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/schedulings/{schedulingID} [put]
func (h *Handler) UpdateScheduling(w http.ResponseWriter, r *http.Request) {
	var sched scheduling.Scheduling
	if err := json.NewDecoder(r.Body).Decode(&sched); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a valid scheduling JSON object")
		return
	}
	sched.ID = chi.URLParam(r, "schedulingID")

	updated, err := h.schedulings.Update(r.Context(), &sched)
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "SCHEDULING_NOT_FOUND", "No scheduling with that ID")
			return
		}
		if verr := sched.Validate(); verr != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SCHEDULING", "Scheduling failed validation", verr.Error())
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULING_UPDATE_FAILED", "Failed to update scheduling")
		return
	}
	respond.WriteJSON(w, http.StatusOK, updated)
}

// DeleteScheduling removes a scheduling. Notification history survives.
// @Summary Delete scheduling
// @Tags schedulings
// @Param schedulingID path string true "Scheduling ID"
// @Success 204 "deleted"
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/schedulings/{schedulingID} [delete]
func (h *Handler) DeleteScheduling(w http.ResponseWriter, r *http.Request) {
	err := h.schedulings.Delete(r.Context(), chi.URLParam(r, "schedulingID"))
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "SCHEDULING_NOT_FOUND", "No scheduling with that ID")
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULING_DELETE_FAILED", "Failed to delete scheduling")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
