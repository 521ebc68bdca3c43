package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventplanner/internal/delivery/http/helpers"
	"eventplanner/internal/delivery/http/middleware"
	"eventplanner/internal/domain"
)

// AddCollaboratorRequest is the request body for POST /events/{eventID}/collaborations.
// User is a user ID or a username.
type AddCollaboratorRequest struct {
	User string      `json:"user"`
	Role domain.Role `json:"role"`
}

// Validate implements Validator.
func (a AddCollaboratorRequest) Validate() []string {
	var errs []string
	if a.User == "" {
		errs = append(errs, "user is required")
	}
	if !a.Role.Grantable() {
		errs = append(errs, "role must be editor or viewer")
	}
	return errs
}

// UpdateCollaboratorRequest is the request body for PATCH /collaborations/{collabID}.
type UpdateCollaboratorRequest struct {
	Role domain.Role `json:"role"`
}

// Validate implements Validator.
func (u UpdateCollaboratorRequest) Validate() []string {
	if !u.Role.Grantable() {
		return []string{"role must be editor or viewer"}
	}
	return nil
}

type CollaborationController struct {
	Logger  *slog.Logger
	Service domain.MembershipService
}

func NewCollaborationController(logger *slog.Logger, svc domain.MembershipService) *CollaborationController {
	return &CollaborationController{
		Logger:  logger,
		Service: svc,
	}
}

// AddCollaborator godoc
// @Summary Add a collaborator
// @Description Grant a role on the event to another user. Owner only. The target is a user ID or a username.
// @Tags collaborations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param collaboration body AddCollaboratorRequest true "Target user and role"
// @Success 201 {object} helpers.APIResponse "data contains the collaboration with user details"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/collaborations [post]
func (c *CollaborationController) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req AddCollaboratorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	collab, err := c.Service.AddCollaborator(r.Context(), eventID, userID, req.User, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid collaboration data")
		case errors.Is(err, domain.ErrUserNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "owner role required")
		case errors.Is(err, domain.ErrAlreadyCollaborator):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "user is already a collaborator")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, collab)
}

// ListCollaborators godoc
// @Summary List collaborators
// @Description Returns the event's collaborators with user details. Requires editor or owner role.
// @Tags collaborations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the collaborations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/collaborations [get]
func (c *CollaborationController) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	collabs, err := c.Service.ListCollaborators(r.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "editor role required")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collabs)
}

// UpdateCollaboratorRole godoc
// @Summary Change a collaborator's role
// @Description Update the role of an existing collaboration. Owner only.
// @Tags collaborations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collabID path string true "Collaboration ID (UUID)"
// @Param collaboration body UpdateCollaboratorRequest true "New role"
// @Success 200 {object} helpers.APIResponse "data contains the updated collaboration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /collaborations/{collabID} [patch]
func (c *CollaborationController) UpdateCollaboratorRole(w http.ResponseWriter, r *http.Request) {
	collabID := r.PathValue("collabID")
	if collabID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing collabID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateCollaboratorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	collab, err := c.Service.UpdateCollaboratorRole(r.Context(), collabID, userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid role change")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "collaboration not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "owner role required")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, collab)
}

// RemoveCollaborator godoc
// @Summary Remove a collaborator
// @Description Remove a collaboration. Allowed for the event owner, or for a member removing themselves.
// @Tags collaborations
// @Produce json
// @Security BearerAuth
// @Param collabID path string true "Collaboration ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the removed collaboration ID"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /collaborations/{collabID} [delete]
func (c *CollaborationController) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	collabID := r.PathValue("collabID")
	if collabID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing collabID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RemoveCollaborator(r.Context(), collabID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "the owner's collaboration cannot be removed")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "collaboration not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not allowed to remove this collaborator")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": collabID})
}
