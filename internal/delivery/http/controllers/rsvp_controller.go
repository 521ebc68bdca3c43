package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"eventplanner/internal/delivery/http/helpers"
	"eventplanner/internal/delivery/http/middleware"
	"eventplanner/internal/domain"
)

// SubmitRSVPRequest is the request body for POST /events/{eventID}/rsvps.
// Guests below 1 is treated as 1.
type SubmitRSVPRequest struct {
	Status  domain.RSVPStatus `json:"status"`
	Comment string            `json:"comment"`
	Guests  int               `json:"guests"`
}

// Validate implements Validator.
func (s SubmitRSVPRequest) Validate() []string {
	var errs []string
	if !s.Status.Valid() {
		errs = append(errs, "status must be one of yes, no, maybe")
	}
	if utf8.RuneCountInString(s.Comment) > domain.MaxRSVPCommentLen {
		errs = append(errs, "comment must be at most 500 characters")
	}
	return errs
}

// RSVPListResponse is the response body for GET /events/{eventID}/rsvps.
type RSVPListResponse struct {
	RSVPs  []*domain.RSVPWithUser `json:"rsvps"`
	Counts domain.RSVPCounts      `json:"counts"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewRSVPController(logger *slog.Logger, svc domain.AttendanceService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitRSVP godoc
// @Summary Submit or replace an RSVP
// @Description Record the caller's attendance response. The caller must be invited, the owner, or a collaborator. Resubmitting replaces the previous response.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param rsvp body SubmitRSVPRequest true "Attendance response"
// @Success 200 {object} helpers.APIResponse "data contains the stored RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps [post]
func (c *RSVPController) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
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
	var req SubmitRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.SubmitRSVP(r.Context(), eventID, userID, req.Status, req.Comment, req.Guests)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rsvp data")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrNotInvited):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not invited to this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// ListRSVPs godoc
// @Summary List RSVPs
// @Description Returns the event's RSVPs with user details and aggregate counts. Yes and maybe counts sum guests; no counts responses.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains rsvps and counts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps [get]
func (c *RSVPController) ListRSVPs(w http.ResponseWriter, r *http.Request) {
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
	rsvps, counts, err := c.Service.ListRSVPs(r.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "viewer role required")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RSVPListResponse{RSVPs: rsvps, Counts: counts})
}

// GetMyRSVP godoc
// @Summary Get the caller's RSVP
// @Description Returns the authenticated user's RSVP for the event, if any.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the RSVP"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps/me [get]
func (c *RSVPController) GetMyRSVP(w http.ResponseWriter, r *http.Request) {
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
	rsvp, err := c.Service.GetMyRSVP(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "rsvp not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// DeleteRSVP godoc
// @Summary Withdraw an RSVP
// @Description Delete an RSVP. Only the responder may withdraw their own response.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param rsvpID path string true "RSVP ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the deleted RSVP ID"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/{rsvpID} [delete]
func (c *RSVPController) DeleteRSVP(w http.ResponseWriter, r *http.Request) {
	rsvpID := r.PathValue("rsvpID")
	if rsvpID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing rsvpID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteRSVP(r.Context(), rsvpID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "rsvp not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the responder can withdraw")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": rsvpID})
}
