package controllers

import (
	"log/slog"
	"net/http"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
)

// RSVPResponse is the payload of the RSVP endpoints. Changed is false when the
// request left the participant set as it was.
type RSVPResponse struct {
	EventID string `json:"event_id"`
	Outcome string `json:"outcome"`
	Changed bool   `json:"changed"`
	Joined  bool   `json:"joined"`
	Message string `json:"message,omitempty"`
}

func newRSVPResponse(eventID string, o domain.RSVPOutcome) RSVPResponse {
	return RSVPResponse{
		EventID: eventID,
		Outcome: o.String(),
		Changed: o.Changed(),
		Joined:  o.Joined(),
		Message: o.Message(),
	}
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// Status godoc
// @Summary RSVP status
// @Description Whether the caller has joined the event.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.joined reports the state"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [get]
func (c *RSVPController) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	joined, err := c.Service.Status(r.Context(), middleware.CallerFromContext(r.Context()), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, RSVPResponse{EventID: id, Joined: joined})
}

// Join godoc
// @Summary RSVP to an event
// @Description 201 when the caller joined; 200 with changed=false when already joined.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data.outcome: joined"
// @Success 200 {object} helpers.APIResponse "data.outcome: already_joined"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	outcome, err := c.Service.Join(r.Context(), middleware.CallerFromContext(r.Context()), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	status := http.StatusOK
	if outcome.Changed() {
		status = http.StatusCreated
	}
	h.WriteJSONSuccess(w, status, newRSVPResponse(id, outcome))
}

// Cancel godoc
// @Summary Cancel an RSVP
// @Description Always 200; changed=false when the caller had not joined.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.outcome: cancelled or not_joined"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "eventID")
	if !ok {
		return
	}
	outcome, err := c.Service.Cancel(r.Context(), middleware.CallerFromContext(r.Context()), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, newRSVPResponse(id, outcome))
}

// Dashboard godoc
// @Summary My events
// @Description The events the caller has joined.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /dashboard [get]
func (c *RSVPController) Dashboard(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListMyEvents(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}
