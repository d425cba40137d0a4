package handler

import (
	"net/http"

	"github.com/mcoot/clubhouse/internal/api/middleware"
	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/calendar"
	"github.com/mcoot/clubhouse/internal/services/registration"
)

// EventHandler handles event endpoints and event registrations
type EventHandler struct {
	calendar      *calendar.Service
	registrations *registration.Service
}

// NewEventHandler creates a new event handler
func NewEventHandler(calendar *calendar.Service, registrations *registration.Service) *EventHandler {
	return &EventHandler{
		calendar:      calendar,
		registrations: registrations,
	}
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.calendar.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventsFromViews(views))
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.calendar.GetEvent(r.Context(), model.EventID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromView(view))
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.EventRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.calendar.CreateEvent(r.Context(), calendar.EventInput{
		Name:            req.Name,
		Date:            date,
		Description:     req.Description,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.EventFromView(view))
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.calendar.DeleteEvent(r.Context(), model.EventID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Event deleted")
}

// Register handles POST /api/events/{id}/register/{playerId}
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	entity, playerID, err := registrationTarget(r, model.EntityEvent)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.registrations.Register(r.Context(), middleware.MustGetIdentity(r.Context()), entity, playerID); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Registration successful")
}

// Unregister handles DELETE /api/events/{id}/unregister/{playerId}
func (h *EventHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	entity, playerID, err := registrationTarget(r, model.EntityEvent)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.registrations.Unregister(r.Context(), middleware.MustGetIdentity(r.Context()), entity, playerID); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Unregistration successful")
}

// registrationTarget reads the entity and player from a registration route
func registrationTarget(r *http.Request, kind model.EntityKind) (model.EntityRef, model.PlayerID, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return model.EntityRef{}, 0, err
	}
	playerID, err := pathID(r, "playerId")
	if err != nil {
		return model.EntityRef{}, 0, err
	}
	return model.EntityRef{Kind: kind, ID: id}, model.PlayerID(playerID), nil
}
