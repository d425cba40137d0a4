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

// TournamentHandler handles tournament endpoints and tournament registrations
type TournamentHandler struct {
	calendar      *calendar.Service
	registrations *registration.Service
}

// NewTournamentHandler creates a new tournament handler
func NewTournamentHandler(calendar *calendar.Service, registrations *registration.Service) *TournamentHandler {
	return &TournamentHandler{
		calendar:      calendar,
		registrations: registrations,
	}
}

// List handles GET /api/tournaments
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.calendar.ListTournaments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TournamentsFromViews(views))
}

// Get handles GET /api/tournaments/{id}
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.calendar.GetTournament(r.Context(), model.TournamentID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TournamentFromView(view))
}

// Create handles POST /api/tournaments
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.TournamentRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.calendar.CreateTournament(r.Context(), calendar.TournamentInput{
		Name:        req.Name,
		Date:        date,
		Format:      req.Format,
		Description: req.Description,
		Status:      model.TournamentStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.TournamentFromView(view))
}

// UpdateStatus handles PATCH /api/tournaments/{id}/status
func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req request.TournamentStatusRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.calendar.UpdateTournamentStatus(r.Context(), model.TournamentID(id), model.TournamentStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TournamentFromView(view))
}

// Delete handles DELETE /api/tournaments/{id}
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.calendar.DeleteTournament(r.Context(), model.TournamentID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Tournament deleted")
}

// Register handles POST /api/tournaments/{id}/register/{playerId}
func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	entity, playerID, err := registrationTarget(r, model.EntityTournament)
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

// Unregister handles DELETE /api/tournaments/{id}/unregister/{playerId}
func (h *TournamentHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	entity, playerID, err := registrationTarget(r, model.EntityTournament)
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
