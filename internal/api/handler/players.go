package handler

import (
	"net/http"

	"github.com/mcoot/clubhouse/internal/api/middleware"
	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/roster"
)

// PlayerHandler handles roster endpoints
type PlayerHandler struct {
	roster *roster.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(roster *roster.Service) *PlayerHandler {
	return &PlayerHandler{
		roster: roster,
	}
}

// List handles GET /api/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.roster.List(r.Context(), middleware.MustGetIdentity(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Get handles GET /api/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	player, err := h.roster.Get(r.Context(), middleware.MustGetIdentity(r.Context()), model.PlayerID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Create handles POST /api/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.PlayerRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	player, err := h.roster.Create(r.Context(), profileFrom(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Update handles PUT /api/players/{id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req request.UpdatePlayerRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	player, err := h.roster.Update(r.Context(), middleware.MustGetIdentity(r.Context()), model.PlayerID(id), roster.Update{
		Profile:       profileFrom(req.PlayerRequest),
		MatchesPlayed: req.MatchesPlayed,
		Wins:          req.Wins,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Delete handles DELETE /api/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.roster.Delete(r.Context(), model.PlayerID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "Player deleted")
}

func profileFrom(req request.PlayerRequest) roster.Profile {
	return roster.Profile{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		LevelOfficial:   req.LevelOfficial,
		LevelApero:      req.LevelApero,
		RatingTechnical: req.RatingTechnical,
		Avatar:          req.Avatar,
	}
}
