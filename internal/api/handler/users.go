package handler

import (
	"net/http"

	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/auth"
)

// UserHandler handles account management. Every route is admin only.
type UserHandler struct {
	authService *auth.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.authService.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UsersFromModel(accounts))
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.authService.GetAccount(r.Context(), model.AccountID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(account))
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.authService.CreateAccount(r.Context(), auth.CreateAccountParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     model.Role(req.Role),
		Status:   model.AccountStatus(req.Status),
		PlayerID: playerIDFrom(req.PlayerID),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.UserFromModel(account))
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req request.UpdateUserRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	params := auth.UpdateAccountParams{
		Email:    req.Email,
		Name:     req.Name,
		Role:     model.Role(req.Role),
		PlayerID: playerIDFrom(req.PlayerID),
		Password: req.Password,
	}
	if req.Status != nil {
		status := model.AccountStatus(*req.Status)
		params.Status = &status
	}

	account, err := h.authService.UpdateAccount(r.Context(), model.AccountID(id), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(account))
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), model.AccountID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "User deleted")
}

// playerIDFrom treats a missing or zero player_id as unlinked
func playerIDFrom(id *int64) *model.PlayerID {
	if id == nil || *id <= 0 {
		return nil
	}
	pid := model.PlayerID(*id)
	return &pid
}
