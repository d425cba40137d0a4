package handler

import (
	"net/http"

	"github.com/mcoot/clubhouse/internal/api/middleware"
	"github.com/mcoot/clubhouse/internal/api/request"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/news"
)

// NewsHandler handles news endpoints
type NewsHandler struct {
	news *news.Service
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(news *news.Service) *NewsHandler {
	return &NewsHandler{
		news: news,
	}
}

// List handles GET /api/news
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewsListFromModel(items))
}

// Create handles POST /api/news
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.NewsRequest
	if err := request.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.news.Create(r.Context(), middleware.MustGetIdentity(r.Context()), news.Input{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.NewsFromModel(item))
}

// Delete handles DELETE /api/news/{id}
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.news.Delete(r.Context(), model.NewsID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, "News item deleted")
}
