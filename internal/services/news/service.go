// Package news publishes club announcements.
package news

import (
	"context"
	"strings"

	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/access"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Service handles news CRUD
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new news Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Input describes a news item to publish
type Input struct {
	Title   string
	Content string
	Image   *string
}

// List returns every news item, newest first, with author names
func (s *Service) List(ctx context.Context) ([]*model.NewsItem, error) {
	return s.storage.ListNews(ctx)
}

// Create publishes a news item attributed to author
func (s *Service) Create(ctx context.Context, author *model.Identity, input Input) (*model.NewsItem, error) {
	if author == nil {
		return nil, access.ErrUnauthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, model.NewValidationError("content is required")
	}
	var image *string
	if input.Image != nil {
		if trimmed := strings.TrimSpace(*input.Image); trimmed != "" {
			image = &trimmed
		}
	}

	account, err := s.storage.GetAccount(ctx, author.AccountID)
	if err != nil {
		return nil, err
	}

	authorID := account.ID
	authorName := account.Name
	item := &model.NewsItem{
		Title:     title,
		Content:   content,
		Image:     image,
		AuthorID:  &authorID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.CreateNews(ctx, item); err != nil {
		return nil, err
	}
	item.AuthorName = &authorName
	return item, nil
}

// Delete removes a news item. Unknown IDs are ignored.
func (s *Service) Delete(ctx context.Context, id model.NewsID) error {
	return s.storage.DeleteNews(ctx, id)
}
