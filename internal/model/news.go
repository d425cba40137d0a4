package model

import "time"

// NewsID uniquely identifies a news item
type NewsID int64

// NewsItem is an announcement published by an admin
type NewsItem struct {
	ID        NewsID
	Title     string
	Content   string
	Image     *string
	AuthorID  *AccountID // nil once the author account is deleted
	CreatedAt time.Time

	// AuthorName is filled by listings; never persisted
	AuthorName *string
}
