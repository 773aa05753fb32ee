package service

import (
	"context"
	"time"

	"stride/internal/domain/entity"
)

// NewsProvider abstracts the external news-search capability.
type NewsProvider interface {
	// QueryArticles returns articles matching the location label published
	// in [from, to].
	QueryArticles(ctx context.Context, locationLabel string, from, to time.Time) ([]entity.NewsArticle, error)
}
