// Package newsapi implements the NewsProvider contract against a
// NewsAPI-style article search endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"stride/config"
	"stride/internal/domain/entity"
	"stride/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultTimeout = 10 * time.Second

// ClientParams holds dependencies for the news client
type ClientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a NewsProvider backed by the configured search API.
func NewClient(params ClientParams) (service.NewsProvider, error) {
	cfg := params.Config.News
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("news provider base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     params.Logger,
	}, nil
}

type articlesResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
	Message string `json:"message"`
}

// QueryArticles returns articles matching the location label in the range.
func (c *client) QueryArticles(ctx context.Context, locationLabel string, from, to time.Time) ([]entity.NewsArticle, error) {
	query := url.Values{}
	query.Set("q", locationLabel)
	query.Set("from", from.UTC().Format("2006-01-02"))
	query.Set("to", to.UTC().Format("2006-01-02"))
	query.Set("sortBy", "publishedAt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/everything?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build news request")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "news request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("news request returned status %d", resp.StatusCode)
	}

	var decoded articlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decode news response")
	}
	if decoded.Status != "ok" {
		return nil, errors.Errorf("news request failed: %s", decoded.Message)
	}

	articles := make([]entity.NewsArticle, 0, len(decoded.Articles))
	for _, article := range decoded.Articles {
		publishedAt, err := time.Parse(time.RFC3339, article.PublishedAt)
		if err != nil {
			c.logger.Debug("skipping article with unparseable timestamp",
				slog.String("title", article.Title),
			)

			continue
		}

		articles = append(articles, entity.NewsArticle{
			Title:       article.Title,
			Description: article.Description,
			PublishedAt: publishedAt,
			Source:      article.Source.Name,
		})
	}

	return articles, nil
}
