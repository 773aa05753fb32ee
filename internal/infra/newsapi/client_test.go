package newsapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stride/config"
	"stride/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) service.NewsProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewClient(ClientParams{
		Config: &config.Config{News: &config.NewsConfig{
			BaseURL: server.URL,
			APIKey:  "test-key",
			Timeout: 2 * time.Second,
		}},
		Logger: testLogger(),
	})
	require.NoError(t, err)

	return provider
}

func queryWindow() (time.Time, time.Time) {
	to := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	return to.AddDate(0, 0, -14), to
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientParams{Config: &config.Config{}, Logger: testLogger()})
	assert.Error(t, err)
}

func TestQueryArticles_ParsesResponse(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "Columbia Heights, Washington, DC", r.URL.Query().Get("q"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("from"))

		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "Shooting investigation near park",
				 "description": "Police responded to reports of gunfire.",
				 "publishedAt": "2025-06-14T08:00:00Z",
				 "source": {"name": "Local Desk"}},
				{"title": "Undated story", "publishedAt": "last week",
				 "source": {"name": "Local Desk"}}
			]
		}`))
	})

	from, to := queryWindow()
	articles, err := provider.QueryArticles(context.Background(), "Columbia Heights, Washington, DC", from, to)
	require.NoError(t, err)
	require.Len(t, articles, 1, "articles with unparseable timestamps are skipped")

	assert.Equal(t, "Shooting investigation near park", articles[0].Title)
	assert.Equal(t, "Local Desk", articles[0].Source)
	assert.Equal(t, time.Date(2025, time.June, 14, 8, 0, 0, 0, time.UTC), articles[0].PublishedAt)
}

func TestQueryArticles_ErrorStatus(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "message": "apiKey invalid"}`))
	})

	from, to := queryWindow()
	_, err := provider.QueryArticles(context.Background(), "anywhere", from, to)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKey invalid")
}

func TestQueryArticles_UpstreamFailure(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	from, to := queryWindow()
	_, err := provider.QueryArticles(context.Background(), "anywhere", from, to)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
