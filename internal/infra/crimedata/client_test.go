package crimedata

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

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) service.CrimeRecordProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewClient(ClientParams{
		Config: &config.Config{CrimeData: &config.CrimeDataConfig{
			BaseURL:  server.URL,
			AppToken: "test-token",
			Timeout:  2 * time.Second,
		}},
		Logger: testLogger(),
	})
	require.NoError(t, err)

	return provider
}

var testBound = orb.Bound{
	Min: orb.Point{-77.05, 38.90},
	Max: orb.Point{-77.02, 38.93},
}

func queryWindow() (time.Time, time.Time) {
	to := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	return to.AddDate(0, 0, -7), to
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientParams{Config: &config.Config{}, Logger: testLogger()})
	assert.Error(t, err)
}

func TestQueryIncidents_ParsesRecords(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-App-Token"))
		assert.Equal(t, "38.900000", r.URL.Query().Get("min_lat"))
		assert.Equal(t, "-77.020000", r.URL.Query().Get("max_lng"))
		assert.NotEmpty(t, r.URL.Query().Get("start_date"))

		// Open-data feeds vary between quoted and raw number coordinates.
		_, _ = w.Write([]byte(`[
			{"id": "a1", "offense": "robbery", "method": "gun",
			 "occurred_at": "2025-06-14T22:30:00Z",
			 "latitude": "38.9101", "longitude": "-77.0402"},
			{"id": "a2", "offense": "theft from auto",
			 "occurred_at": "2025-06-13T03:00:00Z",
			 "latitude": 38.9155, "longitude": -77.0311}
		]`))
	})

	from, to := queryWindow()
	incidents, err := provider.QueryIncidents(context.Background(), testBound, from, to)
	require.NoError(t, err)
	require.Len(t, incidents, 2)

	assert.Equal(t, "a1", incidents[0].ID)
	assert.Equal(t, "robbery", incidents[0].Offense)
	assert.Equal(t, "gun", incidents[0].Method)
	assert.InDelta(t, 38.9101, incidents[0].Location.Lat, 1e-9)
	assert.InDelta(t, -77.0311, incidents[1].Location.Lng, 1e-9)
}

func TestQueryIncidents_SkipsMalformedRecords(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "bad-date", "offense": "assault",
			 "occurred_at": "yesterday-ish",
			 "latitude": "38.91", "longitude": "-77.04"},
			{"id": "ok", "offense": "burglary",
			 "occurred_at": "2025-06-14T10:00:00Z",
			 "latitude": "38.91", "longitude": "-77.04"}
		]`))
	})

	from, to := queryWindow()
	incidents, err := provider.QueryIncidents(context.Background(), testBound, from, to)
	require.NoError(t, err, "malformed rows are skipped, not fatal")
	require.Len(t, incidents, 1)
	assert.Equal(t, "ok", incidents[0].ID)
}

func TestQueryIncidents_UpstreamFailure(t *testing.T) {
	provider := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	from, to := queryWindow()
	_, err := provider.QueryIncidents(context.Background(), testBound, from, to)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
