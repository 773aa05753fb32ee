// Package crimedata implements the CrimeRecordProvider contract against an
// open-data incident feed.
package crimedata

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stride/config"
	"stride/internal/domain/entity"
	"stride/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultTimeout = 10 * time.Second

// ClientParams holds dependencies for the crime-data client
type ClientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type client struct {
	baseURL    string
	appToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a CrimeRecordProvider backed by the configured feed.
func NewClient(params ClientParams) (service.CrimeRecordProvider, error) {
	cfg := params.Config.CrimeData
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("crime data base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		baseURL:    cfg.BaseURL,
		appToken:   cfg.AppToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     params.Logger,
	}, nil
}

type incidentRecord struct {
	ID         string      `json:"id"`
	Offense    string      `json:"offense"`
	Method     string      `json:"method"`
	OccurredAt string      `json:"occurred_at"`
	Latitude   json.Number `json:"latitude"` // feeds vary between quoted and raw numbers
	Longitude  json.Number `json:"longitude"`
}

// QueryIncidents returns incidents inside the bounding box within the range.
func (c *client) QueryIncidents(ctx context.Context, bound orb.Bound, from, to time.Time) ([]entity.CrimeIncident, error) {
	query := url.Values{}
	query.Set("min_lat", formatCoord(bound.Min.Lat()))
	query.Set("max_lat", formatCoord(bound.Max.Lat()))
	query.Set("min_lng", formatCoord(bound.Min.Lon()))
	query.Set("max_lng", formatCoord(bound.Max.Lon()))
	query.Set("start_date", from.UTC().Format(time.RFC3339))
	query.Set("end_date", to.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build incident request")
	}
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "incident request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("incident request returned status %d", resp.StatusCode)
	}

	var records []incidentRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "decode incident response")
	}

	incidents := make([]entity.CrimeIncident, 0, len(records))
	for _, record := range records {
		occurredAt, err := time.Parse(time.RFC3339, record.OccurredAt)
		if err != nil {
			c.logger.Debug("skipping incident with unparseable timestamp",
				slog.String("id", record.ID),
				slog.String("occurred_at", record.OccurredAt),
			)

			continue
		}

		lat, latErr := record.Latitude.Float64()
		lng, lngErr := record.Longitude.Float64()
		if latErr != nil || lngErr != nil {
			c.logger.Debug("skipping incident with unparseable coordinates",
				slog.String("id", record.ID),
			)

			continue
		}

		incidents = append(incidents, entity.CrimeIncident{
			ID:         record.ID,
			Offense:    record.Offense,
			Method:     record.Method,
			OccurredAt: occurredAt,
			Location:   entity.GeoPoint{Lat: lat, Lng: lng},
		})
	}

	return incidents, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
