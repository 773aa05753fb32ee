// Package maps implements the RouteProvider contract against a
// Google-Directions-style routing and geocoding API.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stride/config"
	"stride/internal/domain/entity"
	"stride/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultTimeout = 10 * time.Second

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// ClientParams holds dependencies for the maps client
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

// NewClient creates a RouteProvider backed by the configured maps API.
func NewClient(params ClientParams) (service.RouteProvider, error) {
	cfg := params.Config.Maps
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("maps provider base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     params.Logger,
	}, nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			StartLocation latLng `json:"start_location"`
			EndLocation   latLng `json:"end_location"`
			Steps         []struct {
				StartLocation latLng `json:"start_location"`
				EndLocation   latLng `json:"end_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
	ErrorMessage string `json:"error_message"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) toPoint() entity.GeoPoint {
	return entity.GeoPoint{Lat: l.Lat, Lng: l.Lng}
}

// Route plans a walking route through the given stops.
func (c *client) Route(ctx context.Context, origin, destination entity.GeoPoint, waypoints []entity.GeoPoint) (*service.RoutePlan, error) {
	query := url.Values{}
	query.Set("origin", origin.String())
	query.Set("destination", destination.String())
	query.Set("mode", "walking")
	if len(waypoints) > 0 {
		encoded := make([]string, 0, len(waypoints))
		for _, waypoint := range waypoints {
			encoded = append(encoded, waypoint.String())
		}
		query.Set("waypoints", strings.Join(encoded, "|"))
	}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	var decoded directionsResponse
	if err := c.get(ctx, "/directions/json", query, &decoded); err != nil {
		return nil, err
	}

	switch decoded.Status {
	case statusOK:
	case statusZeroResults:
		return nil, service.ErrZeroResults
	default:
		return nil, errors.Errorf("directions request failed: %s (%s)", decoded.Status, decoded.ErrorMessage)
	}
	if len(decoded.Routes) == 0 {
		return nil, service.ErrZeroResults
	}

	route := decoded.Routes[0]
	plan := &service.RoutePlan{Legs: make([]service.RouteLeg, 0, len(route.Legs))}
	for _, leg := range route.Legs {
		path := make(orb.LineString, 0, len(leg.Steps)+1)
		path = append(path, leg.StartLocation.toPoint().Point())
		for _, step := range leg.Steps {
			path = append(path, step.EndLocation.toPoint().Point())
		}

		plan.Legs = append(plan.Legs, service.RouteLeg{
			DistanceMeters: leg.Distance.Value,
			Start:          leg.StartLocation.toPoint(),
			End:            leg.EndLocation.toPoint(),
			Path:           path,
		})
	}

	return plan, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// ReverseGeocode resolves a coordinate to a place description.
func (c *client) ReverseGeocode(ctx context.Context, point entity.GeoPoint) (*service.PlaceInfo, error) {
	query := url.Values{}
	query.Set("latlng", point.String())
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	var decoded geocodeResponse
	if err := c.get(ctx, "/geocode/json", query, &decoded); err != nil {
		return nil, err
	}
	if decoded.Status != statusOK || len(decoded.Results) == 0 {
		return nil, errors.Errorf("reverse geocode failed: %s (%s)", decoded.Status, decoded.ErrorMessage)
	}

	result := decoded.Results[0]

	return &service.PlaceInfo{
		FormattedAddress: result.FormattedAddress,
		PlaceTypes:       result.Types,
	}, nil
}

// Geocode resolves a free-text address to a coordinate.
func (c *client) Geocode(ctx context.Context, address string) (entity.GeoPoint, error) {
	query := url.Values{}
	query.Set("address", address)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	var decoded geocodeResponse
	if err := c.get(ctx, "/geocode/json", query, &decoded); err != nil {
		return entity.GeoPoint{}, err
	}
	if decoded.Status != statusOK || len(decoded.Results) == 0 {
		return entity.GeoPoint{}, errors.Errorf("geocode failed: %s (%s)", decoded.Status, decoded.ErrorMessage)
	}

	return decoded.Results[0].Geometry.Location.toPoint(), nil
}

func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.Wrap(err, "build maps request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "maps request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("maps request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode maps response")
	}

	return nil
}
