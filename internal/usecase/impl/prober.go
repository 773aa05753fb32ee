package impl

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"stride/internal/domain/entity"
	"stride/internal/domain/service"
)

// ErrUnwalkable is returned when a probed point cannot be confirmed to lie
// on or near a walkable way after all radii and angles are exhausted.
var ErrUnwalkable = errors.New("point could not be confirmed walkable")

// probeRadiiMeters are tried in order during the radius search fallback.
var probeRadiiMeters = []float64{100, 200, 300, 400, 500}

const probeAngleCount = 8

// walkableTypes are the place classifications that confirm a reverse-geocoded
// point as walkable without a trial route.
var walkableTypes = map[string]bool{
	"route":             true,
	"street_address":    true,
	"intersection":      true,
	"park":              true,
	"point_of_interest": true,
}

// walkabilityProber confirms that a candidate point lies on a walkable way,
// snapping it to the street network when needed.
type walkabilityProber struct {
	provider service.RouteProvider
	logger   *slog.Logger
}

func newWalkabilityProber(provider service.RouteProvider, logger *slog.Logger) *walkabilityProber {
	return &walkabilityProber{provider: provider, logger: logger}
}

// Probe validates the point, returning a possibly street-snapped replacement.
// It first tries a reverse-geocode lookup; when that does not confirm a
// walkable classification, it falls back to trial routes at increasing radii.
// Returns ErrUnwalkable only after every alternative is exhausted; callers
// must not silently guess a substitute point.
func (p *walkabilityProber) Probe(ctx context.Context, point entity.GeoPoint) (entity.GeoPoint, error) {
	place, err := p.provider.ReverseGeocode(ctx, point)
	if err == nil && hasWalkableType(place.PlaceTypes) {
		return point, nil
	}
	if err != nil && ctx.Err() != nil {
		return entity.GeoPoint{}, ctx.Err()
	}

	// Radius search: trial routes from the original point to offsets around
	// it. The first offset a route reaches replaces the candidate with the
	// route's actual terminal point.
	for _, radius := range probeRadiiMeters {
		for i := 0; i < probeAngleCount; i++ {
			bearing := float64(i) * (2 * math.Pi / probeAngleCount)
			target := point.Offset(radius, bearing)

			plan, err := p.provider.Route(ctx, point, target, nil)
			if err != nil {
				if errors.Is(err, service.ErrZeroResults) {
					continue
				}

				return entity.GeoPoint{}, err
			}

			snapped := plan.TerminalPoint()
			p.logger.Debug("probe snapped point to street network",
				slog.String("original", point.String()),
				slog.String("snapped", snapped.String()),
				slog.Float64("radius_m", radius),
			)

			return snapped, nil
		}
	}

	return entity.GeoPoint{}, ErrUnwalkable
}

func hasWalkableType(placeTypes []string) bool {
	for _, placeType := range placeTypes {
		if walkableTypes[strings.ToLower(placeType)] {
			return true
		}
	}

	return false
}
