package impl

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"stride/internal/domain/entity"

	"github.com/pkg/errors"
)

// angleVariations are tried per waypoint before giving up on it (radians
// relative to the waypoint's nominal bearing).
var angleVariations = []float64{0, 0.2, -0.2, 0.4, -0.4}

// waypointJitterRad is the maximum random perturbation applied to each
// waypoint's bearing so repeated requests do not produce identical shapes.
const waypointJitterRad = 0.1

// waypointSynthesizer arranges candidate waypoints around a start point so
// the resulting route approximates the target distance.
type waypointSynthesizer struct {
	prober *walkabilityProber
	rand   *rand.Rand // injected for reproducible jitter in tests
	logger *slog.Logger
}

func newWaypointSynthesizer(prober *walkabilityProber, rnd *rand.Rand, logger *slog.Logger) *waypointSynthesizer {
	return &waypointSynthesizer{prober: prober, rand: rnd, logger: logger}
}

// baseRadiusMeters derives the waypoint circle radius from the target
// distance, scaled up on each retry attempt.
func baseRadiusMeters(targetDistanceMiles float64, attempt int) float64 {
	radiusMiles := targetDistanceMiles * 0.8 / (2 * math.Pi)
	radiusMiles *= 1 + 0.1*float64(attempt)

	return radiusMiles * entity.MetersPerMile
}

// Synthesize places desiredCount waypoints at evenly spaced bearings around
// the start, validating each through the walkability prober. It returns fewer
// points than requested when some bearings have no walkable way in reach;
// callers treat a shorter list as a weaker candidate rather than a failure.
func (s *waypointSynthesizer) Synthesize(
	ctx context.Context,
	start entity.GeoPoint,
	targetDistanceMiles float64,
	desiredCount int,
	attempt int,
	baseAngle float64,
) ([]entity.GeoPoint, error) {
	if desiredCount < 1 {
		return nil, errors.New("desired waypoint count must be at least 1")
	}

	radius := baseRadiusMeters(targetDistanceMiles, attempt)
	step := 2 * math.Pi / float64(desiredCount)

	points := make([]entity.GeoPoint, 0, desiredCount)
	for i := 0; i < desiredCount; i++ {
		jitter := (s.rand.Float64()*2 - 1) * waypointJitterRad
		bearing := baseAngle + float64(i)*step + jitter

		point, err := s.placeWaypoint(ctx, start, radius, bearing)
		if err != nil {
			if errors.Is(err, ErrUnwalkable) {
				s.logger.Debug("skipping unwalkable waypoint",
					slog.Int("index", i),
					slog.Float64("bearing", bearing),
				)

				continue
			}

			return nil, err
		}

		points = append(points, point)
	}

	return points, nil
}

// placeWaypoint probes the nominal bearing and a few variations around it,
// returning the first validated point.
func (s *waypointSynthesizer) placeWaypoint(
	ctx context.Context,
	start entity.GeoPoint,
	radiusMeters, bearing float64,
) (entity.GeoPoint, error) {
	var lastErr error
	for _, variation := range angleVariations {
		candidate := start.Offset(radiusMeters, bearing+variation)

		point, err := s.prober.Probe(ctx, candidate)
		if err == nil {
			return point, nil
		}
		if !errors.Is(err, ErrUnwalkable) {
			return entity.GeoPoint{}, err
		}
		lastErr = err
	}

	return entity.GeoPoint{}, lastErr
}
