package impl

import (
	"context"
	"log/slog"
	"math"

	"stride/internal/domain/entity"
	"stride/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// slotState tracks a candidate slot through its search.
type slotState int

const (
	slotSearching slotState = iota
	slotFound
	slotExhausted
)

func (s slotState) String() string {
	switch s {
	case slotFound:
		return "found"
	case slotExhausted:
		return "exhausted"
	}

	return "searching"
}

// slotResult is the terminal outcome of one candidate slot's search.
// Exhaustion is a per-slot failure, not necessarily a batch failure.
type slotResult struct {
	state    slotState
	route    *entity.CandidateRoute
	attempts int
	lastErr  error
}

// anglePerturbationRad nudges the waypoint arrangement between retry rounds
// so a blocked direction does not dead-end the whole search.
const anglePerturbationRad = math.Pi / 6

// routeAssembler turns a start point and target distance into a candidate
// route by iterating waypoint counts and angles until the walked distance
// lands within tolerance or the attempt budget runs out.
type routeAssembler struct {
	provider    service.RouteProvider
	synthesizer *waypointSynthesizer
	tolerance   float64
	maxAttempts int
	logger      *slog.Logger
}

func newRouteAssembler(
	provider service.RouteProvider,
	synthesizer *waypointSynthesizer,
	tolerance float64,
	maxAttempts int,
	logger *slog.Logger,
) *routeAssembler {
	return &routeAssembler{
		provider:    provider,
		synthesizer: synthesizer,
		tolerance:   tolerance,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Assemble searches for a candidate route. Attempts within one slot are
// strictly sequential: each attempt's radius and angle depend on the previous
// outcome. A zero-result answer from the provider is a retry signal, any
// other provider failure ends the search with the error recorded.
func (a *routeAssembler) Assemble(
	ctx context.Context,
	start entity.GeoPoint,
	targetDistanceMiles float64,
	topology entity.Topology,
	baseAngle float64,
) slotResult {
	result := slotResult{state: slotSearching}

	for round := 0; result.attempts < a.maxAttempts; round++ {
		angle := baseAngle + float64(round)*anglePerturbationRad

		for count := topology.InitialWaypointCount(); count <= topology.MaxWaypointCount(); count++ {
			if result.attempts >= a.maxAttempts {
				break
			}
			if err := ctx.Err(); err != nil {
				result.state = slotExhausted
				result.lastErr = err

				return result
			}
			result.attempts++

			route, err := a.attempt(ctx, start, targetDistanceMiles, topology, count, round, angle)
			if err != nil {
				if errors.Is(err, service.ErrZeroResults) || errors.Is(err, ErrUnwalkable) {
					result.lastErr = err

					continue
				}

				result.state = slotExhausted
				result.lastErr = err

				return result
			}
			if route == nil {
				continue
			}

			result.state = slotFound
			result.route = route

			return result
		}
	}

	result.state = slotExhausted

	return result
}

// attempt runs one synthesize-and-route cycle. A nil route with nil error
// means the distance missed tolerance and the search should continue.
func (a *routeAssembler) attempt(
	ctx context.Context,
	start entity.GeoPoint,
	targetDistanceMiles float64,
	topology entity.Topology,
	waypointCount, round int,
	angle float64,
) (*entity.CandidateRoute, error) {
	waypoints, err := a.synthesizer.Synthesize(ctx, start, targetDistanceMiles, waypointCount, round, angle)
	if err != nil {
		return nil, err
	}
	if len(waypoints) == 0 {
		return nil, ErrUnwalkable
	}

	destination := start
	intermediate := waypoints
	if !topology.ClosesOnStart() {
		destination = waypoints[len(waypoints)-1]
		intermediate = waypoints[:len(waypoints)-1]
	}

	plan, err := a.provider.Route(ctx, start, destination, intermediate)
	if err != nil {
		return nil, err
	}

	distanceMiles := plan.TotalDistanceMeters() / entity.MetersPerMile
	geometry := plan.Geometry()
	points := routePoints(start, waypoints, topology)

	// An out-and-back doubles back along the same path, so the walked
	// distance is twice the one-way plan.
	if topology == entity.TopologyOutAndBack {
		distanceMiles *= 2
		geometry = append(geometry, reversedLine(geometry)...)
	}

	if distanceMiles <= 0 {
		return nil, service.ErrZeroResults
	}

	offTarget := math.Abs(distanceMiles-targetDistanceMiles) / targetDistanceMiles
	a.logger.Debug("route attempt",
		slog.Int("waypoints", waypointCount),
		slog.Int("round", round),
		slog.Float64("distance_miles", distanceMiles),
		slog.Float64("off_target", offTarget),
	)

	if offTarget > a.tolerance {
		return nil, nil
	}

	return &entity.CandidateRoute{
		Points:        points,
		DistanceMiles: distanceMiles,
		Geometry:      geometry,
	}, nil
}

func routePoints(start entity.GeoPoint, waypoints []entity.GeoPoint, topology entity.Topology) []entity.GeoPoint {
	points := make([]entity.GeoPoint, 0, len(waypoints)+2)
	points = append(points, start)
	points = append(points, waypoints...)
	if topology.ClosesOnStart() {
		points = append(points, start)
	}

	return points
}

func reversedLine(line orb.LineString) orb.LineString {
	reversed := make(orb.LineString, len(line))
	for i, pt := range line {
		reversed[len(line)-1-i] = pt
	}

	return reversed
}
