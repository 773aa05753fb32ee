package service

import (
	"context"

	"stride/internal/domain/entity"
	"stride/internal/errors"

	"github.com/paulmach/orb"
)

// ErrZeroResults is returned by RouteProvider.Route when the provider found
// no path between the requested points. It is a retryable outcome, distinct
// from a service failure, and callers branch on it with errors.Is.
var ErrZeroResults = errors.New("routing provider returned zero results")

// RouteLeg is one segment of a planned route between consecutive stops.
type RouteLeg struct {
	DistanceMeters float64
	Start          entity.GeoPoint
	End            entity.GeoPoint
	Path           orb.LineString
}

// RoutePlan is the provider's answer to a routing query.
type RoutePlan struct {
	Legs []RouteLeg
}

// TotalDistanceMeters sums the walked distance over all legs.
func (p *RoutePlan) TotalDistanceMeters() float64 {
	var total float64
	for _, leg := range p.Legs {
		total += leg.DistanceMeters
	}

	return total
}

// Geometry concatenates the leg paths into a single line string.
func (p *RoutePlan) Geometry() orb.LineString {
	var line orb.LineString
	for _, leg := range p.Legs {
		if len(leg.Path) > 0 {
			line = append(line, leg.Path...)

			continue
		}
		line = append(line, leg.Start.Point(), leg.End.Point())
	}

	return line
}

// TerminalPoint returns the end of the last leg.
func (p *RoutePlan) TerminalPoint() entity.GeoPoint {
	if len(p.Legs) == 0 {
		return entity.GeoPoint{}
	}

	return p.Legs[len(p.Legs)-1].End
}

// PlaceInfo is the result of a reverse geocoding lookup.
type PlaceInfo struct {
	FormattedAddress string
	PlaceTypes       []string
}

// RouteProvider abstracts the external routing/geocoding capability.
// All calls are network-bound and must honor ctx cancellation.
type RouteProvider interface {
	// Route plans a walking route through the given stops.
	// Returns ErrZeroResults when no path exists; any other error is a
	// service failure.
	Route(ctx context.Context, origin, destination entity.GeoPoint, waypoints []entity.GeoPoint) (*RoutePlan, error)

	// ReverseGeocode resolves a coordinate to a place description.
	ReverseGeocode(ctx context.Context, point entity.GeoPoint) (*PlaceInfo, error)

	// Geocode resolves a free-text address to a coordinate.
	Geocode(ctx context.Context, address string) (entity.GeoPoint, error)
}
