package entity

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const earthRadiusMeters = 6371000.0

// MetersPerMile converts between the routing provider's meter distances
// and the request's mile distances.
const MetersPerMile = 1609.344

// GeoPoint is an immutable WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point converts the coordinate to an orb.Point (lng, lat order).
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// FromPoint converts an orb.Point back to a GeoPoint.
func FromPoint(pt orb.Point) GeoPoint {
	return GeoPoint{Lat: pt.Lat(), Lng: pt.Lon()}
}

// DistanceMeters returns the great-circle distance to another point in meters.
func (p GeoPoint) DistanceMeters(other GeoPoint) float64 {
	return geo.Distance(p.Point(), other.Point())
}

// Offset returns the point reached by travelling distanceMeters from p along
// the given bearing (radians, clockwise from north).
func (p GeoPoint) Offset(distanceMeters, bearing float64) GeoPoint {
	angular := distanceMeters / earthRadiusMeters
	lat1 := p.Lat * math.Pi / 180
	lng1 := p.Lng * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)

	return GeoPoint{
		Lat: lat2 * 180 / math.Pi,
		Lng: math.Mod(lng2*180/math.Pi+540, 360) - 180,
	}
}

// Valid reports whether the coordinate lies within Earth bounds and is finite.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) ||
		math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}

	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// String formats the coordinate as "lat,lng" with ~1m precision.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}
