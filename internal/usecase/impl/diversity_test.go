package impl

import (
	"testing"

	"stride/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func candidateFromPoints(points ...entity.GeoPoint) *entity.CandidateRoute {
	return &entity.CandidateRoute{Points: points, DistanceMiles: 3.0}
}

func TestRouteSimilarity_IdenticalRoutes(t *testing.T) {
	route := candidateFromPoints(
		entity.GeoPoint{Lat: 38.9072, Lng: -77.0369},
		entity.GeoPoint{Lat: 38.9120, Lng: -77.0369},
		entity.GeoPoint{Lat: 38.9072, Lng: -77.0300},
	)

	// Identical 3-point routes: the 3 exact matches out of 9 comparisons
	// contribute 1.0 each.
	similarity := routeSimilarity(route, route)
	assert.InDelta(t, 1.0/3.0, similarity, 0.05)
}

func TestRouteSimilarity_DistantRoutes(t *testing.T) {
	a := candidateFromPoints(
		entity.GeoPoint{Lat: 38.9072, Lng: -77.0369},
		entity.GeoPoint{Lat: 38.9120, Lng: -77.0369},
	)
	b := candidateFromPoints(
		entity.GeoPoint{Lat: 38.9500, Lng: -77.1000},
		entity.GeoPoint{Lat: 38.9550, Lng: -77.1000},
	)

	assert.Zero(t, routeSimilarity(a, b))
}

func TestIsTooSimilar(t *testing.T) {
	route := candidateFromPoints(
		entity.GeoPoint{Lat: 38.9072, Lng: -77.0369},
		entity.GeoPoint{Lat: 38.9120, Lng: -77.0369},
		entity.GeoPoint{Lat: 38.9072, Lng: -77.0300},
	)
	far := candidateFromPoints(
		entity.GeoPoint{Lat: 38.9500, Lng: -77.1000},
		entity.GeoPoint{Lat: 38.9550, Lng: -77.1000},
	)

	assert.False(t, isTooSimilar(route, nil, 0.3), "empty accepted set never rejects")
	assert.False(t, isTooSimilar(route, []*entity.CandidateRoute{far}, 0.3))
	assert.True(t, isTooSimilar(route, []*entity.CandidateRoute{far, route}, 0.3),
		"a near-duplicate of any accepted route rejects the candidate")
}

func TestSamplePoints_CapsAtLimit(t *testing.T) {
	points := make([]entity.GeoPoint, 50)
	for i := range points {
		points[i] = entity.GeoPoint{Lat: 38.9 + float64(i)*0.001, Lng: -77.03}
	}

	sampled := samplePoints(points, similaritySampleCount)
	assert.Len(t, sampled, similaritySampleCount)
	assert.Equal(t, points[0], sampled[0], "first point is always sampled")

	short := []entity.GeoPoint{{Lat: 38.9, Lng: -77.0}}
	assert.Equal(t, short, samplePoints(short, similaritySampleCount))
}
