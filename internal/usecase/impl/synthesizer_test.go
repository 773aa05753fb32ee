package impl

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(provider *fakeRouteProvider, seed int64) *waypointSynthesizer {
	prober := newWalkabilityProber(provider, testLogger())

	return newWaypointSynthesizer(prober, rand.New(rand.NewSource(seed)), testLogger())
}

func TestBaseRadiusMeters(t *testing.T) {
	// radius = target * 0.8 / 2pi, scaled per attempt
	base := baseRadiusMeters(3.0, 0)
	wantMiles := 3.0 * 0.8 / (2 * math.Pi)
	assert.InDelta(t, wantMiles*1609.344, base, 0.01)

	scaled := baseRadiusMeters(3.0, 3)
	assert.InDelta(t, base*1.3, scaled, 0.01)
}

func TestWaypointSynthesizer_PlacesDesiredCount(t *testing.T) {
	provider := newFakeRouteProvider()
	synthesizer := newTestSynthesizer(provider, 7)

	points, err := synthesizer.Synthesize(context.Background(), testStart, 3.0, 3, 0, 0)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Every waypoint sits on the attempt-0 radius circle around the start.
	radius := baseRadiusMeters(3.0, 0)
	for _, point := range points {
		assert.InDelta(t, radius, testStart.DistanceMeters(point), radius*0.02)
	}
}

func TestWaypointSynthesizer_ReproducibleWithSameSeed(t *testing.T) {
	first, err := newTestSynthesizer(newFakeRouteProvider(), 99).
		Synthesize(context.Background(), testStart, 3.0, 4, 1, 0.5)
	require.NoError(t, err)

	second, err := newTestSynthesizer(newFakeRouteProvider(), 99).
		Synthesize(context.Background(), testStart, 3.0, 4, 1, 0.5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWaypointSynthesizer_ReturnsFewerWhenUnwalkable(t *testing.T) {
	provider := newFakeRouteProvider()
	provider.placeTypes = []string{"natural_feature"}
	provider.zeroResults = true // every probe fails, every trial route too
	synthesizer := newTestSynthesizer(provider, 7)

	points, err := synthesizer.Synthesize(context.Background(), testStart, 3.0, 3, 0, 0)
	require.NoError(t, err, "unwalkable waypoints shrink the list, they do not fail it")
	assert.Empty(t, points)
}

func TestWaypointSynthesizer_RejectsZeroCount(t *testing.T) {
	synthesizer := newTestSynthesizer(newFakeRouteProvider(), 7)

	_, err := synthesizer.Synthesize(context.Background(), testStart, 3.0, 0, 0, 0)
	assert.Error(t, err)
}
