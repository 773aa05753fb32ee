package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"stride/config"
	"stride/internal/domain/entity"
	"stride/internal/domain/service"

	"github.com/paulmach/orb"
)

// fakeRouteProvider implements service.RouteProvider with a synthetic street
// network: every leg's walked distance is the great-circle distance times
// distanceFactor, emulating how real street paths exceed straight lines.
type fakeRouteProvider struct {
	mu sync.Mutex

	distanceFactor float64
	placeTypes     []string
	address        string

	routeErr     error // returned by every Route call when set
	zeroResults  bool  // every Route call returns ErrZeroResults
	reverseErr   error
	geocodeErr   error
	geocodePoint entity.GeoPoint

	routeCalls   int
	reverseCalls int
}

func newFakeRouteProvider() *fakeRouteProvider {
	return &fakeRouteProvider{
		distanceFactor: 1.0,
		placeTypes:     []string{"route"},
		address:        "Columbia Heights, Washington, DC",
		geocodePoint:   entity.GeoPoint{Lat: 38.9292, Lng: -77.0277},
	}
}

func (f *fakeRouteProvider) Route(_ context.Context, origin, destination entity.GeoPoint, waypoints []entity.GeoPoint) (*service.RoutePlan, error) {
	f.mu.Lock()
	f.routeCalls++
	routeErr, zero, factor := f.routeErr, f.zeroResults, f.distanceFactor
	f.mu.Unlock()

	if routeErr != nil {
		return nil, routeErr
	}
	if zero {
		return nil, service.ErrZeroResults
	}

	stops := make([]entity.GeoPoint, 0, len(waypoints)+2)
	stops = append(stops, origin)
	stops = append(stops, waypoints...)
	stops = append(stops, destination)

	plan := &service.RoutePlan{}
	for i := 1; i < len(stops); i++ {
		plan.Legs = append(plan.Legs, service.RouteLeg{
			DistanceMeters: stops[i-1].DistanceMeters(stops[i]) * factor,
			Start:          stops[i-1],
			End:            stops[i],
			Path:           orb.LineString{stops[i-1].Point(), stops[i].Point()},
		})
	}

	return plan, nil
}

func (f *fakeRouteProvider) ReverseGeocode(_ context.Context, _ entity.GeoPoint) (*service.PlaceInfo, error) {
	f.mu.Lock()
	f.reverseCalls++
	reverseErr := f.reverseErr
	f.mu.Unlock()

	if reverseErr != nil {
		return nil, reverseErr
	}

	return &service.PlaceInfo{
		FormattedAddress: f.address,
		PlaceTypes:       f.placeTypes,
	}, nil
}

func (f *fakeRouteProvider) Geocode(_ context.Context, _ string) (entity.GeoPoint, error) {
	if f.geocodeErr != nil {
		return entity.GeoPoint{}, f.geocodeErr
	}

	return f.geocodePoint, nil
}

// fakeCrimeProvider returns scripted incidents.
type fakeCrimeProvider struct {
	incidents []entity.CrimeIncident
	err       error
}

func (f *fakeCrimeProvider) QueryIncidents(_ context.Context, _ orb.Bound, _, _ time.Time) ([]entity.CrimeIncident, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.incidents, nil
}

// fakeNewsProvider returns scripted articles.
type fakeNewsProvider struct {
	articles []entity.NewsArticle
	err      error
}

func (f *fakeNewsProvider) QueryArticles(_ context.Context, _ string, _, _ time.Time) ([]entity.NewsArticle, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.articles, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Generation: &config.GenerationConfig{
			DistanceTolerance:   0.3,
			SimilarityThreshold: 0.3,
			MaxAttemptsPerSlot:  8,
			MaxConcurrentSlots:  3,
		},
		Safety: &config.SafetyConfig{
			CrimeWindowDays: 7,
			NewsWindowDays:  14,
			SearchRadiusKm:  0.5,
		},
	}

	return cfg
}

// frozenNow keeps scoring deterministic across a test.
var frozenNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(routes service.RouteProvider, crimes service.CrimeRecordProvider, news service.NewsProvider) *routeService {
	cfg := testConfig()
	logger := testLogger()
	now := func() time.Time { return frozenNow }

	return &routeService{
		cfg:      cfg,
		logger:   logger,
		routes:   routes,
		crimeAgg: newCrimeRiskAggregator(crimes, cfg.Safety.SearchRadiusKm, now, logger),
		newsAdj:  newNewsRiskAdjuster(news, now, logger),
		now:      now,
		seed:     42,
	}
}
