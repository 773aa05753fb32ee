package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"stride/config"
	"stride/internal/domain/entity"
	domainerrors "stride/internal/domain/errors"
	"stride/internal/domain/service"
	"stride/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// diversityRetryLimit bounds how often a slot restarts its search after the
// diversity filter rejects an otherwise valid candidate.
const diversityRetryLimit = 2

// RouteServiceParams holds dependencies for the route service, injected by Fx.
type RouteServiceParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Routes service.RouteProvider
	Crimes service.CrimeRecordProvider
	News   service.NewsProvider
}

type routeService struct {
	cfg    *config.Config
	logger *slog.Logger
	routes service.RouteProvider

	crimeAgg *crimeRiskAggregator
	newsAdj  *newsRiskAdjuster

	now  func() time.Time
	seed int64
}

// NewRouteService creates the safe-route synthesis and scoring service.
// Collaborators are injected explicitly so tests can substitute fakes.
func NewRouteService(params RouteServiceParams) usecase.RouteUsecase {
	cfg := params.Config
	now := time.Now

	return &routeService{
		cfg:      cfg,
		logger:   params.Logger,
		routes:   params.Routes,
		crimeAgg: newCrimeRiskAggregator(params.Crimes, cfg.Safety.SearchRadiusKm, now, params.Logger),
		newsAdj:  newNewsRiskAdjuster(params.News, now, params.Logger),
		now:      now,
		seed:     now().UnixNano(),
	}
}

// GenerateRoutes produces up to input.Count distinct annotated routes.
// Candidate slots search concurrently under a semaphore; acceptance into the
// batch is a single serialized critical section so the diversity filter
// always compares against the full accepted set.
func (s *routeService) GenerateRoutes(ctx context.Context, input *usecase.GenerateRoutesInput) ([]*entity.RunRoute, error) {
	if err := validateGenerateInput(input); err != nil {
		return nil, err
	}

	tolerance := input.DistanceTolerance
	if tolerance <= 0 {
		tolerance = s.cfg.Generation.DistanceTolerance
	}
	threshold := input.SimilarityThreshold
	if threshold <= 0 {
		threshold = s.cfg.Generation.SimilarityThreshold
	}

	start, err := s.resolveStart(ctx, input)
	if err != nil {
		return nil, err
	}
	label := s.locationLabel(ctx, start)

	count := input.Count
	sem := make(chan struct{}, s.cfg.Generation.MaxConcurrentSlots)
	results := make([]slotResult, count)

	var (
		mu       sync.Mutex
		accepted []*entity.CandidateRoute
		attempts []int
	)

	var wg sync.WaitGroup
	for slot := 0; slot < count; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()

			assembler := s.newSlotAssembler(slot, tolerance)
			baseAngle := 2 * math.Pi * float64(slot) / float64(count)

			var last slotResult
			for try := 0; try <= diversityRetryLimit; try++ {
				sem <- struct{}{}
				last = assembler.Assemble(ctx, start, input.TargetDistanceMiles, input.Topology,
					baseAngle+float64(try)*anglePerturbationRad/2)
				<-sem

				if last.state != slotFound {
					break
				}

				mu.Lock()
				if isTooSimilar(last.route, accepted, threshold) {
					mu.Unlock()
					s.logger.Debug("candidate rejected by diversity filter", slog.Int("slot", slot))
					last = slotResult{state: slotExhausted, attempts: last.attempts}

					continue
				}
				accepted = append(accepted, last.route)
				attempts = append(attempts, last.attempts)
				mu.Unlock()

				break
			}
			results[slot] = last
		}(slot)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails("generation canceled: " + err.Error())
	}

	if len(accepted) == 0 {
		return nil, s.batchFailure(results)
	}

	return s.scoreAndAnnotate(ctx, accepted, attempts, input.Topology, label), nil
}

// ScoreRoute computes a best-effort safety score for an arbitrary point
// sequence. Missing news data degrades to a crime-only score; a failed crime
// query degrades to the default score rather than failing.
func (s *routeService) ScoreRoute(ctx context.Context, input *usecase.ScoreRouteInput) (*entity.SafetyScoreDetails, error) {
	if input == nil || len(input.Points) == 0 {
		return nil, domainerrors.ErrInvalidRequest.WithDetails("at least one point is required")
	}
	for _, point := range input.Points {
		if !point.Valid() {
			return nil, domainerrors.ErrInvalidRequest.WithDetails("point out of bounds: " + point.String())
		}
	}

	crimeWindow := input.CrimeWindowDays
	if crimeWindow <= 0 {
		crimeWindow = s.cfg.Safety.CrimeWindowDays
	}
	newsWindow := input.NewsWindowDays
	if newsWindow <= 0 {
		newsWindow = s.cfg.Safety.NewsWindowDays
	}

	label := s.locationLabel(ctx, input.Points[len(input.Points)/2])

	return s.score(ctx, input.Points, label, crimeWindow, newsWindow), nil
}

// score runs the crime and news lookups concurrently and composes the result.
func (s *routeService) score(ctx context.Context, points []entity.GeoPoint, label string, crimeWindow, newsWindow int) *entity.SafetyScoreDetails {
	var (
		wg    sync.WaitGroup
		crime *crimeRiskSummary
		news  *newsAdjustment
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		crime = s.crimeAgg.Aggregate(ctx, points, crimeWindow)
	}()
	go func() {
		defer wg.Done()
		news = s.newsAdj.Adjust(ctx, label, newsWindow)
	}()
	wg.Wait()

	return composeSafety(crime, news)
}

// scoreAndAnnotate scores each accepted candidate independently and builds
// the final RunRoute set.
func (s *routeService) scoreAndAnnotate(
	ctx context.Context,
	accepted []*entity.CandidateRoute,
	attempts []int,
	topology entity.Topology,
	label string,
) []*entity.RunRoute {
	routes := make([]*entity.RunRoute, len(accepted))

	var wg sync.WaitGroup
	for i, candidate := range accepted {
		wg.Add(1)
		go func(i int, candidate *entity.CandidateRoute) {
			defer wg.Done()

			safety := s.score(ctx, candidate.Points, label,
				s.cfg.Safety.CrimeWindowDays, s.cfg.Safety.NewsWindowDays)

			routes[i] = &entity.RunRoute{
				ID:            uuid.New(),
				Name:          entity.RouteName(candidate.DistanceMiles, topology, label),
				LocationLabel: label,
				DistanceMiles: candidate.DistanceMiles,
				Difficulty:    entity.ClassifyDifficulty(candidate.DistanceMiles),
				Terrain:       terrainFor(topology),
				Topology:      topology,
				Attempts:      attempts[i],
				Points:        candidate.Points,
				Geometry:      candidate.Geometry,
				Safety:        *safety,
			}
		}(i, candidate)
	}
	wg.Wait()

	return routes
}

// newSlotAssembler builds an assembler with a slot-scoped random source so
// concurrent slots stay independent and test runs stay reproducible.
func (s *routeService) newSlotAssembler(slot int, tolerance float64) *routeAssembler {
	rnd := rand.New(rand.NewSource(s.seed + int64(slot)))
	prober := newWalkabilityProber(s.routes, s.logger)
	synthesizer := newWaypointSynthesizer(prober, rnd, s.logger)

	return newRouteAssembler(s.routes, synthesizer, tolerance, s.cfg.Generation.MaxAttemptsPerSlot, s.logger)
}

func (s *routeService) resolveStart(ctx context.Context, input *usecase.GenerateRoutesInput) (entity.GeoPoint, error) {
	if input.Start != nil {
		return *input.Start, nil
	}

	point, err := s.routes.Geocode(ctx, input.Address)
	if err != nil {
		return entity.GeoPoint{}, domainerrors.ErrStartUnresolvable.WithDetails(err.Error())
	}
	if !point.Valid() {
		return entity.GeoPoint{}, domainerrors.ErrStartUnresolvable.WithDetails("geocoder returned out-of-bounds coordinates")
	}

	return point, nil
}

// locationLabel resolves a human-readable label for the area, falling back
// to raw coordinates when the geocoder has nothing.
func (s *routeService) locationLabel(ctx context.Context, point entity.GeoPoint) string {
	place, err := s.routes.ReverseGeocode(ctx, point)
	if err != nil || place == nil || place.FormattedAddress == "" {
		return point.String()
	}

	return place.FormattedAddress
}

// batchFailure reports a fully empty batch with per-slot diagnostics.
func (s *routeService) batchFailure(results []slotResult) error {
	diagnostics := make([]string, 0, len(results))
	serviceFailed := false
	for slot, result := range results {
		detail := fmt.Sprintf("slot %d: %s after %d attempt(s)", slot, result.state, result.attempts)
		if result.lastErr != nil {
			detail += ": " + result.lastErr.Error()
			if !isRetryable(result.lastErr) {
				serviceFailed = true
			}
		}
		diagnostics = append(diagnostics, detail)
	}

	details := strings.Join(diagnostics, "; ")
	if serviceFailed {
		return domainerrors.ErrExternalService.WithDetails(details)
	}

	return domainerrors.ErrNoRoutesFound.WithDetails(details)
}

func isRetryable(err error) bool {
	return errors.Is(err, service.ErrZeroResults) || errors.Is(err, ErrUnwalkable)
}

func validateGenerateInput(input *usecase.GenerateRoutesInput) error {
	if input == nil {
		return domainerrors.ErrInvalidRequest.WithDetails("missing request body")
	}
	if input.TargetDistanceMiles <= 0 {
		return domainerrors.ErrInvalidRequest.WithDetails("target distance must be positive")
	}
	if input.Count < 1 {
		return domainerrors.ErrInvalidRequest.WithDetails("route count must be at least 1")
	}
	if !input.Topology.Valid() {
		return domainerrors.ErrInvalidRequest.WithDetails("unknown topology: " + string(input.Topology))
	}
	if input.Start == nil && strings.TrimSpace(input.Address) == "" {
		return domainerrors.ErrInvalidRequest.WithDetails("either start coordinates or an address is required")
	}
	if input.Start != nil && !input.Start.Valid() {
		return domainerrors.ErrInvalidRequest.WithDetails("start coordinates out of bounds")
	}

	return nil
}

func terrainFor(topology entity.Topology) string {
	if topology == entity.TopologyOutAndBack {
		return "mixed paths"
	}

	return "city streets"
}
