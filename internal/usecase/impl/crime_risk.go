package impl

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"stride/internal/domain/entity"
	"stride/internal/domain/service"

	"github.com/paulmach/orb"
)

const (
	// recentIncidentLimit caps how many incident summaries are retained
	// for explanation text.
	recentIncidentLimit = 5

	// riskDivisor converts the weighted incident sum into score deductions.
	riskDivisor = 10.0

	// maxDeduction floors the crime-based score at 1.0.
	maxDeduction = 4.0
)

// crimeRiskSummary is the historical risk signal for a route.
type crimeRiskSummary struct {
	Score           float64
	WeightedRisk    float64
	IncidentCount   int
	SeverityCounts  map[entity.Severity]int
	RecentIncidents []entity.CrimeIncident
	Degraded        bool // query failed, score fell back to the default
}

// crimeRiskAggregator derives a weighted historical risk figure from
// incidents near a route's points within a trailing time window.
type crimeRiskAggregator struct {
	provider service.CrimeRecordProvider
	radiusKm float64
	now      func() time.Time
	logger   *slog.Logger
}

func newCrimeRiskAggregator(provider service.CrimeRecordProvider, radiusKm float64, now func() time.Time, logger *slog.Logger) *crimeRiskAggregator {
	return &crimeRiskAggregator{provider: provider, radiusKm: radiusKm, now: now, logger: logger}
}

// Aggregate queries incidents around the route and reduces them to a 1-5
// score. A failed or empty query degrades to the zero-incident default of
// exactly 5.0 rather than failing the caller.
func (a *crimeRiskAggregator) Aggregate(ctx context.Context, points []entity.GeoPoint, windowDays int) *crimeRiskSummary {
	summary := &crimeRiskSummary{
		Score:          5.0,
		SeverityCounts: make(map[entity.Severity]int),
	}
	if len(points) == 0 {
		return summary
	}

	to := a.now()
	from := to.AddDate(0, 0, -windowDays)
	bound := boundAround(points, a.radiusKm)

	incidents, err := a.provider.QueryIncidents(ctx, bound, from, to)
	if err != nil {
		a.logger.Warn("crime query failed, degrading to default score",
			slog.String("error", err.Error()),
		)
		summary.Degraded = true

		return summary
	}

	if len(incidents) == 0 {
		return summary
	}

	for i := range incidents {
		incidents[i].Classify()
		summary.WeightedRisk += incidents[i].Severity.Weight()
		summary.SeverityCounts[incidents[i].Severity]++
	}
	summary.IncidentCount = len(incidents)
	summary.Score = roundScore(clampScore(5 - math.Min(maxDeduction, summary.WeightedRisk/riskDivisor)))

	sort.Slice(incidents, func(i, j int) bool {
		return incidents[i].OccurredAt.After(incidents[j].OccurredAt)
	})
	if len(incidents) > recentIncidentLimit {
		incidents = incidents[:recentIncidentLimit]
	}
	summary.RecentIncidents = incidents

	return summary
}

// boundAround builds a bounding box around the points, expanded by radiusKm
// converted to degree deltas at the box's latitude.
func boundAround(points []entity.GeoPoint, radiusKm float64) orb.Bound {
	bound := orb.Bound{Min: points[0].Point(), Max: points[0].Point()}
	for _, p := range points[1:] {
		bound = bound.Extend(p.Point())
	}

	latDelta := radiusKm / 111.0
	midLat := (bound.Min.Lat() + bound.Max.Lat()) / 2
	lngScale := math.Cos(midLat * math.Pi / 180)
	if lngScale < 0.01 {
		lngScale = 0.01
	}
	lngDelta := radiusKm / (111.0 * lngScale)

	return orb.Bound{
		Min: orb.Point{bound.Min.Lon() - lngDelta, bound.Min.Lat() - latDelta},
		Max: orb.Point{bound.Max.Lon() + lngDelta, bound.Max.Lat() + latDelta},
	}
}

func clampScore(score float64) float64 {
	return math.Max(1, math.Min(5, score))
}

func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
