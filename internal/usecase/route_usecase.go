package usecase

import (
	"context"

	"stride/internal/domain/entity"
)

// GenerateRoutesInput is a request for a batch of distinct safe routes.
// Either Start or Address must be set; Address is geocoded before generation.
type GenerateRoutesInput struct {
	Start               *entity.GeoPoint
	Address             string
	TargetDistanceMiles float64
	Topology            entity.Topology
	Count               int
	SimilarityThreshold float64 // 0 means the configured default
	DistanceTolerance   float64 // 0 means the configured default
}

// ScoreRouteInput asks for a safety score over an arbitrary point sequence,
// independent of generation (e.g. a user-drawn route).
type ScoreRouteInput struct {
	Points          []entity.GeoPoint
	CrimeWindowDays int // 0 means the configured default
	NewsWindowDays  int // 0 means the configured default
}

// RouteUsecase defines the safe-route synthesis and scoring use cases
type RouteUsecase interface {
	// GenerateRoutes produces up to Count distinct walkable routes matching
	// the target distance within tolerance, each annotated with a safety
	// score. It may return fewer than Count routes when the attempt budget
	// is exhausted; an empty result is an error.
	GenerateRoutes(ctx context.Context, input *GenerateRoutesInput) ([]*entity.RunRoute, error)

	// ScoreRoute computes a best-effort safety score for the given points.
	// Missing auxiliary (news) data never fails the call.
	ScoreRoute(ctx context.Context, input *ScoreRouteInput) (*entity.SafetyScoreDetails, error)
}
