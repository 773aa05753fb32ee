package entity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// CandidateRoute is a fully assembled route before safety scoring.
// Invariant: at least two points and a positive walked distance.
type CandidateRoute struct {
	Points        []GeoPoint     // ordered points the route passes through
	DistanceMiles float64        // summed leg distance, not straight-line
	Geometry      orb.LineString // underlying path geometry for later reuse
}

// Difficulty is a coarse classification derived from route distance.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// ClassifyDifficulty buckets a route by its distance in miles.
func ClassifyDifficulty(distanceMiles float64) Difficulty {
	switch {
	case distanceMiles < 2.0:
		return DifficultyEasy
	case distanceMiles < 5.0:
		return DifficultyModerate
	}

	return DifficultyHard
}

// RunRoute is the final annotated route returned to callers.
// It is created once per accepted candidate and never mutated afterwards.
type RunRoute struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	LocationLabel string             `json:"location_label"`
	DistanceMiles float64            `json:"distance_miles"`
	Difficulty    Difficulty         `json:"difficulty"`
	Terrain       string             `json:"terrain"`
	Topology      Topology           `json:"topology"`
	Attempts      int                `json:"attempts"`
	Points        []GeoPoint         `json:"points"`
	Geometry      orb.LineString     `json:"-"`
	Safety        SafetyScoreDetails `json:"safety"`
}

// RouteName builds the display name for a generated route.
func RouteName(distanceMiles float64, topology Topology, label string) string {
	if label == "" {
		return fmt.Sprintf("%.1f mi %s", distanceMiles, topology.Label())
	}

	return fmt.Sprintf("%.1f mi %s near %s", distanceMiles, topology.Label(), label)
}
