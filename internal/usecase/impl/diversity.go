package impl

import (
	"stride/internal/domain/entity"
)

const (
	// similaritySampleCount caps how many evenly spaced points are sampled
	// from each route when comparing two candidates.
	similaritySampleCount = 10

	// similarityRadiusMeters is the proximity under which two sampled
	// points count toward similarity.
	similarityRadiusMeters = 100.0
)

// routeSimilarity measures spatial overlap between two routes on a 0-1 scale.
// Each pair of sampled points closer than similarityRadiusMeters contributes
// proportionally to how close they are; the result is normalized by the
// number of comparisons.
func routeSimilarity(a, b *entity.CandidateRoute) float64 {
	samplesA := samplePoints(a.Points, similaritySampleCount)
	samplesB := samplePoints(b.Points, similaritySampleCount)
	if len(samplesA) == 0 || len(samplesB) == 0 {
		return 0
	}

	var accumulator float64
	comparisons := 0
	for _, pa := range samplesA {
		for _, pb := range samplesB {
			comparisons++
			distance := pa.DistanceMeters(pb)
			if distance < similarityRadiusMeters {
				accumulator += 1 - distance/similarityRadiusMeters
			}
		}
	}

	return accumulator / float64(comparisons)
}

// isTooSimilar reports whether the candidate overlaps any already-accepted
// route beyond the threshold. It runs strictly between a candidate being
// found and it being added to the accepted set.
func isTooSimilar(candidate *entity.CandidateRoute, accepted []*entity.CandidateRoute, threshold float64) bool {
	for _, existing := range accepted {
		if routeSimilarity(candidate, existing) > threshold {
			return true
		}
	}

	return false
}

// samplePoints picks up to limit evenly spaced points from the sequence.
func samplePoints(points []entity.GeoPoint, limit int) []entity.GeoPoint {
	if len(points) <= limit {
		return points
	}

	sampled := make([]entity.GeoPoint, 0, limit)
	step := float64(len(points)-1) / float64(limit-1)
	for i := 0; i < limit; i++ {
		idx := int(float64(i) * step)
		sampled = append(sampled, points[idx])
	}

	return sampled
}
