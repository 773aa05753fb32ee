package impl

import (
	"fmt"
	"strings"
	"time"

	"stride/internal/domain/entity"
)

// Composer confidence baselines. A crime-only score carries an implicitly
// lower confidence than one backed by a news signal.
const (
	crimeOnlyConfidence     = 0.5
	degradedCrimeConfidence = 0.3
)

// composeSafety merges the historical and predictive signals into the final
// score, trend and explanation. News can only lower the crime-based score.
func composeSafety(crime *crimeRiskSummary, news *newsAdjustment) *entity.SafetyScoreDetails {
	adjustment := 0.0
	if news != nil {
		adjustment = news.Adjustment
	}

	score := clampScore(roundScore(crime.Score + adjustment))

	details := &entity.SafetyScoreDetails{
		Score: score,
		Crime: entity.CrimeFactors{
			IncidentCount:   crime.IncidentCount,
			SeverityCounts:  crime.SeverityCounts,
			RecentIncidents: summarizeIncidents(crime.RecentIncidents),
		},
	}

	meta := entity.PredictionMeta{
		Source:     entity.PredictionSourceCrime,
		Trend:      entity.TrendUnknown,
		Confidence: crimeOnlyConfidence,
	}
	if crime.Degraded {
		meta.Confidence = degradedCrimeConfidence
	}

	if news != nil {
		meta.Source = entity.PredictionSourceCrimeNews
		meta.Confidence = news.Confidence
		switch {
		case news.Adjustment < 0:
			meta.Trend = entity.TrendWorsening
		case news.Adjustment > 0:
			meta.Trend = entity.TrendImproving
		default:
			meta.Trend = entity.TrendStable
		}

		details.News = &entity.NewsFactors{
			Impact:       -news.Adjustment,
			Confidence:   news.Confidence,
			Reasons:      news.Reasons,
			RecentEvents: news.RecentEvents,
		}
	}

	meta.Explanation = buildExplanation(score, news)
	details.Prediction = meta

	return details
}

// buildExplanation tiers a crime-derived sentence by score bracket and, when
// a news signal exists, appends a sentence naming the top keyword matches
// with a confidence qualifier.
func buildExplanation(score float64, news *newsAdjustment) string {
	var crimeSentence string
	switch {
	case score >= 4.5:
		crimeSentence = "Very safe area with minimal recent incidents."
	case score >= 3.5:
		crimeSentence = "Generally safe area with few recent incidents."
	case score >= 2.5:
		crimeSentence = "Moderate incident activity reported in this area."
	case score >= 1.5:
		crimeSentence = "Elevated incident activity reported in this area."
	default:
		crimeSentence = "High crime area based on recent incident history."
	}

	if news == nil || len(news.TopKeywords) == 0 {
		return crimeSentence
	}

	qualifier := "low"
	switch {
	case news.Confidence >= 0.7:
		qualifier = "high"
	case news.Confidence >= 0.4:
		qualifier = "moderate"
	}

	newsSentence := fmt.Sprintf("Recent news coverage mentions %s (%s confidence).",
		strings.Join(news.TopKeywords, ", "), qualifier)

	return crimeSentence + " " + newsSentence
}

func summarizeIncidents(incidents []entity.CrimeIncident) []entity.IncidentSummary {
	if len(incidents) == 0 {
		return nil
	}

	summaries := make([]entity.IncidentSummary, 0, len(incidents))
	for _, incident := range incidents {
		offense := incident.Offense
		if offense == "" {
			offense = incident.Method
		}
		summaries = append(summaries, entity.IncidentSummary{
			Offense:    offense,
			Severity:   incident.Severity,
			OccurredAt: incident.OccurredAt.Format(time.RFC3339),
		})
	}

	return summaries
}
