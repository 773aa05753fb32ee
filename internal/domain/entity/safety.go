package entity

// PredictionSource names the signals a safety score was composed from.
type PredictionSource string

const (
	PredictionSourceCrime     PredictionSource = "crime"
	PredictionSourceCrimeNews PredictionSource = "crime+news"
)

// Trend indicates the direction recent signals push the score.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
	TrendUnknown   Trend = "unknown"
)

// IncidentSummary is a compact incident description for explanation output.
type IncidentSummary struct {
	Offense    string   `json:"offense"`
	Severity   Severity `json:"severity"`
	OccurredAt string   `json:"occurred_at"`
}

// CrimeFactors describes the historical signal behind a safety score.
type CrimeFactors struct {
	IncidentCount   int               `json:"incident_count"`
	SeverityCounts  map[Severity]int  `json:"severity_counts"`
	RecentIncidents []IncidentSummary `json:"recent_incidents,omitempty"` // at most 5
}

// NewsFactors describes the predictive news signal, when one was computed.
type NewsFactors struct {
	Impact       float64  `json:"impact"`     // magnitude of the applied adjustment
	Confidence   float64  `json:"confidence"` // 0..1
	Reasons      []string `json:"reasons,omitempty"`
	RecentEvents []string `json:"recent_events,omitempty"` // at most 3
}

// PredictionMeta carries provenance for the composed score.
type PredictionMeta struct {
	Source      PredictionSource `json:"source"`
	Confidence  float64          `json:"confidence"`
	Trend       Trend            `json:"trend"`
	Explanation string           `json:"explanation"`
}

// SafetyScoreDetails is the composed 1-5 safety score with its evidence.
type SafetyScoreDetails struct {
	Score      float64        `json:"score"` // clamped to [1.0, 5.0]
	Crime      CrimeFactors   `json:"crime_factors"`
	News       *NewsFactors   `json:"news_factors,omitempty"`
	Prediction PredictionMeta `json:"prediction"`
}
