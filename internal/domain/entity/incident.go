package entity

import (
	"strings"
	"time"
)

// Severity is a three-level classification of a crime incident's danger.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight returns the severity's contribution to the weighted risk figure.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	}

	return 1
}

var (
	highSeverityKeywords = []string{
		"homicide", "assault", "robbery", "carjacking",
		"weapon", "sex abuse", "gun", "knife",
	}
	mediumSeverityKeywords = []string{
		"burglary", "theft", "stolen", "arson",
	}
)

// ClassifySeverity derives a severity from an incident's offense/method text.
// Upstream records do not carry a severity; it is always derived here.
func ClassifySeverity(text string) Severity {
	lowered := strings.ToLower(text)

	for _, keyword := range highSeverityKeywords {
		if strings.Contains(lowered, keyword) {
			return SeverityHigh
		}
	}

	for _, keyword := range mediumSeverityKeywords {
		if strings.Contains(lowered, keyword) {
			return SeverityMedium
		}
	}

	return SeverityLow
}

// CrimeIncident is a historical incident record fetched per query.
// Incidents are never persisted by this service.
type CrimeIncident struct {
	ID         string    `json:"id"`
	Offense    string    `json:"offense"`
	Method     string    `json:"method"`
	Severity   Severity  `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
	Location   GeoPoint  `json:"location"`
}

// Classify fills in the derived severity from the offense and method text.
func (i *CrimeIncident) Classify() {
	i.Severity = ClassifySeverity(i.Offense + " " + i.Method)
}
