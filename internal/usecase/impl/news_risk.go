package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"stride/internal/domain/entity"
	"stride/internal/domain/service"
)

// safetyKeywords is the fixed vocabulary scanned in article text, each with
// a severity weight.
var safetyKeywords = map[string]float64{
	"murder":        1.0,
	"homicide":      1.0,
	"shooting":      0.9,
	"stabbing":      0.9,
	"kidnapping":    0.9,
	"assault":       0.8,
	"robbery":       0.8,
	"carjacking":    0.8,
	"burglary":      0.6,
	"theft":         0.5,
	"break-in":      0.5,
	"vandalism":     0.3,
	"arrest":        0.3,
	"investigation": 0.2,
}

const (
	// recentEventLimit caps retained event summaries for explanation text.
	recentEventLimit = 3

	// adjustmentScale amplifies the aggregate news score before capping
	// the deduction at one full point.
	adjustmentScale = 1.5

	// diversityDenominator normalizes distinct-keyword count into the
	// keyword-diversity component of confidence.
	diversityDenominator = 5.0
)

// newsAdjustment is the bounded predictive signal derived from recent news.
// The adjustment is always <= 0: coverage can worsen a score, never improve
// it, so negative press cannot offset a genuinely dangerous incident history.
type newsAdjustment struct {
	Adjustment   float64
	NewsScore    float64
	Confidence   float64
	Reasons      []string
	TopKeywords  []string
	RecentEvents []string
}

// newsRiskAdjuster scores relevance, severity and recency of news coverage
// near a location.
type newsRiskAdjuster struct {
	provider service.NewsProvider
	now      func() time.Time
	logger   *slog.Logger
}

func newNewsRiskAdjuster(provider service.NewsProvider, now func() time.Time, logger *slog.Logger) *newsRiskAdjuster {
	return &newsRiskAdjuster{provider: provider, now: now, logger: logger}
}

// Adjust queries recent articles for the location and produces a bounded
// score adjustment with confidence and reasons. A failed query or a window
// with no relevant coverage yields nil, which composes as a no-op.
func (n *newsRiskAdjuster) Adjust(ctx context.Context, locationLabel string, windowDays int) *newsAdjustment {
	to := n.now()
	from := to.AddDate(0, 0, -windowDays)

	articles, err := n.provider.QueryArticles(ctx, locationLabel, from, to)
	if err != nil {
		n.logger.Warn("news query failed, skipping adjustment",
			slog.String("location", locationLabel),
			slog.String("error", err.Error()),
		)

		return nil
	}
	if len(articles) == 0 {
		return nil
	}

	var (
		totalImpact  float64
		relevant     int
		matchedCount = make(map[string]int)
		events       []string
	)

	for _, article := range articles {
		impact, matched := articleImpact(article, to, windowDays)
		if len(matched) == 0 {
			continue
		}

		relevant++
		totalImpact += impact
		for _, keyword := range matched {
			matchedCount[keyword]++
		}
		if len(events) < recentEventLimit {
			events = append(events, fmt.Sprintf("%s (%s)", article.Title, article.PublishedAt.Format("2006-01-02")))
		}
	}

	if relevant == 0 {
		return nil
	}

	newsScore := math.Max(0, math.Min(1, totalImpact/float64(relevant)))
	relevantRatio := float64(relevant) / float64(len(articles))
	diversity := math.Min(1, float64(len(matchedCount))/diversityDenominator)
	confidence := math.Min(1, 0.5*relevantRatio+0.5*diversity)

	reasons, keywords := buildReasons(matchedCount, relevant)

	return &newsAdjustment{
		Adjustment:   -math.Min(1, newsScore*adjustmentScale),
		NewsScore:    newsScore,
		Confidence:   confidence,
		Reasons:      reasons,
		TopKeywords:  keywords,
		RecentEvents: events,
	}
}

// articleImpact is the mean severity of the article's matched keywords,
// scaled by a linear recency decay over the query window.
func articleImpact(article entity.NewsArticle, now time.Time, windowDays int) (float64, []string) {
	text := strings.ToLower(article.Title + " " + article.Description)

	var severitySum float64
	var matched []string
	for keyword, severity := range safetyKeywords {
		if strings.Contains(text, keyword) {
			severitySum += severity
			matched = append(matched, keyword)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	daysAgo := now.Sub(article.PublishedAt).Hours() / 24
	recency := math.Max(0, 1-daysAgo/float64(windowDays))

	return (severitySum / float64(len(matched))) * recency, matched
}

// buildReasons names the most frequently matched keywords, most common first.
func buildReasons(matchedCount map[string]int, relevant int) (reasons, keywords []string) {
	type keywordHits struct {
		keyword string
		hits    int
	}

	ranked := make([]keywordHits, 0, len(matchedCount))
	for keyword, hits := range matchedCount {
		ranked = append(ranked, keywordHits{keyword: keyword, hits: hits})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].hits != ranked[j].hits {
			return ranked[i].hits > ranked[j].hits
		}

		return ranked[i].keyword < ranked[j].keyword
	})

	reasons = append(reasons, fmt.Sprintf("%d recent article(s) with safety-related coverage", relevant))
	for i, entry := range ranked {
		if i >= recentEventLimit {
			break
		}
		reasons = append(reasons, fmt.Sprintf("mentions of %q in %d article(s)", entry.keyword, entry.hits))
		keywords = append(keywords, entry.keyword)
	}

	return reasons, keywords
}
