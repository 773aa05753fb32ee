package impl

import (
	"context"
	"testing"
	"time"

	"stride/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdjuster(provider *fakeNewsProvider) *newsRiskAdjuster {
	return newNewsRiskAdjuster(provider, func() time.Time { return frozenNow }, testLogger())
}

func article(title string, daysAgo int) entity.NewsArticle {
	return entity.NewsArticle{
		Title:       title,
		PublishedAt: frozenNow.AddDate(0, 0, -daysAgo),
		Source:      "local-news",
	}
}

func TestNewsRiskAdjuster_NilWhenNoArticles(t *testing.T) {
	adjuster := newTestAdjuster(&fakeNewsProvider{})

	assert.Nil(t, adjuster.Adjust(context.Background(), "Washington, DC", 14))
}

func TestNewsRiskAdjuster_NilWhenNoRelevantCoverage(t *testing.T) {
	adjuster := newTestAdjuster(&fakeNewsProvider{articles: []entity.NewsArticle{
		article("Local bakery wins award", 1),
		article("New bike lanes open downtown", 3),
	}})

	assert.Nil(t, adjuster.Adjust(context.Background(), "Washington, DC", 14))
}

func TestNewsRiskAdjuster_NilOnQueryFailure(t *testing.T) {
	adjuster := newTestAdjuster(&fakeNewsProvider{err: errors.New("news api down")})

	assert.Nil(t, adjuster.Adjust(context.Background(), "Washington, DC", 14))
}

func TestNewsRiskAdjuster_AdjustmentIsBoundedAndNegative(t *testing.T) {
	adjuster := newTestAdjuster(&fakeNewsProvider{articles: []entity.NewsArticle{
		article("Homicide investigation underway near park", 1),
		article("Second shooting reported this week", 2),
		article("Armed robbery at corner store", 3),
	}})

	adjustment := adjuster.Adjust(context.Background(), "Washington, DC", 14)
	require.NotNil(t, adjustment)

	assert.LessOrEqual(t, adjustment.Adjustment, 0.0)
	assert.GreaterOrEqual(t, adjustment.Adjustment, -1.0)
	assert.Greater(t, adjustment.NewsScore, 0.0)
	assert.LessOrEqual(t, adjustment.NewsScore, 1.0)
	assert.NotEmpty(t, adjustment.Reasons)
	assert.NotEmpty(t, adjustment.TopKeywords)
	assert.NotEmpty(t, adjustment.RecentEvents)
}

func TestNewsRiskAdjuster_RecencyDecay(t *testing.T) {
	fresh := newTestAdjuster(&fakeNewsProvider{articles: []entity.NewsArticle{
		article("Shooting reported overnight", 0),
	}}).Adjust(context.Background(), "Washington, DC", 14)
	require.NotNil(t, fresh)

	stale := newTestAdjuster(&fakeNewsProvider{articles: []entity.NewsArticle{
		article("Shooting reported overnight", 13),
	}}).Adjust(context.Background(), "Washington, DC", 14)
	require.NotNil(t, stale)

	assert.Greater(t, fresh.NewsScore, stale.NewsScore,
		"older coverage within the window carries less weight")
}

func TestNewsRiskAdjuster_ConfidenceReflectsRelevanceAndDiversity(t *testing.T) {
	// One relevant article out of four, one distinct keyword.
	sparse := newTestAdjuster(&fakeNewsProvider{articles: []entity.NewsArticle{
		article("Theft from parked cars", 1),
		article("Farmers market this weekend", 1),
		article("School board meeting recap", 2),
		article("Road closures for parade", 3),
	}}).Adjust(context.Background(), "Washington, DC", 14)
	require.NotNil(t, sparse)

	// Every article relevant, five distinct keywords.
	dense := newTestAdjuster(&fakeNewsProvider{articles: []entity.NewsArticle{
		article("Homicide case goes to trial", 1),
		article("Shooting suspect arrested", 1),
		article("Robbery spree hits storefronts", 2),
		article("Burglary reports double", 2),
	}}).Adjust(context.Background(), "Washington, DC", 14)
	require.NotNil(t, dense)

	assert.Greater(t, dense.Confidence, sparse.Confidence)
	assert.LessOrEqual(t, dense.Confidence, 1.0)
	assert.Greater(t, sparse.Confidence, 0.0)
}

func TestArticleImpact_MatchesKeywords(t *testing.T) {
	impact, matched := articleImpact(article("Stabbing near transit station", 0), frozenNow, 14)

	assert.ElementsMatch(t, []string{"stabbing"}, matched)
	assert.InDelta(t, 0.9, impact, 0.001, "a just-published article has no recency decay")

	impact, matched = articleImpact(article("Community garden expands", 0), frozenNow, 14)
	assert.Empty(t, matched)
	assert.Zero(t, impact)
}
