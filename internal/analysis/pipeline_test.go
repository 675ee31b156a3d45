package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineAnalyze(t *testing.T) {
	narrator := &fakeNarrator{}
	p := NewPipeline(salesTable(t), narrator)

	res, err := p.Analyze(context.Background(), " s1 ", AnalyzeOptions{})
	require.NoError(t, err)

	_, err = uuid.Parse(res.AnalysisID)
	assert.NoError(t, err)
	assert.Equal(t, "S1", res.CustomerID)
	assert.Equal(t, 300.0, res.Profile.TotalSpent)
	assert.Equal(t, []string{"C", "A", "B", "D"}, res.PatternAnalysis.FrequentProductsIndustry)
	assert.Equal(t, []string{"C", "D"}, res.PatternAnalysis.MissingOpportunities)
	assert.Equal(t, 3, res.AffinityAnalysis.RelatedCustomerCount)
	assert.WithinDuration(t, time.Now(), res.GeneratedAt, time.Minute)

	// C: industry+affinity+priority+revenue = 0.85, D the same.
	// A/B upsell: usage 45 + freq 1 + priority + revenue + Prospecting = 1.0.
	require.Len(t, res.ScoredOpportunities, 4)
	assert.Equal(t, "A (Expansion)", res.ScoredOpportunities[0].Product)
	assert.Equal(t, 1.0, res.ScoredOpportunities[0].Score)
	assert.Equal(t, "B (Expansion)", res.ScoredOpportunities[1].Product)
	assert.Equal(t, "C", res.ScoredOpportunities[2].Product)
	assert.Equal(t, 0.85, res.ScoredOpportunities[2].Score)
	assert.Equal(t, "D", res.ScoredOpportunities[3].Product)

	assert.Equal(t, "report for S1", res.ResearchReport)
	require.Equal(t, 1, narrator.callCount())
	assert.Equal(t, res.ScoredOpportunities, narrator.findings.Opportunities)
}

func TestPipelineSkipReport(t *testing.T) {
	narrator := &fakeNarrator{}
	p := NewPipeline(salesTable(t), narrator)

	res, err := p.Analyze(context.Background(), "S1", AnalyzeOptions{SkipReport: true})
	require.NoError(t, err)
	assert.Empty(t, res.ResearchReport)
	assert.Equal(t, 0, narrator.callCount())
}

func TestPipelineWithoutNarrator(t *testing.T) {
	res, err := NewPipeline(salesTable(t), nil).Analyze(context.Background(), "C3", AnalyzeOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.ResearchReport)
}

func TestPipelineNotFound(t *testing.T) {
	_, err := NewPipeline(salesTable(t), nil).Analyze(context.Background(), "ZZZ", AnalyzeOptions{})
	assert.True(t, errors.Is(err, ErrCustomerNotFound))
}

func TestPipelineZeroPurchaseCustomer(t *testing.T) {
	res, err := NewPipeline(salesTable(t), nil).Analyze(context.Background(), "P9", AnalyzeOptions{})
	require.NoError(t, err)

	assert.Empty(t, res.PatternAnalysis.FrequentProductsIndustry)
	assert.Empty(t, res.AffinityAnalysis.TopRecommendations)
	assert.Empty(t, res.ScoredOpportunities)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `"scored_opportunities":[]`)
	assert.Contains(t, body, `"products_purchased":[]`)
	assert.Contains(t, body, `"product_affinities":{}`)
	assert.Contains(t, body, `"missing_opportunities":[]`)
	assert.NotContains(t, body, "null")
}

func TestPipelineIsDeterministic(t *testing.T) {
	p := NewPipeline(salesTable(t), &fakeNarrator{})

	numeric := func() []byte {
		res, err := p.Analyze(context.Background(), "S1", AnalyzeOptions{})
		require.NoError(t, err)
		res.AnalysisID = ""
		res.GeneratedAt = time.Time{}
		res.ResearchReport = ""
		data, err := json.Marshal(res)
		require.NoError(t, err)
		return data
	}

	first := numeric()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, numeric())
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(salesTable(t), nil).Analyze(ctx, "S1", AnalyzeOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineCustomers(t *testing.T) {
	got := NewPipeline(salesTable(t), nil).Customers()

	require.Len(t, got, 5)
	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.CustomerID
	}
	assert.Equal(t, []string{"C2", "C3", "C4", "P9", "S1"}, ids)

	assert.Equal(t, CustomerSummary{
		CustomerID:     "S1",
		CustomerName:   "Subject Co",
		Industry:       "Tech",
		PriorityRating: "High",
		TotalSpent:     300,
		PurchaseCount:  2,
	}, got[4])
	assert.Equal(t, 0, got[3].PurchaseCount)
}

func TestPipelineConcurrentAnalyze(t *testing.T) {
	p := NewPipeline(salesTable(t), &fakeNarrator{})
	errs := make(chan error, 16)
	for i := 0; i < cap(errs); i++ {
		go func() {
			_, err := p.Analyze(context.Background(), "S1", AnalyzeOptions{})
			errs <- err
		}()
	}
	for i := 0; i < cap(errs); i++ {
		assert.NoError(t, <-errs)
	}
}
