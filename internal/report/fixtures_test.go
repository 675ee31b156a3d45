package report

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ignite/opportunity-analyst/internal/analysis"
)

func sampleInput() Input {
	return Input{
		Profile: &analysis.Profile{
			CustomerID:        "S1",
			CompanyName:       "Subject Co",
			Industry:          "Tech",
			AnnualRevenue:     250000000,
			Employees:         1200,
			PriorityRating:    "High",
			AccountType:       "Enterprise",
			Location:          "NYC",
			CurrentProducts:   "A, B",
			TotalSpent:        300,
			AvgOrderValue:     150,
			PurchaseFrequency: 2,
			ProductsPurchased: []string{"A", "B"},
			OpportunityStage:  "Prospecting",
		},
		Pattern: analysis.PatternAnalysis{
			FrequentProductsIndustry: []string{"C", "A", "B", "D"},
			MissingOpportunities:     []string{"C", "D"},
			CustomerProductFrequency: map[string]int{"A": 1, "B": 1},
			TotalIndustryCustomers:   3,
		},
		Affinity: analysis.AffinityAnalysis{
			ProductAffinities: map[string][]analysis.ProductCount{
				"A": {{Product: "C", Count: 1}},
			},
			TopRecommendations: []analysis.ProductCount{
				{Product: "C", Count: 2}, {Product: "D", Count: 1}, {Product: "E", Count: 1},
				{Product: "F", Count: 1}, {Product: "G", Count: 1}, {Product: "H", Count: 1},
			},
			RelatedCustomerCount: 3,
		},
		Opportunities: []analysis.Opportunity{
			{Product: "A (Expansion)", Type: analysis.TypeUpsell, Score: 1, Reason: []string{"Low product usage indicates expansion opportunity", "High priority customer"}},
			{Product: "C", Type: analysis.TypeCrossSell, Score: 0.85, Reason: []string{"Frequently purchased in industry"}},
		},
	}
}

func emptyInput() Input {
	return Input{
		Profile: &analysis.Profile{
			CustomerID:        "P9",
			CompanyName:       "Placeholder Inc",
			ProductsPurchased: []string{},
		},
		Pattern: analysis.PatternAnalysis{
			FrequentProductsIndustry: []string{},
			MissingOpportunities:     []string{},
			CustomerProductFrequency: map[string]int{},
		},
		Affinity: analysis.AffinityAnalysis{
			ProductAffinities:  map[string][]analysis.ProductCount{},
			TopRecommendations: []analysis.ProductCount{},
		},
		Opportunities: []analysis.Opportunity{},
	}
}

type fakeGenerator struct {
	calls   atomic.Int32
	text    string
	err     error
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeGenerator) Name() string { return "fake/model" }

func (f *fakeGenerator) Generate(ctx context.Context, in Input) (string, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text + " " + in.Profile.CustomerID, nil
}

type blockingGenerator struct{}

func (blockingGenerator) Name() string { return "blocking" }

func (blockingGenerator) Generate(ctx context.Context, in Input) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

var errQuota = errors.New("rate limit exceeded")
