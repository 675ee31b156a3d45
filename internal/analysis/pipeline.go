package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ignite/opportunity-analyst/internal/dataset"
)

// AnalyzeOptions tunes a single analysis.
type AnalyzeOptions struct {
	SkipReport bool
}

// Pipeline binds the stages to one immutable table. It is rebuilt, never
// mutated, when the table changes.
type Pipeline struct {
	table     *dataset.Table
	customers []CustomerSummary
	narrator  Narrator
}

// NewPipeline precomputes the customer listing for table. narrator may be nil,
// in which case reports are left empty.
func NewPipeline(table *dataset.Table, narrator Narrator) *Pipeline {
	return &Pipeline{
		table:     table,
		customers: summarize(table),
		narrator:  narrator,
	}
}

// Table returns the table the pipeline reads.
func (p *Pipeline) Table() *dataset.Table { return p.table }

// Customers returns the listing sorted by customer id.
func (p *Pipeline) Customers() []CustomerSummary {
	out := make([]CustomerSummary, len(p.customers))
	copy(out, p.customers)
	return out
}

// Purchases returns the customer's purchase history, oldest first.
func (p *Pipeline) Purchases(customerID string, limit int) ([]Purchase, error) {
	return PurchaseHistory(customerID, p.table, limit)
}

// Analyze runs every stage for customerID. Pattern and affinity analysis run
// concurrently; scoring waits for both. Report failures never fail the
// analysis.
func (p *Pipeline) Analyze(ctx context.Context, customerID string, opts AnalyzeOptions) (*Result, error) {
	profile, err := BuildProfile(customerID, p.table)
	if err != nil {
		return nil, err
	}

	var (
		pattern  PatternAnalysis
		affinity AffinityAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		pattern = AnalyzePatterns(profile, p.table)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		affinity = AnalyzeAffinity(profile, p.table)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opps := ScoreOpportunities(profile, pattern, affinity)

	result := &Result{
		AnalysisID:          uuid.NewString(),
		CustomerID:          profile.CustomerID,
		Profile:             profile,
		PatternAnalysis:     pattern,
		AffinityAnalysis:    affinity,
		ScoredOpportunities: opps,
		GeneratedAt:         time.Now().UTC(),
	}

	if p.narrator != nil && !opts.SkipReport {
		result.ResearchReport = p.narrator.Narrate(ctx, Findings{
			Profile:       profile,
			Pattern:       pattern,
			Affinity:      affinity,
			Opportunities: opps,
		})
	}
	return result, nil
}

func summarize(table *dataset.Table) []CustomerSummary {
	index := make(map[string]int)
	spent := make(map[string]decimal.Decimal)
	var out []CustomerSummary

	for _, row := range table.Rows() {
		if row.Key == "" {
			continue
		}
		i, ok := index[row.Key]
		if !ok {
			i = len(out)
			index[row.Key] = i
			out = append(out, CustomerSummary{
				CustomerID:     row.Key,
				CustomerName:   row.CustomerName,
				Industry:       row.Industry,
				PriorityRating: row.PriorityRating,
			})
		}
		if !row.IsPurchase() {
			continue
		}
		out[i].PurchaseCount++
		if price, ok := dataset.ParseDecimal(row.Price); ok {
			spent[row.Key] = spent[row.Key].Add(price)
		}
	}

	for i := range out {
		out[i].TotalSpent, _ = spent[out[i].CustomerID].Float64()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	if out == nil {
		out = []CustomerSummary{}
	}
	return out
}
