package analysis

import "github.com/ignite/opportunity-analyst/internal/dataset"

const (
	// ProductAffinityLimit caps each per-product co-purchase list.
	ProductAffinityLimit = 5
	// RecommendationLimit caps the global recommendation list.
	RecommendationLimit = 10
)

// AnalyzeAffinity measures co-purchase strength. For every owned product P it
// ranks what the buyers of P also bought; globally it ranks what buyers of
// any owned product bought. Owned products never appear in either ranking.
// Related customers include the subject.
func AnalyzeAffinity(profile *Profile, table *dataset.Table) AffinityAnalysis {
	out := AffinityAnalysis{
		ProductAffinities:  make(map[string][]ProductCount),
		TopRecommendations: []ProductCount{},
	}
	if len(profile.ProductsPurchased) == 0 {
		return out
	}

	rows := table.Rows()

	// buyers[P] is the set of customer keys that bought owned product P.
	buyers := make(map[string]map[string]struct{}, len(profile.ProductsPurchased))
	for _, p := range profile.ProductsPurchased {
		buyers[p] = make(map[string]struct{})
	}
	related := make(map[string]struct{})
	for _, row := range rows {
		if !row.IsPurchase() {
			continue
		}
		if set, ok := buyers[row.Product]; ok {
			set[row.Key] = struct{}{}
			related[row.Key] = struct{}{}
		}
	}
	out.RelatedCustomerCount = len(related)

	perProduct := make(map[string]*productCounter, len(buyers))
	for p := range buyers {
		perProduct[p] = newProductCounter()
	}
	global := newProductCounter()

	for _, row := range rows {
		if !row.IsPurchase() {
			continue
		}
		if _, ok := related[row.Key]; !ok {
			continue
		}
		global.add(row.Product)
		for p, set := range buyers {
			if _, ok := set[row.Key]; ok {
				perProduct[p].add(row.Product)
			}
		}
	}

	for p, counter := range perProduct {
		out.ProductAffinities[p] = counter.top(ProductAffinityLimit, profile.Owns)
	}
	out.TopRecommendations = global.top(RecommendationLimit, profile.Owns)
	return out
}
