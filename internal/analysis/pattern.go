package analysis

import "github.com/ignite/opportunity-analyst/internal/dataset"

// FrequentProductsLimit caps the industry ranking.
const FrequentProductsLimit = 10

// AnalyzePatterns ranks the products bought by same-industry peers and lists
// the ones the customer lacks. A customer with no purchases has no baseline
// and gets an empty analysis.
func AnalyzePatterns(profile *Profile, table *dataset.Table) PatternAnalysis {
	out := PatternAnalysis{
		FrequentProductsIndustry: []string{},
		MissingOpportunities:     []string{},
		CustomerProductFrequency: make(map[string]int),
	}
	if len(profile.ProductsPurchased) == 0 {
		return out
	}

	peers := newProductCounter()
	peerKeys := make(map[string]struct{})
	for _, row := range table.Rows() {
		if row.Key == profile.CustomerID {
			if row.IsPurchase() && profile.Owns(row.Product) {
				out.CustomerProductFrequency[row.Product]++
			}
			continue
		}
		if row.Industry != profile.Industry {
			continue
		}
		peerKeys[row.Key] = struct{}{}
		if row.IsPurchase() {
			peers.add(row.Product)
		}
	}
	out.TotalIndustryCustomers = len(peerKeys)

	for _, pc := range peers.top(FrequentProductsLimit, nil) {
		out.FrequentProductsIndustry = append(out.FrequentProductsIndustry, pc.Product)
		if !profile.Owns(pc.Product) {
			out.MissingOpportunities = append(out.MissingOpportunities, pc.Product)
		}
	}
	return out
}
