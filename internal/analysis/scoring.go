package analysis

import "sort"

// Rule weights are points out of 100 so thresholds compare exactly.
const (
	pointsIndustryFrequent = 30
	pointsAffinity         = 20
	pointsHighPriority     = 20
	pointsHighRevenue      = 15
	pointsFrequentBuyer    = 15

	pointsLowUsage        = 30
	pointsLowFrequency    = 20
	pointsActiveStage     = 15
	upsellFloor           = 30
	maxPoints             = 100
	highRevenueThreshold  = 100_000_000
	frequentBuyerMin      = 5
	lowUsageThreshold     = 80
	lowFrequencyThreshold = 3

	highPriorityLabel = "High"
	expansionSuffix   = " (Expansion)"
)

// Reason strings, in evaluation order.
const (
	ReasonIndustryFrequent = "Frequently purchased in industry"
	ReasonAffinity         = "High co-purchase affinity"
	ReasonHighPriority     = "High priority customer"
	ReasonHighRevenue      = "High revenue potential"
	ReasonFrequentBuyer    = "Frequent purchaser"
	ReasonLowUsage         = "Low product usage indicates expansion opportunity"
	ReasonLowFrequency     = "Low purchase frequency suggests upsell potential"
	ReasonActiveStage      = "Active opportunity stage"
)

var activeStages = map[string]bool{
	"Prospecting":   true,
	"Qualification": true,
}

type scoreCard struct {
	points int
	reason []string
}

func (c *scoreCard) apply(cond bool, points int, reason string) {
	if cond {
		c.points += points
		c.reason = append(c.reason, reason)
	}
}

func (c *scoreCard) score() float64 {
	return float64(min(c.points, maxPoints)) / maxPoints
}

// ScoreOpportunities applies the weighted rule set. Every missing industry
// product becomes a cross-sell candidate; every owned product with recorded
// purchases becomes an upsell candidate, kept only when it scores above 0.3.
// The result is sorted by descending score, ties keeping cross-sell before
// upsell and source order within each family.
//
// The industry-frequency rule always fires for cross-sell candidates since
// they are drawn from the industry list; it still contributes its weight.
func ScoreOpportunities(profile *Profile, pattern PatternAnalysis, affinity AffinityAnalysis) []Opportunity {
	opps := make([]Opportunity, 0, len(pattern.MissingOpportunities)+len(profile.ProductsPurchased))

	highPriority := profile.PriorityRating == highPriorityLabel
	highRevenue := profile.AnnualRevenue > highRevenueThreshold

	frequent := make(map[string]bool, len(pattern.FrequentProductsIndustry))
	for _, p := range pattern.FrequentProductsIndustry {
		frequent[p] = true
	}

	for _, product := range pattern.MissingOpportunities {
		var c scoreCard
		c.apply(frequent[product], pointsIndustryFrequent, ReasonIndustryFrequent)
		c.apply(affinity.Recommends(product), pointsAffinity, ReasonAffinity)
		c.apply(highPriority, pointsHighPriority, ReasonHighPriority)
		c.apply(highRevenue, pointsHighRevenue, ReasonHighRevenue)
		c.apply(profile.PurchaseFrequency > frequentBuyerMin, pointsFrequentBuyer, ReasonFrequentBuyer)
		opps = append(opps, newOpportunity(product, TypeCrossSell, c))
	}

	for _, product := range profile.ProductsPurchased {
		freq := pattern.CustomerProductFrequency[product]
		if freq <= 0 {
			continue
		}
		var c scoreCard
		c.apply(profile.ProductUsage < lowUsageThreshold, pointsLowUsage, ReasonLowUsage)
		c.apply(freq < lowFrequencyThreshold, pointsLowFrequency, ReasonLowFrequency)
		c.apply(highPriority, pointsHighPriority, ReasonHighPriority)
		c.apply(highRevenue, pointsHighRevenue, ReasonHighRevenue)
		c.apply(activeStages[profile.OpportunityStage], pointsActiveStage, ReasonActiveStage)
		if c.points <= upsellFloor {
			continue
		}
		opps = append(opps, newOpportunity(product+expansionSuffix, TypeUpsell, c))
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Score > opps[j].Score
	})
	return opps
}

func newOpportunity(product, kind string, c scoreCard) Opportunity {
	reason := c.reason
	if reason == nil {
		reason = []string{}
	}
	return Opportunity{Product: product, Type: kind, Score: c.score(), Reason: reason}
}
