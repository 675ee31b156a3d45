// Package analysis turns the transaction table into a ranked list of
// cross-sell and upsell opportunities for a single customer.
//
// The stages are plain functions composed by Pipeline:
//
//	BuildProfile -> (AnalyzePatterns || AnalyzeAffinity) -> ScoreOpportunities -> Narrator
//
// Every stage reads the immutable table and returns a fresh value, so a
// Pipeline is safe for concurrent use.
package analysis

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCustomerNotFound means no row matched the normalized identifier.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrDataUnavailable means the transaction table is not loaded.
	ErrDataUnavailable = errors.New("transaction data unavailable")
)

// Opportunity types.
const (
	TypeCrossSell = "Cross-sell"
	TypeUpsell    = "Upsell"
)

// Profile is the aggregated snapshot of one customer. Identity fields come
// from the customer's first row.
//
// Numeric firmographics use parse-with-fallback: a blank or non-numeric
// source value becomes zero and the field name is listed in DefaultedFields.
type Profile struct {
	CustomerID        string   `json:"customer_id"`
	CompanyName       string   `json:"company_name"`
	Industry          string   `json:"industry"`
	AnnualRevenue     float64  `json:"annual_revenue"`
	Employees         int64    `json:"employees"`
	PriorityRating    string   `json:"priority_rating"`
	AccountType       string   `json:"account_type"`
	Location          string   `json:"location"`
	CurrentProducts   string   `json:"current_products"`
	ProductUsage      float64  `json:"product_usage"`
	TotalSpent        float64  `json:"total_spent"`
	AvgOrderValue     float64  `json:"avg_order_value"`
	PurchaseFrequency int      `json:"purchase_frequency"`
	ProductsPurchased []string `json:"products_purchased"`
	LastActivity      string   `json:"last_activity"`
	OpportunityStage  string   `json:"opportunity_stage"`
	OpportunityAmount float64  `json:"opportunity_amount"`
	Competitors       string   `json:"competitors"`
	DefaultedFields   []string `json:"defaulted_fields"`
}

// Owns reports whether the customer has purchased product.
func (p *Profile) Owns(product string) bool {
	for _, owned := range p.ProductsPurchased {
		if owned == product {
			return true
		}
	}
	return false
}

// PatternAnalysis compares the customer with same-industry peers.
type PatternAnalysis struct {
	FrequentProductsIndustry []string       `json:"frequent_products_industry"`
	MissingOpportunities     []string       `json:"missing_opportunities"`
	CustomerProductFrequency map[string]int `json:"customer_product_frequency"`
	TotalIndustryCustomers   int            `json:"total_industry_customers"`
}

// ProductCount is a product with its occurrence count.
type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

// AffinityAnalysis holds co-purchase rankings.
type AffinityAnalysis struct {
	ProductAffinities    map[string][]ProductCount `json:"product_affinities"`
	TopRecommendations   []ProductCount            `json:"top_recommendations"`
	RelatedCustomerCount int                       `json:"related_customer_count"`
}

// Recommends reports whether product is in TopRecommendations.
func (a AffinityAnalysis) Recommends(product string) bool {
	for _, pc := range a.TopRecommendations {
		if pc.Product == product {
			return true
		}
	}
	return false
}

// Opportunity is one scored recommendation. Reason lists the triggered
// rules in evaluation order.
type Opportunity struct {
	Product string   `json:"product"`
	Type    string   `json:"type"`
	Score   float64  `json:"score"`
	Reason  []string `json:"reason"`
}

// Findings is the numeric pipeline output handed to a Narrator.
type Findings struct {
	Profile       *Profile         `json:"profile"`
	Pattern       PatternAnalysis  `json:"pattern_analysis"`
	Affinity      AffinityAnalysis `json:"affinity_analysis"`
	Opportunities []Opportunity    `json:"scored_opportunities"`
}

// Narrator renders findings as prose. Implementations must not fail: errors
// are reported inside the returned text.
type Narrator interface {
	Narrate(ctx context.Context, f Findings) string
}

// Result is the full output of one analysis.
type Result struct {
	AnalysisID          string           `json:"analysis_id"`
	CustomerID          string           `json:"customer_id"`
	Profile             *Profile         `json:"profile"`
	PatternAnalysis     PatternAnalysis  `json:"pattern_analysis"`
	AffinityAnalysis    AffinityAnalysis `json:"affinity_analysis"`
	ScoredOpportunities []Opportunity    `json:"scored_opportunities"`
	ResearchReport      string           `json:"research_report"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// CustomerSummary is the per-customer row of the listing.
type CustomerSummary struct {
	CustomerID     string  `json:"customer_id"`
	CustomerName   string  `json:"customer_name"`
	Industry       string  `json:"industry"`
	PriorityRating string  `json:"priority_rating"`
	TotalSpent     float64 `json:"total_spent"`
	PurchaseCount  int     `json:"purchase_count"`
}

// Purchase is one purchase row of a customer's history.
type Purchase struct {
	Product      string  `json:"product"`
	Price        float64 `json:"price"`
	PurchaseDate string  `json:"purchase_date"`
}
