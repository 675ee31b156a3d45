package report

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/opportunity-analyst/internal/analysis"
)

// SystemPrompt frames the model for every provider.
const SystemPrompt = "You are a senior B2B sales analyst with expertise in customer analysis and opportunity identification."

// topRecommendationCount is how many affinity recommendations the prompt names.
const topRecommendationCount = 5

const userPromptTemplate = `As a B2B sales analyst, generate a comprehensive research report for {{ company }}.
Customer Profile:
- Company: {{ company }}
- Industry: {{ industry }}
- Annual Revenue: {{ annual_revenue | money }}
- Employees: {{ employees }}
- Priority Rating: {{ priority }}
- Total Spent: {{ total_spent | money }}
- Purchase Frequency: {{ purchase_frequency }}
- Current Products: {{ current_products }}
- Products Purchased: {{ products_purchased | join: ", " }}
Analysis Results:
- Missing Opportunities: {{ missing | join: ", " }}
- Top Recommendations: {{ top_recommendations | join: ", " }}
- Scored Opportunities: {{ opportunity_count }} opportunities identified
Generate a professional research report with:
1. Title
2. Introduction
3. Customer Overview
4. Data Analysis
5. Recommendations
6. Conclusion
Make it business-focused and actionable.`

const offlineReportTemplate = `# Opportunity Research Report: {{ company }}

## Introduction
This report reviews {{ company }} (industry: {{ industry | default: "not recorded" }}, priority: {{ priority | default: "unrated" }}) and identifies {{ opportunity_count }} cross-sell and upsell opportunities from its purchase history, industry purchasing patterns and product co-purchase affinity.

## Customer Overview
- Industry: {{ industry }}
- Annual Revenue: {{ annual_revenue | money }}
- Employees: {{ employees }}
- Account Type: {{ account_type }}
- Location: {{ location }}
- Total Spent: {{ total_spent | money }} across {{ purchase_frequency }} purchases (average order {{ avg_order_value | money }})
- Products Purchased: {% if has_products %}{{ products_purchased | join: ", " }}{% else %}none recorded{% endif %}
- Opportunity Stage: {{ opportunity_stage | default: "none" }}

## Data Analysis
- {{ industry_customers }} peer customers share the {{ industry }} industry.{% if has_frequent %} Their most purchased products are {{ frequent | join: ", " }}.{% endif %}
- {% if has_missing %}Products peers buy that {{ company }} does not yet own: {{ missing | join: ", " }}.{% else %}{{ company }} already owns every product popular with its peers.{% endif %}
- {{ related_customers }} customers share at least one product with this account.{% if has_recommendations %} Strongest co-purchase signals: {{ top_recommendations | join: ", " }}.{% endif %}

## Recommendations
{% if has_opportunities %}{% for o in opportunities %}{{ forloop.index }}. {{ o.product }} ({{ o.type }}, score {{ o.score }}): {{ o.reason }}
{% endfor %}{% else %}No opportunities met the scoring criteria.
{% endif %}
## Conclusion
{% if has_opportunities %}The highest-value next step for {{ company }} is {{ top_opportunity }}. Prioritize the opportunities above in score order and revisit this analysis after the next purchase cycle.{% else %}No action is recommended until {{ company }} records further purchases.{% endif %}
`

// Prompts renders the model prompt and the offline report from findings.
type Prompts struct {
	user    *liquid.Template
	offline *liquid.Template
}

// NewPrompts compiles the templates.
func NewPrompts() (*Prompts, error) {
	engine := liquid.NewEngine()
	registerFilters(engine)

	user, err := engine.ParseString(userPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	offline, err := engine.ParseString(offlineReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Prompts{user: user, offline: offline}, nil
}

// User renders the user prompt sent to a model.
func (p *Prompts) User(in Input) (string, error) {
	out, err := p.user.RenderString(bindings(in))
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out, nil
}

// Offline renders a complete report without a model.
func (p *Prompts) Offline(in Input) (string, error) {
	out, err := p.offline.RenderString(bindings(in))
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}

func registerFilters(engine *liquid.Engine) {
	// {{ amount | money }} -> $1,234,567.00
	engine.RegisterFilter("money", func(value interface{}) string {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		default:
			return fmt.Sprintf("%v", value)
		}
		return message.NewPrinter(language.English).Sprintf("$%.2f", f)
	})

	engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fallback
		}
		return value
	})
}

func bindings(in Input) map[string]interface{} {
	profile := in.Profile
	if profile == nil {
		profile = &analysis.Profile{}
	}

	recs := make([]string, 0, topRecommendationCount)
	for i, pc := range in.Affinity.TopRecommendations {
		if i == topRecommendationCount {
			break
		}
		recs = append(recs, pc.Product)
	}

	opps := make([]map[string]interface{}, 0, len(in.Opportunities))
	for _, o := range in.Opportunities {
		opps = append(opps, map[string]interface{}{
			"product": o.Product,
			"type":    o.Type,
			"score":   fmt.Sprintf("%.2f", o.Score),
			"reason":  strings.Join(o.Reason, "; "),
		})
	}
	top := ""
	if len(in.Opportunities) > 0 {
		top = fmt.Sprintf("%s (%s)", in.Opportunities[0].Product, in.Opportunities[0].Type)
	}

	return map[string]interface{}{
		"company":             profile.CompanyName,
		"industry":            profile.Industry,
		"annual_revenue":      profile.AnnualRevenue,
		"employees":           profile.Employees,
		"priority":            profile.PriorityRating,
		"account_type":        profile.AccountType,
		"location":            profile.Location,
		"current_products":    profile.CurrentProducts,
		"total_spent":         profile.TotalSpent,
		"avg_order_value":     profile.AvgOrderValue,
		"purchase_frequency":  profile.PurchaseFrequency,
		"opportunity_stage":   profile.OpportunityStage,
		"products_purchased":  profile.ProductsPurchased,
		"has_products":        len(profile.ProductsPurchased) > 0,
		"frequent":            in.Pattern.FrequentProductsIndustry,
		"has_frequent":        len(in.Pattern.FrequentProductsIndustry) > 0,
		"missing":             in.Pattern.MissingOpportunities,
		"has_missing":         len(in.Pattern.MissingOpportunities) > 0,
		"industry_customers":  in.Pattern.TotalIndustryCustomers,
		"top_recommendations": recs,
		"has_recommendations": len(recs) > 0,
		"related_customers":   in.Affinity.RelatedCustomerCount,
		"opportunities":       opps,
		"has_opportunities":   len(opps) > 0,
		"opportunity_count":   len(opps),
		"top_opportunity":     top,
	}
}
