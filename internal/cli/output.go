package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/opportunity-analyst/internal/analysis"
)

// ANSI color codes for score display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

var money = message.NewPrinter(language.English)

func formatMoney(v float64) string {
	return money.Sprintf("$%.2f", v)
}

// RenderCustomerTable renders the customer listing.
func RenderCustomerTable(customers []analysis.CustomerSummary) string {
	if len(customers) == 0 {
		return "No customers found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-26s %-16s %-9s %9s %16s\n",
		"Customer", "Name", "Industry", "Priority", "Purchases", "Total Spent"))
	sb.WriteString(strings.Repeat("─", 93))
	sb.WriteString("\n")

	for _, c := range customers {
		sb.WriteString(fmt.Sprintf("%-12s %-26s %-16s %-9s %9d %16s\n",
			truncate(c.CustomerID, 12),
			truncate(c.CustomerName, 26),
			truncate(c.Industry, 16),
			truncate(c.PriorityRating, 9),
			c.PurchaseCount,
			formatMoney(c.TotalSpent)))
	}
	return sb.String()
}

// RenderAnalysis renders a full analysis result for the terminal, with the
// customer's purchase history under the profile.
func RenderAnalysis(res *analysis.Result, purchases []analysis.Purchase) string {
	var sb strings.Builder
	p := res.Profile

	sb.WriteString(colorize(colorBold, fmt.Sprintf("%s (%s)", p.CompanyName, res.CustomerID)))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Industry:        %s\n", orDash(p.Industry)))
	sb.WriteString(fmt.Sprintf("  Priority:        %s\n", orDash(p.PriorityRating)))
	sb.WriteString(fmt.Sprintf("  Annual revenue:  %s\n", formatMoney(p.AnnualRevenue)))
	sb.WriteString(fmt.Sprintf("  Employees:       %d\n", p.Employees))
	sb.WriteString(fmt.Sprintf("  Product usage:   %.0f%%\n", p.ProductUsage))
	sb.WriteString(fmt.Sprintf("  Total spent:     %s over %d purchases (avg %s)\n",
		formatMoney(p.TotalSpent), p.PurchaseFrequency, formatMoney(p.AvgOrderValue)))
	sb.WriteString(fmt.Sprintf("  Products:        %s\n", joinOrNone(p.ProductsPurchased)))
	sb.WriteString(fmt.Sprintf("  Stage:           %s\n", orDash(p.OpportunityStage)))
	if len(p.DefaultedFields) > 0 {
		sb.WriteString(colorize(colorGray, fmt.Sprintf("  Defaulted:       %s\n", strings.Join(p.DefaultedFields, ", "))))
	}
	sb.WriteString("\n")

	sb.WriteString(RenderPurchaseTable(purchases))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Industry peers:  %d\n", res.PatternAnalysis.TotalIndustryCustomers))
	sb.WriteString(fmt.Sprintf("  Popular in industry: %s\n", joinOrNone(res.PatternAnalysis.FrequentProductsIndustry)))
	sb.WriteString(fmt.Sprintf("  Missing:         %s\n", joinOrNone(res.PatternAnalysis.MissingOpportunities)))
	sb.WriteString(fmt.Sprintf("  Related customers: %d\n", res.AffinityAnalysis.RelatedCustomerCount))
	recs := make([]string, 0, len(res.AffinityAnalysis.TopRecommendations))
	for _, pc := range res.AffinityAnalysis.TopRecommendations {
		recs = append(recs, fmt.Sprintf("%s (%d)", pc.Product, pc.Count))
	}
	sb.WriteString(fmt.Sprintf("  Co-purchased:    %s\n", joinOrNone(recs)))
	sb.WriteString("\n")

	sb.WriteString(RenderOpportunityTable(res.ScoredOpportunities))

	if res.ResearchReport != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(res.ResearchReport, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderOpportunityTable renders scored opportunities in the given order.
func RenderOpportunityTable(opps []analysis.Opportunity) string {
	if len(opps) == 0 {
		return "No opportunities met the scoring criteria.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-3s %-24s %-11s %-6s %s\n", "#", "Product", "Type", "Score", "Reasons"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for i, o := range opps {
		score := fmt.Sprintf("%-6s", fmt.Sprintf("%.2f", o.Score))
		sb.WriteString(fmt.Sprintf("%-3d %-24s %-11s %s %s\n",
			i+1,
			truncate(o.Product, 24),
			o.Type,
			colorize(scoreColor(o.Score), score),
			strings.Join(o.Reason, "; ")))
	}
	return sb.String()
}

// RenderPurchaseTable renders purchases in the given order.
func RenderPurchaseTable(purchases []analysis.Purchase) string {
	if len(purchases) == 0 {
		return "  No purchases recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %-24s %14s  %s\n", "Purchase", "Price", "Date"))
	for _, pu := range purchases {
		sb.WriteString(fmt.Sprintf("  %-24s %14s  %s\n",
			truncate(pu.Product, 24),
			formatMoney(pu.Price),
			orDash(pu.PurchaseDate)))
	}
	return sb.String()
}

func scoreColor(score float64) string {
	switch {
	case score >= 0.7:
		return colorGreen
	case score >= 0.5:
		return colorYellow
	default:
		return colorGray
	}
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
