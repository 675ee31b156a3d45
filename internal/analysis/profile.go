package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ignite/opportunity-analyst/internal/dataset"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// BuildProfile aggregates every row whose identifier normalizes to the same
// key as customerID. Placeholder rows (blank product) establish that the
// customer exists but are not purchases.
//
// Spend statistics cover purchase rows whose price parses; rows with an
// unparseable price are left out of both the sum and the mean and "price" is
// recorded in DefaultedFields.
func BuildProfile(customerID string, table *dataset.Table) (*Profile, error) {
	key := dataset.NormalizeID(customerID)
	if key == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrCustomerNotFound)
	}

	var (
		first    *dataset.Transaction
		total    = decimal.Zero
		priced   int64
		badPrice bool
		products []string
		seen     = make(map[string]bool)
		count    int
	)

	rows := table.Rows()
	for i := range rows {
		row := &rows[i]
		if row.Key != key {
			continue
		}
		if first == nil {
			first = row
		}
		if !row.IsPurchase() {
			continue
		}
		count++
		if !seen[row.Product] {
			seen[row.Product] = true
			products = append(products, row.Product)
		}
		if price, ok := dataset.ParseDecimal(row.Price); ok {
			total = total.Add(price)
			priced++
		} else {
			badPrice = true
		}
	}

	if first == nil {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, key)
	}

	p := &Profile{
		CustomerID:        key,
		CompanyName:       first.CustomerName,
		Industry:          first.Industry,
		PriorityRating:    first.PriorityRating,
		AccountType:       first.AccountType,
		Location:          first.Location,
		CurrentProducts:   first.CurrentProducts,
		LastActivity:      first.LastActivityDate,
		OpportunityStage:  first.OpportunityStage,
		Competitors:       first.Competitors,
		PurchaseFrequency: count,
		ProductsPurchased: products,
		DefaultedFields:   []string{},
	}
	if p.ProductsPurchased == nil {
		p.ProductsPurchased = []string{}
	}

	var ok bool
	if p.AnnualRevenue, ok = dataset.ParseFloat(first.AnnualRevenue); !ok {
		p.DefaultedFields = append(p.DefaultedFields, "annual_revenue")
	}
	if p.Employees, ok = dataset.ParseInt(first.EmployeeCount); !ok {
		p.DefaultedFields = append(p.DefaultedFields, "employees")
	}
	if p.ProductUsage, ok = dataset.ParseFloat(first.ProductUsage); !ok {
		p.DefaultedFields = append(p.DefaultedFields, "product_usage")
	}
	if p.OpportunityAmount, ok = dataset.ParseFloat(first.OpportunityAmount); !ok {
		p.DefaultedFields = append(p.DefaultedFields, "opportunity_amount")
	}
	if badPrice {
		p.DefaultedFields = append(p.DefaultedFields, "price")
	}

	if priced > 0 {
		p.TotalSpent, _ = total.Float64()
		p.AvgOrderValue, _ = total.Div(decimal.NewFromInt(priced)).Float64()
	}

	if len(p.DefaultedFields) > 0 {
		logger.Debug("numeric fields defaulted to zero", "customer_id", key, "fields", p.DefaultedFields)
	}
	return p, nil
}
