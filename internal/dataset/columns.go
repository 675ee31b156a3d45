package dataset

import (
	"fmt"
	"strings"
	"unicode"
)

// Field is a canonical transaction column.
type Field string

const (
	FieldCustomerID        Field = "customer_id"
	FieldCustomerName      Field = "customer_name"
	FieldIndustry          Field = "industry"
	FieldAnnualRevenue     Field = "annual_revenue"
	FieldEmployeeCount     Field = "employee_count"
	FieldPriorityRating    Field = "priority_rating"
	FieldAccountType       Field = "account_type"
	FieldLocation          Field = "location"
	FieldCurrentProducts   Field = "current_products"
	FieldProduct           Field = "product"
	FieldPrice             Field = "price"
	FieldProductUsage      Field = "product_usage"
	FieldLastActivityDate  Field = "last_activity_date"
	FieldOpportunityStage  Field = "opportunity_stage"
	FieldOpportunityAmount Field = "opportunity_amount"
	FieldCompetitors       Field = "competitors"
	FieldPurchaseDate      Field = "purchase_date"
)

// RequiredFields must be present in every source.
var RequiredFields = []Field{FieldCustomerID, FieldIndustry, FieldProduct, FieldPrice}

// columnAliases maps folded header names to canonical fields. Folding drops
// case and every non-alphanumeric rune, so "Total_Price(USD)" and
// "total price usd" both become "totalpriceusd".
var columnAliases = map[string]Field{
	// Customer identity
	"customerid": FieldCustomerID,
	"custid":     FieldCustomerID,
	"clientid":   FieldCustomerID,
	"accountid":  FieldCustomerID,

	"customername": FieldCustomerName,
	"companyname":  FieldCustomerName,
	"company":      FieldCustomerName,
	"name":         FieldCustomerName,

	// Firmographics
	"industry": FieldIndustry,
	"sector":   FieldIndustry,
	"vertical": FieldIndustry,

	"annualrevenueusd": FieldAnnualRevenue,
	"annualrevenue":    FieldAnnualRevenue,
	"revenue":          FieldAnnualRevenue,

	"numberofemployees": FieldEmployeeCount,
	"employeecount":     FieldEmployeeCount,
	"employees":         FieldEmployeeCount,
	"headcount":         FieldEmployeeCount,

	"customerpriorityrating": FieldPriorityRating,
	"priorityrating":         FieldPriorityRating,
	"priority":               FieldPriorityRating,

	"accounttype": FieldAccountType,

	"location": FieldLocation,
	"region":   FieldLocation,
	"country":  FieldLocation,

	"currentproducts": FieldCurrentProducts,

	// Purchase line
	"product":     FieldProduct,
	"productname": FieldProduct,

	"totalpriceusd": FieldPrice,
	"totalprice":    FieldPrice,
	"price":         FieldPrice,
	"amount":        FieldPrice,

	"productusage":    FieldProductUsage,
	"productusagepct": FieldProductUsage,
	"usage":           FieldProductUsage,

	// Pipeline state
	"lastactivitydate": FieldLastActivityDate,
	"lastactivity":     FieldLastActivityDate,

	"opportunitystage": FieldOpportunityStage,
	"stage":            FieldOpportunityStage,

	"opportunityamountusd": FieldOpportunityAmount,
	"opportunityamount":    FieldOpportunityAmount,

	"competitors": FieldCompetitors,
	"competitor":  FieldCompetitors,

	"purchasedate":    FieldPurchaseDate,
	"orderdate":       FieldPurchaseDate,
	"transactiondate": FieldPurchaseDate,
	"date":            FieldPurchaseDate,
}

func foldHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ColumnMapping is the resolved mapping from column index to canonical field.
// The first column claiming a field wins; later duplicates are kept as extras.
type ColumnMapping struct {
	FieldMap map[int]Field
	Names    []string
}

// MapColumns resolves header names to canonical fields and fails with
// ErrMissingColumns when a required field is absent.
func MapColumns(header []string) (*ColumnMapping, error) {
	m := &ColumnMapping{
		FieldMap: make(map[int]Field, len(header)),
		Names:    header,
	}
	claimed := make(map[Field]bool)
	for i, h := range header {
		field, ok := columnAliases[foldHeader(h)]
		if !ok || claimed[field] {
			continue
		}
		claimed[field] = true
		m.FieldMap[i] = field
	}

	var missing []string
	for _, f := range RequiredFields {
		if !claimed[f] {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return m, nil
}

// Apply builds a Transaction from one record.
func (m *ColumnMapping) Apply(record []string) Transaction {
	var tx Transaction
	for i, val := range record {
		field, ok := m.FieldMap[i]
		if !ok {
			if val == "" || i >= len(m.Names) {
				continue
			}
			if tx.Extra == nil {
				tx.Extra = make(map[string]string)
			}
			tx.Extra[m.Names[i]] = val
			continue
		}
		setField(&tx, field, val)
	}
	return tx
}

func setField(tx *Transaction, field Field, val string) {
	switch field {
	case FieldCustomerID:
		tx.CustomerID = val
	case FieldCustomerName:
		tx.CustomerName = val
	case FieldIndustry:
		tx.Industry = val
	case FieldAnnualRevenue:
		tx.AnnualRevenue = val
	case FieldEmployeeCount:
		tx.EmployeeCount = val
	case FieldPriorityRating:
		tx.PriorityRating = val
	case FieldAccountType:
		tx.AccountType = val
	case FieldLocation:
		tx.Location = val
	case FieldCurrentProducts:
		tx.CurrentProducts = val
	case FieldProduct:
		tx.Product = val
	case FieldPrice:
		tx.Price = val
	case FieldProductUsage:
		tx.ProductUsage = val
	case FieldLastActivityDate:
		tx.LastActivityDate = val
	case FieldOpportunityStage:
		tx.OpportunityStage = val
	case FieldOpportunityAmount:
		tx.OpportunityAmount = val
	case FieldCompetitors:
		tx.Competitors = val
	case FieldPurchaseDate:
		tx.PurchaseDate = val
	}
}

// BuildTable maps raw records onto a Table. Records wider than the header
// get synthesized column names "Extra_Column_<i>" (zero-based index) so no
// value is dropped; short records leave the missing fields blank.
func BuildTable(source string, header []string, records [][]string) (*Table, error) {
	width := len(header)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	columns := make([]string, width)
	for i := range columns {
		if i < len(header) {
			columns[i] = strings.TrimSpace(header[i])
		} else {
			columns[i] = fmt.Sprintf("Extra_Column_%d", i)
		}
	}

	mapping, err := MapColumns(columns)
	if err != nil {
		return nil, err
	}

	rows := make([]Transaction, 0, len(records))
	for _, rec := range records {
		rows = append(rows, mapping.Apply(rec))
	}
	return NewTable(source, columns, rows), nil
}
