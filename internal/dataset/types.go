// Package dataset loads the customer transaction table and exposes it as an
// immutable, concurrency-safe value.
package dataset

import (
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingColumns is returned when a source lacks a required column.
var ErrMissingColumns = errors.New("required columns missing")

// Transaction is one purchase row. Values are kept exactly as read from the
// source; numeric interpretation goes through ParseFloat/ParseInt.
type Transaction struct {
	Key string `json:"-"` // normalized CustomerID

	CustomerID        string `json:"customer_id"`
	CustomerName      string `json:"customer_name"`
	Industry          string `json:"industry"`
	AnnualRevenue     string `json:"annual_revenue"`
	EmployeeCount     string `json:"employee_count"`
	PriorityRating    string `json:"priority_rating"`
	AccountType       string `json:"account_type"`
	Location          string `json:"location"`
	CurrentProducts   string `json:"current_products"`
	Product           string `json:"product"`
	Price             string `json:"price"`
	ProductUsage      string `json:"product_usage"`
	LastActivityDate  string `json:"last_activity_date"`
	OpportunityStage  string `json:"opportunity_stage"`
	OpportunityAmount string `json:"opportunity_amount"`
	Competitors       string `json:"competitors"`
	PurchaseDate      string `json:"purchase_date"`

	Extra map[string]string `json:"extra,omitempty"`
}

// IsPurchase reports whether the row records a product purchase. Rows with a
// blank product are placeholders that only establish a customer record.
func (t Transaction) IsPurchase() bool {
	return strings.TrimSpace(t.Product) != ""
}

// NormalizeID canonicalizes a customer identifier for matching: surrounding
// whitespace is trimmed and letters are upper-cased.
func NormalizeID(id string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(id))
}

// Table is an immutable snapshot of the transaction table. Rows keep the
// source's natural encounter order. A reload produces a new Table.
type Table struct {
	source   string
	columns  []string
	rows     []Transaction
	loadedAt time.Time
}

// NewTable builds a Table and computes each row's normalized key.
// rows is owned by the Table afterwards.
func NewTable(source string, columns []string, rows []Transaction) *Table {
	for i := range rows {
		rows[i].CustomerID = strings.TrimSpace(rows[i].CustomerID)
		rows[i].Key = NormalizeID(rows[i].CustomerID)
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		source:   source,
		columns:  cols,
		rows:     rows,
		loadedAt: time.Now().UTC(),
	}
}

// Rows returns the table rows in encounter order. The slice is shared and
// must be treated as read-only.
func (t *Table) Rows() []Transaction { return t.rows }

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the column names, including synthesized ones.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Source describes where the table was loaded from.
func (t *Table) Source() string { return t.source }

// LoadedAt is when the table was built.
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// CustomerKeys returns the distinct normalized customer identifiers, sorted.
func (t *Table) CustomerKeys() []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, row := range t.rows {
		if row.Key == "" {
			continue
		}
		if _, ok := seen[row.Key]; ok {
			continue
		}
		seen[row.Key] = struct{}{}
		keys = append(keys, row.Key)
	}
	sort.Strings(keys)
	return keys
}
