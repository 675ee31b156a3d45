package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/ignite/opportunity-analyst/internal/dataset"
)

// DefaultPurchaseLimit is how many purchases the history view shows.
const DefaultPurchaseLimit = 5

// PurchaseHistory returns the customer's earliest purchases, oldest first,
// capped at limit (limit <= 0 returns all of them). Rows whose date is blank
// or unparseable sort after dated rows and keep their table order.
// Placeholder rows are not purchases.
func PurchaseHistory(customerID string, table *dataset.Table, limit int) ([]Purchase, error) {
	key := dataset.NormalizeID(customerID)
	if key == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrCustomerNotFound)
	}

	type dated struct {
		Purchase
		at time.Time
		ok bool
	}

	var (
		found bool
		rows  []dated
	)
	for _, row := range table.Rows() {
		if row.Key != key {
			continue
		}
		found = true
		if !row.IsPurchase() {
			continue
		}
		at, ok := dataset.ParseDate(row.PurchaseDate)
		rows = append(rows, dated{
			Purchase: Purchase{
				Product:      row.Product,
				Price:        dataset.Float(row.Price),
				PurchaseDate: row.PurchaseDate,
			},
			at: at,
			ok: ok,
		})
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, key)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.Before(b.at)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]Purchase, len(rows))
	for i, r := range rows {
		out[i] = r.Purchase
	}
	return out, nil
}
