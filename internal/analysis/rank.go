package analysis

import "sort"

// productCounter counts products and remembers first-seen order so rankings
// break ties stably: among equal counts, the product seen first wins.
type productCounter struct {
	order  []string
	counts map[string]int
}

func newProductCounter() *productCounter {
	return &productCounter{counts: make(map[string]int)}
}

func (c *productCounter) add(product string) {
	if _, ok := c.counts[product]; !ok {
		c.order = append(c.order, product)
	}
	c.counts[product]++
}

// top returns up to n products by descending count, skipping any for which
// exclude returns true. The result is never nil.
func (c *productCounter) top(n int, exclude func(string) bool) []ProductCount {
	ranked := make([]ProductCount, 0, len(c.order))
	for _, p := range c.order {
		if exclude != nil && exclude(p) {
			continue
		}
		ranked = append(ranked, ProductCount{Product: p, Count: c.counts[p]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
