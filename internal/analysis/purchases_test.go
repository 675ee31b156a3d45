package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/opportunity-analyst/internal/dataset"
)

func datedTable(t *testing.T, rows ...string) *dataset.Table {
	t.Helper()
	header := "Customer_ID,Customer_Name,Industry,Product,Total_Price(USD),Purchase_Date\n"
	table, err := dataset.ReadCSV(strings.NewReader(header+strings.Join(rows, "\n")+"\n"), "test")
	require.NoError(t, err)
	return table
}

func TestPurchaseHistorySortsByDate(t *testing.T) {
	table := datedTable(t,
		"S1,Subject Co,Tech,C,300,2024-03-01",
		"S1,Subject Co,Tech,A,100,2023-11-20",
		"C2,Second,Tech,Z,999,2020-01-01",
		"s1,Subject Co,Tech,B,200.5,01/15/2024",
	)

	got, err := PurchaseHistory(" s1", table, 0)
	require.NoError(t, err)
	assert.Equal(t, []Purchase{
		{Product: "A", Price: 100, PurchaseDate: "2023-11-20"},
		{Product: "B", Price: 200.5, PurchaseDate: "01/15/2024"},
		{Product: "C", Price: 300, PurchaseDate: "2024-03-01"},
	}, got)
}

func TestPurchaseHistoryUndatedRowsKeepTableOrder(t *testing.T) {
	table := datedTable(t,
		"S1,Subject Co,Tech,X,1,",
		"S1,Subject Co,Tech,B,2,2024-02-01",
		"S1,Subject Co,Tech,Y,3,soon",
		"S1,Subject Co,Tech,A,4,2024-01-01",
		"S1,Subject Co,Tech,W,5,",
	)

	got, err := PurchaseHistory("S1", table, 0)
	require.NoError(t, err)

	products := make([]string, len(got))
	for i, p := range got {
		products[i] = p.Product
	}
	assert.Equal(t, []string{"A", "B", "X", "Y", "W"}, products)
}

func TestPurchaseHistoryEqualDatesAreStable(t *testing.T) {
	table := datedTable(t,
		"S1,Subject Co,Tech,B,2,2024-01-01",
		"S1,Subject Co,Tech,A,1,2024-01-01",
		"S1,Subject Co,Tech,C,3,2023-06-30",
	)

	got, err := PurchaseHistory("S1", table, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Product)
	assert.Equal(t, "B", got[1].Product)
	assert.Equal(t, "A", got[2].Product)
}

func TestPurchaseHistoryLimit(t *testing.T) {
	var rows []string
	for day := 9; day >= 1; day-- {
		rows = append(rows, fmt.Sprintf("S1,Subject Co,Tech,P%d,%d,2024-01-0%d", day, day*10, day))
	}
	table := datedTable(t, rows...)

	got, err := PurchaseHistory("S1", table, DefaultPurchaseLimit)
	require.NoError(t, err)
	require.Len(t, got, DefaultPurchaseLimit)
	assert.Equal(t, "P1", got[0].Product)
	assert.Equal(t, "P5", got[4].Product)

	all, err := PurchaseHistory("S1", table, 0)
	require.NoError(t, err)
	assert.Len(t, all, 9)
}

func TestPurchaseHistoryPlaceholderCustomer(t *testing.T) {
	got, err := PurchaseHistory("P9", salesTable(t), DefaultPurchaseLimit)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPurchaseHistoryWithoutDateColumn(t *testing.T) {
	got, err := PurchaseHistory("S1", salesTable(t), DefaultPurchaseLimit)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Purchase{Product: "A", Price: 100}, got[0])
	assert.Equal(t, Purchase{Product: "B", Price: 200}, got[1])
}

func TestPurchaseHistoryUnknownCustomer(t *testing.T) {
	_, err := PurchaseHistory("NOPE", salesTable(t), DefaultPurchaseLimit)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = PurchaseHistory("   ", salesTable(t), DefaultPurchaseLimit)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
