package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignite/opportunity-analyst/internal/dataset"
)

const testHeader = "Customer_ID,Customer_Name,Industry,Annual_Revenue(USD),Number_of_Employees,Customer_Priority_Rating,Product_Usage(%),Opportunity_Stage,Opportunity_Amount(USD),Product,Total_Price(USD)\n"

func tableFrom(t *testing.T, rows ...string) *dataset.Table {
	t.Helper()
	table, err := dataset.ReadCSV(strings.NewReader(testHeader+strings.Join(rows, "\n")+"\n"), "test")
	require.NoError(t, err)
	return table
}

// salesTable is the shared fixture:
//
//	S1 (Tech)   owns A, B
//	C2 (Tech)   buys A, C
//	C3 (Tech)   buys B, C, D
//	C4 (Retail) buys D, E
//	P9 (Tech)   placeholder only
func salesTable(t *testing.T) *dataset.Table {
	return tableFrom(t,
		"s1,Subject Co,Tech,250000000,1200,High,45,Prospecting,90000,A,100",
		"S1,Subject Co,Tech,250000000,1200,High,45,Prospecting,90000,B,200",
		"C2,Second,Tech,1000000,20,Low,90,Closed Won,0,A,50",
		"C2,Second,Tech,1000000,20,Low,90,Closed Won,0,C,75",
		"C3,Third,Tech,5000000,80,Medium,60,Qualification,0,B,20",
		"C3,Third,Tech,5000000,80,Medium,60,Qualification,0,C,30",
		"C3,Third,Tech,5000000,80,Medium,60,Qualification,0,D,40",
		"C4,Fourth,Retail,300000,10,Low,10,Negotiation,0,D,10",
		"C4,Fourth,Retail,300000,10,Low,10,Negotiation,0,E,15",
		"P9,Placeholder Inc,Tech,,,Low,,,,,",
	)
}

type fakeNarrator struct {
	mu       sync.Mutex
	calls    int
	findings Findings
}

func (f *fakeNarrator) Narrate(ctx context.Context, in Findings) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.findings = in
	return "report for " + in.Profile.CustomerID
}

func (f *fakeNarrator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
