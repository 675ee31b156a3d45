package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/opportunity-analyst/internal/analysis"
	"github.com/ignite/opportunity-analyst/internal/dataset"
	"github.com/ignite/opportunity-analyst/internal/pkg/httputil"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// AnalysisService is the part of analysis.Service the handlers need.
type AnalysisService interface {
	Analyze(ctx context.Context, customerID string, opts analysis.AnalyzeOptions) (*analysis.Result, error)
	Customers() ([]analysis.CustomerSummary, error)
	Purchases(customerID string, limit int) ([]analysis.Purchase, error)
	Reload(ctx context.Context) (*analysis.Pipeline, error)
	Status() analysis.Status
}

// Handlers contains all HTTP handlers
type Handlers struct {
	svc AnalysisService
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc AnalysisService) *Handlers {
	return &Handlers{svc: svc}
}

// Banner identifies the service.
//
//	GET /
func (h *Handlers) Banner(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"message":       "B2B Sales Analyst AI API",
		"status":        "running",
		"pipeline_type": pipelineType(h.svc.Status()),
	})
}

// RecommendationResponse is the body of GET /recommendation.
type RecommendationResponse struct {
	ResearchReport  string                 `json:"research_report"`
	Recommendations []analysis.Opportunity `json:"recommendations"`
}

// Recommendation runs the full pipeline, report included.
//
//	GET /recommendation?customer_id=C001
func (h *Handlers) Recommendation(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.URL.Query().Get("customer_id"))
	if customerID == "" {
		httputil.BadRequest(w, "customer_id is required")
		return
	}

	result, err := h.svc.Analyze(r.Context(), customerID, analysis.AnalyzeOptions{})
	if err != nil {
		respondAnalysisError(w, customerID, err)
		return
	}

	httputil.OK(w, RecommendationResponse{
		ResearchReport:  result.ResearchReport,
		Recommendations: result.ScoredOpportunities,
	})
}

// ListCustomers returns every customer in the loaded table.
//
//	GET /api/customers
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers()
	if err != nil {
		respondAnalysisError(w, "", err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetAnalysis returns the full analysis result. report=false skips the
// narrative report.
//
//	GET /api/customers/{customerID}/analysis
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Analyze(r.Context(), customerID, analyzeOptions(r))
	if err != nil {
		respondAnalysisError(w, customerID, err)
		return
	}
	httputil.OK(w, result)
}

// PurchasesResponse is the body of GET /api/customers/{customerID}/purchases.
type PurchasesResponse struct {
	CustomerID string              `json:"customer_id"`
	Purchases  []analysis.Purchase `json:"purchases"`
	Count      int                 `json:"count"`
}

// GetPurchases returns the customer's earliest purchases, oldest first.
// limit defaults to analysis.DefaultPurchaseLimit; limit=0 returns all.
//
//	GET /api/customers/{customerID}/purchases?limit=5
func (h *Handlers) GetPurchases(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	limit := analysis.DefaultPurchaseLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	purchases, err := h.svc.Purchases(customerID, limit)
	if err != nil {
		respondAnalysisError(w, customerID, err)
		return
	}
	httputil.OK(w, PurchasesResponse{
		CustomerID: dataset.NormalizeID(customerID),
		Purchases:  purchases,
		Count:      len(purchases),
	})
}

// ExportAnalysis returns the full analysis as a JSON file download.
//
//	GET /api/customers/{customerID}/export
func (h *Handlers) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Analyze(r.Context(), customerID, analyzeOptions(r))
	if err != nil {
		respondAnalysisError(w, customerID, err)
		return
	}
	httputil.Attachment(w, exportFilename(result.CustomerID), result)
}

// ReloadResponse is the body of POST /api/reload.
type ReloadResponse struct {
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	Customers int       `json:"customers"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Reload re-reads the transaction table. The previous table keeps serving
// when the load fails.
//
//	POST /api/reload
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Reload(r.Context())
	if err != nil {
		respondAnalysisError(w, "", err)
		return
	}

	table := p.Table()
	logger.Info("transaction table reloaded via api", "rows", table.Len())
	httputil.OK(w, ReloadResponse{
		Status:    "reloaded",
		Rows:      table.Len(),
		Customers: len(p.Customers()),
		LoadedAt:  table.LoadedAt(),
	})
}

func customerIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "customerID")
	id, err := url.PathUnescape(raw)
	if err != nil {
		httputil.BadRequest(w, "invalid customer id")
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		httputil.BadRequest(w, "customer id is required")
		return "", false
	}
	return id, true
}

func analyzeOptions(r *http.Request) analysis.AnalyzeOptions {
	var opts analysis.AnalyzeOptions
	if v := r.URL.Query().Get("report"); v != "" {
		if withReport, err := strconv.ParseBool(v); err == nil {
			opts.SkipReport = !withReport
		}
	}
	return opts
}

// exportFilename keeps the id header-safe.
func exportFilename(customerID string) string {
	var b strings.Builder
	for _, r := range customerID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return "analysis_" + b.String() + ".json"
}

func pipelineType(st analysis.Status) string {
	if !st.Ready {
		return "None"
	}
	return analysis.PipelineType
}
