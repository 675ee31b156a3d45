package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/opportunity-analyst/internal/dataset"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// PipelineType is reported by the service banner.
const PipelineType = "Simple"

// Service owns the data source and the current Pipeline. Reload swaps the
// pipeline atomically; requests already running finish on the one they
// started with.
type Service struct {
	source      dataset.Source
	narrator    Narrator
	loadTimeout time.Duration

	current atomic.Pointer[Pipeline]
	mu      sync.Mutex // serializes reloads
	lastErr atomic.Value
}

// Status describes the loaded data for health checks.
type Status struct {
	Ready     bool      `json:"pipeline_ready"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Customers int       `json:"customers"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// NewService creates a service with no data loaded. Call Reload before use.
func NewService(source dataset.Source, narrator Narrator, loadTimeout time.Duration) *Service {
	return &Service{source: source, narrator: narrator, loadTimeout: loadTimeout}
}

// Reload loads a fresh table and swaps in a new pipeline. On failure the
// previous pipeline stays in place and the error wraps ErrDataUnavailable.
func (s *Service) Reload(ctx context.Context) (*Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	start := time.Now()
	table, err := s.source.Load(ctx)
	if err != nil {
		s.lastErr.Store(err.Error())
		logger.Error("transaction table load failed", "source", s.source.Describe(), "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	p := NewPipeline(table, s.narrator)
	s.current.Store(p)
	s.lastErr.Store("")
	logger.Info("transaction table loaded",
		"source", table.Source(),
		"rows", table.Len(),
		"customers", len(p.customers),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return p, nil
}

// Pipeline returns the current pipeline or ErrDataUnavailable.
func (s *Service) Pipeline() (*Pipeline, error) {
	p := s.current.Load()
	if p == nil {
		return nil, ErrDataUnavailable
	}
	return p, nil
}

// Analyze runs the current pipeline for customerID.
func (s *Service) Analyze(ctx context.Context, customerID string, opts AnalyzeOptions) (*Result, error) {
	p, err := s.Pipeline()
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, customerID, opts)
}

// Customers lists the customers of the current table.
func (s *Service) Customers() ([]CustomerSummary, error) {
	p, err := s.Pipeline()
	if err != nil {
		return nil, err
	}
	return p.Customers(), nil
}

// Purchases returns the customer's purchase history from the current table.
func (s *Service) Purchases(customerID string, limit int) ([]Purchase, error) {
	p, err := s.Pipeline()
	if err != nil {
		return nil, err
	}
	return p.Purchases(customerID, limit)
}

// Status reports what is loaded.
func (s *Service) Status() Status {
	st := Status{Source: s.source.Describe()}
	if v, ok := s.lastErr.Load().(string); ok {
		st.LastError = v
	}
	p := s.current.Load()
	if p == nil {
		return st
	}
	st.Ready = true
	st.Rows = p.table.Len()
	st.Customers = len(p.customers)
	st.LoadedAt = p.table.LoadedAt()
	return st
}
