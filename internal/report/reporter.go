package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// FailurePrefix starts every placeholder report.
const FailurePrefix = "Research report could not be generated: "

const defaultTimeout = 60 * time.Second

// Reporter adapts a Generator to analysis.Narrator: it bounds each call with
// a timeout, collapses concurrent identical requests, optionally caches
// results and never fails.
type Reporter struct {
	gen      Generator
	timeout  time.Duration
	cache    Cache
	cacheTTL time.Duration
	group    singleflight.Group
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithTimeout bounds each generation.
func WithTimeout(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithCache stores generated reports for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(r *Reporter) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

func NewReporter(gen Generator, opts ...Option) *Reporter {
	r := &Reporter{gen: gen, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Narrate returns the report text, or FailurePrefix plus the cause.
func (r *Reporter) Narrate(ctx context.Context, in Input) string {
	key, err := r.key(in)
	if err != nil {
		return FailurePrefix + err.Error()
	}

	if r.cache != nil {
		if text, ok, err := r.cache.Get(ctx, key); err != nil {
			logger.Warn("report cache read failed", "error", err.Error())
		} else if ok {
			return text
		}
	}

	// The shared call must outlive any single caller, so it runs on a
	// detached context bounded only by the timeout.
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (interface{}, error) {
		gctx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()

		start := time.Now()
		text, err := r.gen.Generate(gctx, in)
		if err != nil {
			return "", err
		}
		logger.Info("report generated",
			"generator", r.gen.Name(),
			"customer_id", customerID(in),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		if r.cache != nil {
			if err := r.cache.Set(detached, key, text, r.cacheTTL); err != nil {
				logger.Warn("report cache write failed", "error", err.Error())
			}
		}
		return text, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logger.Warn("report generation failed",
				"generator", r.gen.Name(),
				"customer_id", customerID(in),
				"shared", res.Shared,
				"error", res.Err.Error(),
			)
			return FailurePrefix + res.Err.Error()
		}
		return res.Val.(string)
	case <-ctx.Done():
		logger.Warn("report request abandoned",
			"generator", r.gen.Name(),
			"customer_id", customerID(in),
			"error", ctx.Err().Error(),
		)
		return FailurePrefix + ctx.Err().Error()
	}
}

func (r *Reporter) key(in Input) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(r.gen.Name()))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func customerID(in Input) string {
	if in.Profile == nil {
		return ""
	}
	return in.Profile.CustomerID
}
