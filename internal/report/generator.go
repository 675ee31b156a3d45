// Package report turns analysis findings into a narrative research report
// using a language model, with an offline template fallback.
package report

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ignite/opportunity-analyst/internal/analysis"
	"github.com/ignite/opportunity-analyst/internal/config"
	"github.com/ignite/opportunity-analyst/internal/pkg/httpretry"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// Input is what a Generator receives.
type Input = analysis.Findings

// Generator produces report text. Unlike a Narrator it may fail; Reporter
// converts failures into placeholder text.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
	// Name identifies provider and model, e.g. "openai/llama-3.3-70b-versatile".
	Name() string
}

// NewGenerator builds the Generator selected by cfg.Provider. The openai
// provider without an API key degrades to offline templates.
func NewGenerator(ctx context.Context, cfg config.ReportConfig) (Generator, error) {
	prompts, err := NewPrompts()
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		if cfg.APIKey == "" {
			logger.Warn("no model API key configured, reports use offline templates")
			return NewTemplateGenerator(prompts), nil
		}
		client := httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, cfg.GetMaxRetries())
		return NewOpenAIGenerator(cfg, client, prompts), nil
	case config.ProviderBedrock:
		return NewBedrockGenerator(ctx, cfg, prompts)
	case config.ProviderTemplate:
		return NewTemplateGenerator(prompts), nil
	default:
		return nil, fmt.Errorf("unknown report provider %q", cfg.Provider)
	}
}

// TemplateGenerator renders reports locally.
type TemplateGenerator struct {
	prompts *Prompts
}

func NewTemplateGenerator(prompts *Prompts) *TemplateGenerator {
	return &TemplateGenerator{prompts: prompts}
}

func (g *TemplateGenerator) Name() string { return config.ProviderTemplate }

func (g *TemplateGenerator) Generate(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.prompts.Offline(in)
}
