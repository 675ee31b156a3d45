package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/opportunity-analyst/internal/config"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// BedrockMessage is a message in the Anthropic messages format.
type BedrockMessage struct {
	Role    string                `json:"role"`
	Content []BedrockContentBlock `json:"content"`
}

// BedrockContentBlock is one content block of a message.
type BedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// BedrockRequest is the InvokeModel body for Anthropic models.
type BedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []BedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature"`
}

// BedrockResponse is the InvokeModel response body.
type BedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// BedrockAPI is the subset of the Bedrock runtime client used here.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockGenerator generates reports with a Claude model on AWS Bedrock.
type BedrockGenerator struct {
	client      BedrockAPI
	modelID     string
	temperature float64
	maxTokens   int
	prompts     *Prompts
}

// NewBedrockGenerator loads AWS config for cfg.BedrockRegion.
func NewBedrockGenerator(ctx context.Context, cfg config.ReportConfig, prompts *Prompts) (*BedrockGenerator, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.BedrockRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	logger.Info("bedrock report generator initialized", "model", cfg.Model, "region", cfg.BedrockRegion)
	return NewBedrockGeneratorWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg, prompts), nil
}

// NewBedrockGeneratorWithClient wraps an existing client.
func NewBedrockGeneratorWithClient(client BedrockAPI, cfg config.ReportConfig, prompts *Prompts) *BedrockGenerator {
	return &BedrockGenerator{
		client:      client,
		modelID:     cfg.Model,
		temperature: cfg.GetTemperature(),
		maxTokens:   cfg.MaxTokens,
		prompts:     prompts,
	}
}

func (g *BedrockGenerator) Name() string { return config.ProviderBedrock + "/" + g.modelID }

func (g *BedrockGenerator) Generate(ctx context.Context, in Input) (string, error) {
	prompt, err := g.prompts.User(in)
	if err != nil {
		return "", err
	}

	requestBody, err := json.Marshal(BedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        g.maxTokens,
		System:           SystemPrompt,
		Messages: []BedrockMessage{{
			Role:    "user",
			Content: []BedrockContentBlock{{Type: "text", Text: prompt}},
		}},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", fmt.Errorf("Bedrock API error: %w", err)
	}

	var response BedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("empty completion from %s", g.modelID)
	}

	logger.Debug("bedrock completion",
		"model", g.modelID,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
	)
	return text.String(), nil
}
