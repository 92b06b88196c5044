package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"QueChoisir/internal/config"
	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

const defaultAnthropicVersion = "2023-06-01"

// AnthropicClient implements ports.Analyzer on top of the Messages API.
type AnthropicClient struct {
	endpoint  string
	model     string
	apiKey    string
	version   string
	maxTokens int
	http      *resty.Client
}

var _ ports.Analyzer = (*AnthropicClient)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.AnthropicConfig) *AnthropicClient {
	version := cfg.Version
	if version == "" {
		version = defaultAnthropicVersion
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &AnthropicClient{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		version:   version,
		maxTokens: maxTokens,
		http:      resty.New().SetTimeout(60 * time.Second),
	}
}

// Analyze sends one message and decodes the first text block.
func (c *AnthropicClient) Analyze(ctx context.Context, product domain.Product) (domain.ProductAnalysis, error) {
	if c == nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("anthropic client is nil"))
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("anthropic client misconfigured"))
	}

	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: BuildPrompt(product)}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", c.version).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, fmt.Errorf("send message: %w", err))
	}
	if resp.IsError() {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport,
			fmt.Errorf("anthropic error %s: %s", resp.Status(), truncate(resp.String(), 1024)))
	}

	var msg anthropicResponse
	if err := json.Unmarshal(resp.Body(), &msg); err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse, fmt.Errorf("decode message: %w", err))
	}
	if len(msg.Content) == 0 {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse, errors.New("message has no content"))
	}
	if msg.Content[0].Type != "text" {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse,
			fmt.Errorf("first content block is %q, not text", msg.Content[0].Type))
	}

	return ParseAnalysis(msg.Content[0].Text)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
