package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"QueChoisir/internal/config"
	"QueChoisir/internal/domain"
	"QueChoisir/internal/infrastructure/llm"
	"QueChoisir/internal/ports"
)

// Client talks to a scoring service that answers with the analysis fields directly.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Analyzer = (*Client)(nil)

type analyzeRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specifications string `json:"specifications"`
	Price          string `json:"price"`
	Category       string `json:"category"`
}

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.ScoringConfig) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Analyze posts the product to /analyze.
func (c *Client) Analyze(ctx context.Context, product domain.Product) (domain.ProductAnalysis, error) {
	if c.endpoint == "" {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("scoring endpoint is not configured"))
	}

	payload := analyzeRequest{
		ID:             product.ID.String(),
		Name:           product.Name,
		Specifications: product.Specifications,
		Price:          product.Price.String(),
		Category:       product.Category,
	}

	raw, err := c.post(ctx, "/analyze", payload)
	if err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse, errors.New("empty response body"))
	}

	var wire llm.WireAnalysis
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindSchemaViolation, fmt.Errorf("decode response: %w", err))
	}

	return wire.ToDomain()
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return nil, fmt.Errorf("close response body: %w", err)
	}

	return raw, nil
}
