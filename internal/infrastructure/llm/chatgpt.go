package llm

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
	"QueChoisir/internal/ports"
)

// ChatGPTClient implements ports.Analyzer backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Analyzer = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.ChatGPTConfig) *ChatGPTClient {
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Analyze posts the product prompt as a user message and decodes the first choice.
func (c *ChatGPTClient) Analyze(ctx context.Context, product domain.Product) (domain.ProductAnalysis, error) {
	if c == nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("chatgpt client is nil"))
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("chatgpt client misconfigured"))
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": BuildPrompt(product)},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, fmt.Errorf("marshal chatgpt payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, fmt.Errorf("send prompt: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport,
			fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload))))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse, fmt.Errorf("decode completion: %w", err))
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse, errors.New("completion has no text content"))
	}

	return ParseAnalysis(*completion.Choices[0].Message.Content)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a consumer product analyst. You answer with JSON only."
	}
	return prompt
}
