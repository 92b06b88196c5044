package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"QueChoisir/internal/config"
	"QueChoisir/internal/domain"
)

const validReply = `{"reviews_score":85,"repairability_score":60,"reputation_score":90,"consumption_score":70,"price_score":75,"overall_score":76,"reasoning":"balanced"}`

func widget(t *testing.T) domain.Product {
	t.Helper()
	return domain.MustProduct("Widget A", "Aluminium body, 2 year warranty", 100.0, "Widgets")
}

func analysisKind(t *testing.T, err error) domain.AnalysisErrorKind {
	t.Helper()
	var ae *domain.AnalysisError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AnalysisError, got %T: %v", err, err)
	}
	return ae.Kind
}

func TestBuildPromptEmbedsProduct(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(widget(t))
	for _, want := range []string{"Widget A", "Aluminium body, 2 year warranty", "100.00", "reviews_score", "overall_score"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt is missing %q", want)
		}
	}
}

func TestParseAnalysisValid(t *testing.T) {
	t.Parallel()

	got, err := ParseAnalysis(validReply)
	if err != nil {
		t.Fatalf("ParseAnalysis returned error: %v", err)
	}
	if got.OverallScore != 76 || got.ReviewsScore != 85 || got.Reasoning != "balanced" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestParseAnalysisStripsFences(t *testing.T) {
	t.Parallel()

	got, err := ParseAnalysis("Here you go:\n```json\n" + validReply + "\n```")
	if err != nil {
		t.Fatalf("ParseAnalysis returned error: %v", err)
	}
	if got.PriceScore != 75 {
		t.Fatalf("unexpected price score: %d", got.PriceScore)
	}
}

func TestParseAnalysisIgnoresSurroundingBraces(t *testing.T) {
	t.Parallel()

	text := "Scores {draft}:\n" + validReply + "\nUse {weights} to tune the ranking."
	got, err := ParseAnalysis(text)
	if err != nil {
		t.Fatalf("ParseAnalysis returned error: %v", err)
	}
	if got.OverallScore != 76 || got.Reasoning != "balanced" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestParseAnalysisRejections(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		text string
		kind domain.AnalysisErrorKind
	}{
		"empty":        {"   ", domain.KindMalformedResponse},
		"no object":    {"I cannot score this product.", domain.KindSchemaViolation},
		"out of range": {strings.Replace(validReply, `"price_score":75`, `"price_score":101`, 1), domain.KindSchemaViolation},
		"negative":     {strings.Replace(validReply, `"overall_score":76`, `"overall_score":-3`, 1), domain.KindSchemaViolation},
		"fractional":   {strings.Replace(validReply, `"reviews_score":85`, `"reviews_score":85.5`, 1), domain.KindSchemaViolation},
		"wrong type":   {strings.Replace(validReply, `"reviews_score":85`, `"reviews_score":"85"`, 1), domain.KindSchemaViolation},
		"missing":      {strings.Replace(validReply, `"reasoning":"balanced"`, `"notes":"x"`, 1), domain.KindSchemaViolation},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAnalysis(tc.text)
			if err == nil {
				t.Fatalf("expected error")
			}
			if kind := analysisKind(t, err); kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, kind)
			}
		})
	}
}

func TestAnthropicClientAnalyze(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "claude-test" || len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Widget A") {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": validReply}},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient(config.AnthropicConfig{Endpoint: server.URL, Model: "claude-test", APIKey: "secret"})
	got, err := client.Analyze(context.Background(), widget(t))
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if got.OverallScore != 76 {
		t.Fatalf("unexpected overall score: %d", got.OverallScore)
	}
}

func TestAnthropicClientNonTextBlock(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(config.AnthropicConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})
	_, err := client.Analyze(context.Background(), widget(t))
	if kind := analysisKind(t, err); kind != domain.KindMalformedResponse {
		t.Fatalf("expected malformed response, got %s", kind)
	}
}

func TestAnthropicClientEmptyContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(config.AnthropicConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})
	_, err := client.Analyze(context.Background(), widget(t))
	if kind := analysisKind(t, err); kind != domain.KindMalformedResponse {
		t.Fatalf("expected malformed response, got %s", kind)
	}
}

func TestAnthropicClientHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewAnthropicClient(config.AnthropicConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})
	_, err := client.Analyze(context.Background(), widget(t))
	if kind := analysisKind(t, err); kind != domain.KindTransport {
		t.Fatalf("expected transport error, got %s", kind)
	}
}

func TestAnthropicClientMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewAnthropicClient(config.AnthropicConfig{Endpoint: "http://127.0.0.1:1", Model: "m"})
	_, err := client.Analyze(context.Background(), widget(t))
	if kind := analysisKind(t, err); kind != domain.KindTransport {
		t.Fatalf("expected transport error, got %s", kind)
	}
}

func TestChatGPTClientAnalyze(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": validReply}}},
		})
	}))
	defer server.Close()

	client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "gpt-test", APIKey: "secret"})
	got, err := client.Analyze(context.Background(), widget(t))
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if got.ReputationScore != 90 {
		t.Fatalf("unexpected reputation score: %d", got.ReputationScore)
	}
}

func TestChatGPTClientNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})
	_, err := client.Analyze(context.Background(), widget(t))
	if kind := analysisKind(t, err); kind != domain.KindMalformedResponse {
		t.Fatalf("expected malformed response, got %s", kind)
	}
}

func TestChatGPTClientHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})
	_, err := client.Analyze(context.Background(), widget(t))
	if kind := analysisKind(t, err); kind != domain.KindTransport {
		t.Fatalf("expected transport error, got %s", kind)
	}
}
