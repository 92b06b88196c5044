package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"QueChoisir/internal/domain"
)

// WireAnalysis is the JSON shape returned by the reasoning service.
type WireAnalysis struct {
	ReviewsScore       *int    `json:"reviews_score"`
	RepairabilityScore *int    `json:"repairability_score"`
	ReputationScore    *int    `json:"reputation_score"`
	ConsumptionScore   *int    `json:"consumption_score"`
	PriceScore         *int    `json:"price_score"`
	OverallScore       *int    `json:"overall_score"`
	Reasoning          *string `json:"reasoning"`
}

// ParseAnalysis extracts the JSON object from a model reply and validates it.
func ParseAnalysis(text string) (domain.ProductAnalysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindMalformedResponse, errors.New("empty text content"))
	}

	wire, err := decodeFirstObject(text)
	if err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindSchemaViolation, err)
	}

	return wire.ToDomain()
}

// decodeFirstObject decodes the first JSON object embedded in text, reading
// exactly one value so trailing prose is ignored.
func decodeFirstObject(text string) (WireAnalysis, error) {
	lastErr := errors.New("no JSON object in reply")
	for i := strings.IndexByte(text, '{'); i >= 0; {
		var wire WireAnalysis
		err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&wire)
		if err == nil {
			return wire, nil
		}
		lastErr = fmt.Errorf("decode analysis: %w", err)

		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return WireAnalysis{}, lastErr
}

// ToDomain checks presence and range of every field.
func (w WireAnalysis) ToDomain() (domain.ProductAnalysis, error) {
	var missing []string
	score := func(name string, v *int) int {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}

	analysis := domain.ProductAnalysis{
		ReviewsScore:       score("reviews_score", w.ReviewsScore),
		RepairabilityScore: score("repairability_score", w.RepairabilityScore),
		ReputationScore:    score("reputation_score", w.ReputationScore),
		ConsumptionScore:   score("consumption_score", w.ConsumptionScore),
		PriceScore:         score("price_score", w.PriceScore),
		OverallScore:       score("overall_score", w.OverallScore),
	}
	if w.Reasoning == nil {
		missing = append(missing, "reasoning")
	} else {
		analysis.Reasoning = *w.Reasoning
	}

	if len(missing) > 0 {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindSchemaViolation,
			fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}
	if err := analysis.Validate(); err != nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindSchemaViolation, err)
	}

	return analysis, nil
}
