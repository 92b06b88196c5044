package domain

import "fmt"

const (
	MinScore = 0
	MaxScore = 100
)

// ProductAnalysis is the scored result for a single product.
type ProductAnalysis struct {
	ReviewsScore       int
	RepairabilityScore int
	ReputationScore    int
	ConsumptionScore   int
	PriceScore         int
	OverallScore       int
	Reasoning          string
}

// Validate enforces the [0,100] range on every numeric field.
func (a ProductAnalysis) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"reviews_score", a.ReviewsScore},
		{"repairability_score", a.RepairabilityScore},
		{"reputation_score", a.ReputationScore},
		{"consumption_score", a.ConsumptionScore},
		{"price_score", a.PriceScore},
		{"overall_score", a.OverallScore},
	}
	for _, f := range fields {
		if f.value < MinScore || f.value > MaxScore {
			return fmt.Errorf("%s=%d outside [%d,%d]", f.name, f.value, MinScore, MaxScore)
		}
	}
	return nil
}

// WeightedScore is the weighted mean of the five criterion scores.
// All-zero weights yield 0.
func WeightedScore(a ProductAnalysis, w WeightSettings) float64 {
	var sum, total float64
	for _, c := range Criteria() {
		weight := w.Get(c)
		sum += weight * float64(c.Score(a))
		total += weight
	}
	if total <= 0 {
		return 0
	}
	return sum / total
}
