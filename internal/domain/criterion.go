package domain

import (
	"fmt"
	"strings"
)

// Criterion is one of the five fixed scoring dimensions.
type Criterion string

const (
	CriterionReviews       Criterion = "reviews"
	CriterionRepairability Criterion = "repairability"
	CriterionReputation    Criterion = "reputation"
	CriterionConsumption   Criterion = "consumption"
	CriterionPrice         Criterion = "price"
)

var criteria = []Criterion{
	CriterionReviews,
	CriterionRepairability,
	CriterionReputation,
	CriterionConsumption,
	CriterionPrice,
}

// Criteria lists every criterion in display order.
func Criteria() []Criterion {
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}

// ParseCriterion accepts the criterion name case-insensitively.
func ParseCriterion(value string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range criteria {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown criterion %q", value)
}

// Label is the human readable name.
func (c Criterion) Label() string {
	switch c {
	case CriterionReviews:
		return "Reviews"
	case CriterionRepairability:
		return "Repairability"
	case CriterionReputation:
		return "Brand reputation"
	case CriterionConsumption:
		return "Power consumption"
	case CriterionPrice:
		return "Price"
	default:
		return string(c)
	}
}

// Score returns the sub-score of a for this criterion.
func (c Criterion) Score(a ProductAnalysis) int {
	switch c {
	case CriterionReviews:
		return a.ReviewsScore
	case CriterionRepairability:
		return a.RepairabilityScore
	case CriterionReputation:
		return a.ReputationScore
	case CriterionConsumption:
		return a.ConsumptionScore
	case CriterionPrice:
		return a.PriceScore
	default:
		return 0
	}
}
