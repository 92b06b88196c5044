package domain

import (
	"fmt"
	"math"
)

const defaultWeight = 1.0

// WeightSettings holds one non-negative weight per criterion.
type WeightSettings struct {
	Reviews       float64 `json:"reviewsWeight"`
	Repairability float64 `json:"repairabilityWeight"`
	Reputation    float64 `json:"reputationWeight"`
	Consumption   float64 `json:"consumptionWeight"`
	Price         float64 `json:"priceWeight"`
}

// DefaultWeights gives every criterion the same weight.
func DefaultWeights() WeightSettings {
	return WeightSettings{
		Reviews:       defaultWeight,
		Repairability: defaultWeight,
		Reputation:    defaultWeight,
		Consumption:   defaultWeight,
		Price:         defaultWeight,
	}
}

// Get returns the weight for c.
func (w WeightSettings) Get(c Criterion) float64 {
	switch c {
	case CriterionReviews:
		return w.Reviews
	case CriterionRepairability:
		return w.Repairability
	case CriterionReputation:
		return w.Reputation
	case CriterionConsumption:
		return w.Consumption
	case CriterionPrice:
		return w.Price
	default:
		return 0
	}
}

// With returns a copy with the weight for c replaced.
func (w WeightSettings) With(c Criterion, value float64) WeightSettings {
	switch c {
	case CriterionReviews:
		w.Reviews = value
	case CriterionRepairability:
		w.Repairability = value
	case CriterionReputation:
		w.Reputation = value
	case CriterionConsumption:
		w.Consumption = value
	case CriterionPrice:
		w.Price = value
	}
	return w
}

// Sum adds the five weights.
func (w WeightSettings) Sum() float64 {
	return w.Reviews + w.Repairability + w.Reputation + w.Consumption + w.Price
}

// IsDefault is true when every weight equals the default exactly.
func (w WeightSettings) IsDefault() bool {
	return w == DefaultWeights()
}

// Normalized scales the weights to sum to 1. A non-positive sum yields the defaults.
func (w WeightSettings) Normalized() WeightSettings {
	total := w.Sum()
	if total <= 0 {
		return DefaultWeights()
	}
	return WeightSettings{
		Reviews:       w.Reviews / total,
		Repairability: w.Repairability / total,
		Reputation:    w.Reputation / total,
		Consumption:   w.Consumption / total,
		Price:         w.Price / total,
	}
}

// Validate rejects negative, NaN or infinite weights.
func (w WeightSettings) Validate() error {
	for _, c := range criteria {
		if err := ValidateWeight(w.Get(c)); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}

// ValidateWeight checks a single weight value.
func ValidateWeight(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("weight %v is not a finite number", value)
	}
	if value < 0 {
		return fmt.Errorf("weight %v is negative", value)
	}
	return nil
}
