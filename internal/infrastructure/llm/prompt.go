package llm

import (
	"fmt"
	"strings"

	"QueChoisir/internal/domain"
)

const rubric = `Score the product on each criterion from 0 to 100:

1. Reviews: average customer rating and number of reviews
2. Repairability: spare part availability and ease of repair
3. Brand reputation: reliability and quality of customer service
4. Power consumption: energy efficiency
5. Price: value for money within its category

Also give an overall score from 0 to 100 and explain each score.

Answer with a single JSON object and nothing else, using integers for scores:
{
  "reviews_score": 85,
  "repairability_score": 60,
  "reputation_score": 90,
  "consumption_score": 70,
  "price_score": 75,
  "overall_score": 76,
  "reasoning": "explanation for each score"
}`

// BuildPrompt embeds the product fields into the scoring rubric.
func BuildPrompt(product domain.Product) string {
	var b strings.Builder
	b.WriteString("Analyze this product.\n\n")
	fmt.Fprintf(&b, "Product: %s\n", product.Name)
	fmt.Fprintf(&b, "Specifications: %s\n", product.Specifications)
	fmt.Fprintf(&b, "Price: %s\n\n", product.Price.StringFixed(2))
	b.WriteString(rubric)
	return b.String()
}
