package openai

import (
	"fmt"
	"strings"
)

const extractSystemPrompt = `You are a beauty product expert. Extract structured information about the beauty product from the user's query. The query may be a product name, description or URL. Return the information as a JSON object.`

const compareSystemPrompt = `You are a cosmetic ingredient analysis expert. Compare the ingredients of two beauty products and determine their similarity. Focus on active ingredients, formulation, and potential effectiveness. Return a JSON object with a similarity score (0-100) and detailed analysis.`

func extractUserPrompt(query string) string {
	return fmt.Sprintf(`Extract detailed information about the beauty product from this query: %q

Return your analysis as a JSON object with these fields when possible:
- productName: full product name
- brand: brand name
- category: product category (e.g., lipstick, foundation, mascara)
- keyIngredients: array of key ingredients if mentioned
- priceRange: estimated price range if mentioned
- isMakeup: boolean indicating if it's makeup
- isSkincare: boolean indicating if it's skincare
- isHaircare: boolean indicating if it's haircare
- confidence: your confidence level in this extraction (0-100)`, query)
}

func compareUserPrompt(original, dupe []string) string {
	return fmt.Sprintf(`Original product ingredients: %s

Potential dupe product ingredients: %s

Please analyze the similarity between these two products, focusing on:
1. Key active ingredients and their concentrations (if discernible)
2. Base formulation similarity
3. Potential skin/hair benefits
4. Any significant differences

Return your analysis as a JSON object with these fields:
- similarityScore: number between 0-100
- keyMatches: array of matching key ingredients
- keyDifferences: array of important ingredients that differ
- overallAnalysis: string explaining the comparison
- potentialIssues: any potential concerns (if applicable)`,
		strings.Join(original, ", "), strings.Join(dupe, ", "))
}
