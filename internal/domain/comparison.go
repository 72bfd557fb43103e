package domain

import (
	"encoding/json"
	"strings"
)

// IngredientComparison is the structured reply of an ingredient comparison
type IngredientComparison struct {
	SimilarityScore int      `json:"similarityScore"`
	KeyMatches      []string `json:"keyMatches"`
	KeyDifferences  []string `json:"keyDifferences"`
	OverallAnalysis string   `json:"overallAnalysis"`
	PotentialIssues []string `json:"potentialIssues"`

	// Extra holds reply fields beyond the ones above, as sent.
	Extra map[string]json.RawMessage `json:"-"`
}

var comparisonFields = map[string]bool{
	"similarityScore": true,
	"keyMatches":      true,
	"keyDifferences":  true,
	"overallAnalysis": true,
	"potentialIssues": true,
}

// UnmarshalJSON clamps the similarity score and accepts each list field
// as a string, an array of strings or an array of objects.
func (c *IngredientComparison) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var score json.Number
	if raw, ok := fields["similarityScore"]; ok {
		_ = json.Unmarshal(raw, &score)
	}
	rounded := 0
	if score != "" {
		if f, err := score.Float64(); err == nil {
			rounded = int(f + 0.5)
		}
	}

	var analysis string
	if raw, ok := fields["overallAnalysis"]; ok {
		_ = json.Unmarshal(raw, &analysis)
	}

	c.SimilarityScore = ClampScore(rounded)
	c.KeyMatches = parseList(fields["keyMatches"])
	c.KeyDifferences = parseList(fields["keyDifferences"])
	c.OverallAnalysis = analysis
	c.PotentialIssues = parseList(fields["potentialIssues"])

	c.Extra = nil
	for k, v := range fields {
		if comparisonFields[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]json.RawMessage)
		}
		c.Extra[k] = v
	}
	return nil
}

// parseList flattens a reply list into strings. Objects become their
// label, followed by their explanation when there is one.
func parseList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s == "" {
			return []string{}
		}
		return []string{s}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text := listItemText(item); text != "" {
			out = append(out, text)
		}
	}
	return out
}

var (
	labelKeys       = []string{"ingredient", "name", "item", "title"}
	explanationKeys = []string{"description", "reason", "explanation", "note", "detail", "text"}
)

func listItemText(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal(item, &obj); err != nil {
		return strings.TrimSpace(string(item))
	}
	label := firstString(obj, labelKeys)
	explanation := firstString(obj, explanationKeys)
	switch {
	case label != "" && explanation != "":
		return label + ": " + explanation
	case label != "":
		return label
	case explanation != "":
		return explanation
	}
	return strings.TrimSpace(string(item))
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := obj[k].(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
