package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

// ParseAndValidate turns the model's raw text into a validated Result.
// The model is instructed to answer bare JSON but may wrap it in a code
// fence; fences are stripped before parsing. Every failure, from a parse
// error to a single out-of-contract field, is reported as upstream_error
// with a named reason. No partial recovery or coercion is attempted.
func ParseAndValidate(raw string) (Result, error) {
	cleaned := stripCodeFence(raw)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return Result{}, apperrors.Wrap("upstream_error", "model response is not valid JSON", err)
	}
	if err := validateResult(result); err != nil {
		return Result{}, apperrors.Wrap("upstream_error", "model response violates the result contract", err)
	}
	return result, nil
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func validateResult(r Result) error {
	if !KnownSkinType(r.SkinType) {
		return fmt.Errorf("skinType %q is outside the closed set", r.SkinType)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v is outside [0,1]", r.Confidence)
	}
	if len(r.Analysis.ObservedCharacteristics) == 0 {
		return fmt.Errorf("analysis.observedCharacteristics is empty")
	}
	for i, obs := range r.Analysis.ObservedCharacteristics {
		if strings.TrimSpace(obs) == "" {
			return fmt.Errorf("analysis.observedCharacteristics[%d] is blank", i)
		}
	}
	if strings.TrimSpace(r.Analysis.SkinTypeExplanation) == "" {
		return fmt.Errorf("analysis.skinTypeExplanation is missing")
	}
	if strings.TrimSpace(r.ProductRecommendation.FormulationType) == "" {
		return fmt.Errorf("productRecommendation.formulationType is missing")
	}
	if strings.TrimSpace(r.ProductRecommendation.FormulationReasoning) == "" {
		return fmt.Errorf("productRecommendation.formulationReasoning is missing")
	}
	products := r.ProductRecommendation.SpecificProducts
	if len(products) < 1 || len(products) > 2 {
		return fmt.Errorf("productRecommendation.specificProducts has %d entries, want 1-2", len(products))
	}
	for i, p := range products {
		if strings.TrimSpace(p.BrandName) == "" {
			return fmt.Errorf("specificProducts[%d].brandName is missing", i)
		}
		if strings.TrimSpace(p.ProductName) == "" {
			return fmt.Errorf("specificProducts[%d].productName is missing", i)
		}
		if strings.TrimSpace(p.SPF) == "" {
			return fmt.Errorf("specificProducts[%d].spf is missing", i)
		}
		if strings.TrimSpace(p.KeyBenefit) == "" {
			return fmt.Errorf("specificProducts[%d].keyBenefit is missing", i)
		}
	}
	return nil
}
