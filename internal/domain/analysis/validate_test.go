package analysis

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

func validRawResult() string {
	return `{
		"skinType": "combination",
		"confidence": 0.82,
		"analysis": {
			"observedCharacteristics": ["shiny t-zone", "dry cheeks"],
			"skinTypeExplanation": "oil in the t-zone with flaking elsewhere"
		},
		"productRecommendation": {
			"formulationType": "gel",
			"formulationReasoning": "lightweight texture suits a mixed skin surface",
			"specificProducts": [
				{"brandName": "La Roche-Posay", "productName": "Anthelios UVMune 400", "spf": "SPF 50+", "keyBenefit": "broad spectrum without residue"}
			]
		},
		"additionalNotes": "reapply every two hours"
	}`
}

func TestParseAndValidateSuccess(t *testing.T) {
	result, err := ParseAndValidate(validRawResult())
	require.NoError(t, err)
	require.Equal(t, SkinTypeCombination, result.SkinType)
	require.Equal(t, 0.82, result.Confidence)
	require.Len(t, result.Analysis.ObservedCharacteristics, 2)
	require.Len(t, result.ProductRecommendation.SpecificProducts, 1)
	require.Equal(t, "reapply every two hours", result.AdditionalNotes)
}

func TestParseAndValidateStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validRawResult() + "\n```"
	result, err := ParseAndValidate(fenced)
	require.NoError(t, err)
	require.Equal(t, SkinTypeCombination, result.SkinType)

	bareFence := "```\n" + validRawResult() + "\n```"
	result, err = ParseAndValidate(bareFence)
	require.NoError(t, err)
	require.Equal(t, SkinTypeCombination, result.SkinType)
}

func TestParseAndValidateRejectsNonJSON(t *testing.T) {
	_, err := ParseAndValidate("I could not analyze the image, sorry.")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "upstream_error"))
}

func TestParseAndValidateRejectsUnknownSkinType(t *testing.T) {
	raw := mutateResult(t, validRawResult(), func(m map[string]any) {
		m["skinType"] = "glowing"
	})
	_, err := ParseAndValidate(raw)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "upstream_error"))
	require.Contains(t, err.Error(), "skinType")
}

func TestParseAndValidateConfidenceBounds(t *testing.T) {
	for _, tc := range []struct {
		confidence float64
		wantErr    bool
	}{
		{0, false},
		{1, false},
		{0.5, false},
		{-0.1, true},
		{1.2, true},
	} {
		t.Run(fmt.Sprintf("confidence=%v", tc.confidence), func(t *testing.T) {
			raw := mutateResult(t, validRawResult(), func(m map[string]any) {
				m["confidence"] = tc.confidence
			})
			_, err := ParseAndValidate(raw)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "confidence")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseAndValidateObservationsRequired(t *testing.T) {
	raw := mutateResult(t, validRawResult(), func(m map[string]any) {
		m["analysis"].(map[string]any)["observedCharacteristics"] = []any{}
	})
	_, err := ParseAndValidate(raw)
	require.Error(t, err)
	require.Contains(t, err.Error(), "observedCharacteristics")

	raw = mutateResult(t, validRawResult(), func(m map[string]any) {
		m["analysis"].(map[string]any)["observedCharacteristics"] = []any{"fine", "  "}
	})
	_, err = ParseAndValidate(raw)
	require.Error(t, err)
}

func TestParseAndValidateProductCount(t *testing.T) {
	product := map[string]any{
		"brandName":   "EltaMD",
		"productName": "UV Clear",
		"spf":         "SPF 46",
		"keyBenefit":  "niacinamide for blemish-prone skin",
	}
	for count, wantErr := range map[int]bool{0: true, 1: false, 2: false, 3: true} {
		raw := mutateResult(t, validRawResult(), func(m map[string]any) {
			products := make([]any, count)
			for i := range products {
				products[i] = product
			}
			m["productRecommendation"].(map[string]any)["specificProducts"] = products
		})
		_, err := ParseAndValidate(raw)
		if wantErr {
			require.Error(t, err, "count=%d", count)
		} else {
			require.NoError(t, err, "count=%d", count)
		}
	}
}

func TestParseAndValidateProductFieldsRequired(t *testing.T) {
	raw := mutateResult(t, validRawResult(), func(m map[string]any) {
		products := m["productRecommendation"].(map[string]any)["specificProducts"].([]any)
		products[0].(map[string]any)["spf"] = ""
	})
	_, err := ParseAndValidate(raw)
	require.Error(t, err)
	require.Contains(t, err.Error(), "spf")
}

func TestValidatedResultRoundTrips(t *testing.T) {
	result, err := ParseAndValidate(validRawResult())
	require.NoError(t, err)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)

	again, err := ParseAndValidate(string(encoded))
	require.NoError(t, err)
	require.Equal(t, result, again)
}

func mutateResult(t *testing.T, raw string, mutate func(map[string]any)) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	mutate(m)
	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	return string(encoded)
}
