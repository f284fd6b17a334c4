package analysis

import (
	"time"

	"github.com/dermalens/skin-advisor/pkg/metrics"
)

// SkinType is the closed classification set the model must pick from.
type SkinType string

const (
	SkinTypeOily        SkinType = "oily"
	SkinTypeDry         SkinType = "dry"
	SkinTypeCombination SkinType = "combination"
	SkinTypeNormal      SkinType = "normal"
	SkinTypeSensitive   SkinType = "sensitive"
)

// KnownSkinType reports whether v belongs to the closed set.
func KnownSkinType(v SkinType) bool {
	switch v {
	case SkinTypeOily, SkinTypeDry, SkinTypeCombination, SkinTypeNormal, SkinTypeSensitive:
		return true
	}
	return false
}

// Product is one concrete sunscreen recommendation.
type Product struct {
	BrandName   string `json:"brandName"`
	ProductName string `json:"productName"`
	SPF         string `json:"spf"`
	KeyBenefit  string `json:"keyBenefit"`
}

// Observations explains the classification in the model's own words.
type Observations struct {
	ObservedCharacteristics []string `json:"observedCharacteristics"`
	SkinTypeExplanation     string   `json:"skinTypeExplanation"`
}

// Recommendation describes the suggested formulation plus 1-2 products.
type Recommendation struct {
	FormulationType      string    `json:"formulationType"`
	FormulationReasoning string    `json:"formulationReasoning"`
	SpecificProducts     []Product `json:"specificProducts"`
}

// Result is the validated output contract returned to the caller. It is
// accepted whole or rejected whole and never mutated after validation.
type Result struct {
	SkinType              SkinType       `json:"skinType"`
	Confidence            float64        `json:"confidence"`
	Analysis              Observations   `json:"analysis"`
	ProductRecommendation Recommendation `json:"productRecommendation"`
	AdditionalNotes       string         `json:"additionalNotes,omitempty"`
}

// Upload is the request-scoped, untrusted uploaded image. DeclaredMIME
// and DeclaredSize come from the client and are verified, never trusted.
type Upload struct {
	Data         []byte
	DeclaredMIME string
	DeclaredSize int64
}

// NormalizedImage is the canonical re-encoding of an upload: JPEG,
// upright, at most MaxDimension on either side, sRGB, no metadata.
type NormalizedImage struct {
	JPEG   []byte
	Base64 string
	Width  int
	Height int
	// Hash is a short content digest of the original upload, used for
	// duplicate tracking without retaining the image itself.
	Hash string
}

// Outcome bundles the validated result with per-request diagnostics.
type Outcome struct {
	Result    Result
	ImageHash string
	Width     int
	Height    int
	Duration  time.Duration
	Tokens    metrics.TokenUsage
}
