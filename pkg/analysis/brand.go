package analysis

import (
	"context"
	"encoding/json"
	"log"

	"github.com/veridex/authenticity-analyzer/pkg/client"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// UnknownBrand is the placeholder used when no brand can be identified
const UnknownBrand = "Unknown Brand"

// BrandIdentifier asks a vision model which brand an item belongs to.
// Identify never fails: every failure mode collapses into the
// Unknown Brand placeholder with zero confidence.
type BrandIdentifier struct {
	client client.LLMClient
	model  string
}

// NewBrandIdentifier creates a brand identifier backed by an LLM client
func NewBrandIdentifier(c client.LLMClient, model string) *BrandIdentifier {
	return &BrandIdentifier{client: c, model: model}
}

// brandResponse is the model response shape
type brandResponse struct {
	BrandName   string  `json:"brand_name"`
	ProductName string  `json:"product_name"`
	Confidence  float64 `json:"confidence"`
}

// Identify returns the brand shown in the image, or the Unknown Brand
// placeholder when identification is not possible
func (b *BrandIdentifier) Identify(ctx context.Context, imageData []byte) types.BrandResult {
	raw, err := b.client.Complete(ctx, b.model, BrandPrompt, [][]byte{imageData})
	if err != nil {
		log.Printf("brand identifier: %v", err)
		return unknownBrand()
	}

	raw = sanitizeModelJSON(raw)
	if !looksLikeJSON(raw) {
		log.Printf("brand identifier: non-JSON response")
		return unknownBrand()
	}

	var resp brandResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		log.Printf("brand identifier: parse error: %v", err)
		return unknownBrand()
	}

	result := types.BrandResult{
		Name:       resp.BrandName,
		Product:    resp.ProductName,
		Confidence: clamp(resp.Confidence, 0, 1),
	}
	if result.Name == "" {
		result.Name = UnknownBrand
		result.Confidence = 0
	}
	return result
}

func unknownBrand() types.BrandResult {
	return types.BrandResult{Name: UnknownBrand, Confidence: 0}
}
