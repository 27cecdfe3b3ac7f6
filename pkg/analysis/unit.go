package analysis

import (
	"context"
	"fmt"
	"image"

	"github.com/veridex/authenticity-analyzer/pkg/client"
	"github.com/veridex/authenticity-analyzer/pkg/processing"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// Step names reported to the observer during Analyze
const (
	StepBrand        = "brand_identification"
	StepAuthenticity = "authenticity_analysis"
	StepTranslation  = "translation"
)

// modelMaxDim bounds the longest side of images sent to the models
const modelMaxDim = 1024

// Brander identifies the brand shown in an image
type Brander interface {
	Identify(ctx context.Context, imageData []byte) types.BrandResult
}

// Scorer evaluates authenticity, streaming text chunks as they arrive
type Scorer interface {
	Score(ctx context.Context, imageData []byte, brandName string, onChunk func(chunk string)) types.AuthenticityResult
}

// TextTranslator renders assessment text into the target language
type TextTranslator interface {
	Translate(ctx context.Context, text string) types.TranslationResult
}

// Unit runs the per-sub-region analysis sequence: brand identification,
// authenticity scoring against the identified brand, then translation of
// the assessment. Analyze always produces a usable result; individual
// step failures degrade it instead of aborting.
type Unit struct {
	brander    Brander
	scorer     Scorer
	translator TextTranslator
	processor  *processing.Processor
}

// NewUnit composes an analysis unit from the three clients
func NewUnit(brander Brander, scorer Scorer, translator TextTranslator) *Unit {
	return &Unit{
		brander:    brander,
		scorer:     scorer,
		translator: translator,
		processor:  processing.NewProcessor(),
	}
}

// NewUnitFromLLM wires a unit where all three steps share one LLM client
func NewUnitFromLLM(c client.LLMClient, visionModel, textModel, language string) *Unit {
	return NewUnit(
		NewBrandIdentifier(c, visionModel),
		NewAuthenticityScorer(c, visionModel),
		NewTranslator(c, textModel, language),
	)
}

// Analyze runs the full sequence on one sub-region image. onStep, when
// non-nil, receives step progress including every streamed assessment
// chunk (repeated StepAuthenticity notifications).
func (u *Unit) Analyze(ctx context.Context, img image.Image, onStep func(step, message string)) types.SegmentResult {
	notify := func(step, message string) {
		if onStep != nil {
			onStep(step, message)
		}
	}

	imageData, err := u.processor.PrepareForModel(img, "jpg", modelMaxDim)
	if err != nil {
		return types.SegmentResult{
			Brand: types.BrandResult{Name: UnknownBrand},
			Authenticity: degradedAuthenticity(
				fmt.Sprintf("sub-region image could not be encoded: %v", err)),
			Confidence: 0,
		}
	}

	notify(StepBrand, "Identifying brand")
	brand := u.brander.Identify(ctx, imageData)
	notify(StepBrand, fmt.Sprintf("Brand: %s", brand.Name))

	notify(StepAuthenticity, "Analyzing authenticity")
	authenticity := u.scorer.Score(ctx, imageData, brand.Name, func(chunk string) {
		notify(StepAuthenticity, chunk)
	})

	notify(StepTranslation, "Translating assessment")
	translation := u.translator.Translate(ctx, authenticity.OverallAssessment)
	if translation.Language == "" && authenticity.OverallAssessment != "" {
		authenticity.Findings = append(authenticity.Findings, "translation unavailable")
	}

	return types.SegmentResult{
		Brand:        brand,
		Authenticity: authenticity,
		Translation:  translation,
		Confidence:   clamp((brand.Confidence+authenticity.Probability)/2, 0, 1),
	}
}
