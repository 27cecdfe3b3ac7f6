package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/veridex/authenticity-analyzer/pkg/client"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// AuthenticityScorer asks a vision model whether an item is genuine.
// The model response streams; incremental text chunks are forwarded to
// the observer before the full response is parsed. Score never fails:
// failures degrade to a zero-probability uncertain result carrying an
// explanatory finding.
type AuthenticityScorer struct {
	client client.LLMClient
	model  string
}

// NewAuthenticityScorer creates a scorer backed by an LLM client
func NewAuthenticityScorer(c client.LLMClient, model string) *AuthenticityScorer {
	return &AuthenticityScorer{client: c, model: model}
}

// authenticityResponse is the model response shape
type authenticityResponse struct {
	Probability       float64  `json:"probability"`
	Verdict           string   `json:"verdict"`
	OverallAssessment string   `json:"overall_assessment"`
	Findings          []string `json:"findings"`
}

// Score evaluates the item against the identified brand. onChunk, when
// non-nil, receives each streamed response fragment as it arrives.
func (s *AuthenticityScorer) Score(ctx context.Context, imageData []byte, brandName string, onChunk func(chunk string)) types.AuthenticityResult {
	if brandName == "" {
		brandName = UnknownBrand
	}
	prompt := fmt.Sprintf(authenticityPromptTemplate, brandName)

	raw, err := s.client.Stream(ctx, s.model, prompt, [][]byte{imageData}, func(chunk string) error {
		if onChunk != nil {
			onChunk(chunk)
		}
		return nil
	})
	if err != nil {
		log.Printf("authenticity scorer: %v", err)
		return degradedAuthenticity(fmt.Sprintf("authenticity scoring failed: %v", err))
	}

	return parseAuthenticity(raw)
}

// parseAuthenticity normalizes the raw model response into a result,
// degrading instead of erroring on malformed output
func parseAuthenticity(raw string) types.AuthenticityResult {
	raw = sanitizeModelJSON(raw)
	if !looksLikeJSON(raw) {
		return degradedAuthenticity("model returned a non-JSON assessment")
	}

	var resp authenticityResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return degradedAuthenticity(fmt.Sprintf("assessment parse error: %v", err))
	}

	result := types.AuthenticityResult{
		Probability:       clamp(resp.Probability, 0, 1),
		Verdict:           normalizeVerdict(resp.Verdict, resp.Probability),
		OverallAssessment: strings.TrimSpace(resp.OverallAssessment),
		Findings:          resp.Findings,
	}
	if result.OverallAssessment == "" {
		result.OverallAssessment = "No assessment text was produced."
	}
	return result
}

// normalizeVerdict maps free-form model verdicts onto the fixed set,
// deriving one from the probability when the model strays
func normalizeVerdict(verdict string, probability float64) string {
	switch strings.ToLower(strings.TrimSpace(verdict)) {
	case types.VerdictAuthentic, "genuine", "real":
		return types.VerdictAuthentic
	case types.VerdictCounterfeit, "fake", "replica":
		return types.VerdictCounterfeit
	case types.VerdictUncertain, "unclear", "unknown":
		return types.VerdictUncertain
	}

	p := clamp(probability, 0, 1)
	switch {
	case p >= 0.85:
		return types.VerdictAuthentic
	case p < 0.70:
		return types.VerdictCounterfeit
	default:
		return types.VerdictUncertain
	}
}

func degradedAuthenticity(finding string) types.AuthenticityResult {
	return types.AuthenticityResult{
		Probability:       0,
		Verdict:           types.VerdictUncertain,
		OverallAssessment: "Authenticity could not be assessed.",
		Findings:          []string{finding},
	}
}
