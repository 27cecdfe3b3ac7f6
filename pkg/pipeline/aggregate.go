package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/veridex/authenticity-analyzer/pkg/events"
)

// Aggregate result bands
const (
	ResultAuthentic  = "authentic"
	ResultSuspicious = "suspicious"
	ResultLikelyFake = "likely_fake"
)

// Classify maps an aggregate confidence to its verdict band.
func Classify(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return ResultAuthentic
	case confidence >= 0.70:
		return ResultSuspicious
	default:
		return ResultLikelyFake
	}
}

// summarize computes the final verdict from the persisted details,
// writes the job aggregate, and emits the closing summary pair. A
// failed aggregate write emits an error event in place of
// summary_complete; the run still finishes with a complete event.
func (r *run) summarize(ctx context.Context) {
	r.emit(events.SummaryProgress{Message: "Computing the final verdict"})
	if !r.sinkOpen {
		return
	}

	confidence, result, summary, assessment := r.aggregate()
	log.Printf("[%s] aggregate: %s (%.3f) from %d detail(s)", r.job.ID, result, confidence, len(r.confidences))

	sctx, cancel := context.WithTimeout(ctx, r.o.config.PersistTimeout)
	defer cancel()
	if err := r.o.deps.Jobs.SaveAggregate(sctx, r.job.ID, confidence, result, summary); err != nil {
		log.Printf("[%s] aggregate write failed: %v", r.job.ID, err)
		r.emit(events.Error{Message: "Failed to persist the analysis summary", Err: err.Error()})
		return
	}

	r.emit(events.SummaryComplete{
		Message: "Analysis summary ready",
		Summary: events.Summary{
			OverallResult:          result,
			Confidence:             confidence,
			Summary:                summary,
			AuthenticityAssessment: assessment,
		},
	})
}

// aggregate reduces the per-detail confidences to the final verdict.
// A run that persisted nothing gets the fixed zero-detail verdict.
func (r *run) aggregate() (confidence float64, result, summary, assessment string) {
	if len(r.confidences) == 0 {
		return 0, ResultLikelyFake,
			"No analyzable regions were found.",
			"Authenticity could not be established because no region produced a result."
	}

	var sum float64
	for _, c := range r.confidences {
		sum += c
	}
	confidence = sum / float64(len(r.confidences))
	result = Classify(confidence)
	summary = fmt.Sprintf("Analyzed %d region(s); overall result %s with confidence %.2f.",
		len(r.confidences), result, confidence)
	assessment = assessmentText(result)
	return confidence, result, summary, assessment
}

func assessmentText(result string) string {
	switch result {
	case ResultAuthentic:
		return "The examined regions are consistent with a genuine product."
	case ResultSuspicious:
		return "Some examined regions show irregularities; manual review is recommended."
	default:
		return "The examined regions indicate a likely counterfeit."
	}
}
