package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/google/uuid"

	"github.com/veridex/authenticity-analyzer/pkg/events"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// ErrConsumerGone reports that the event consumer disconnected before
// the run finished. The in-flight sub-region is completed so no partial
// write is orphaned, but the job aggregate is left untouched.
var ErrConsumerGone = errors.New("event consumer gone")

// run carries the mutable state of one analysis run
type run struct {
	o        *Orchestrator
	job      Job
	sink     Sink
	sinkOpen bool

	processed   int // sub-regions entered
	persisted   int // detail rows written
	total       int // best-known sub-region total
	confidences []float64
}

// Run executes the full analysis for one job, emitting events to the
// sink as it goes. Events for a sub-region are always emitted in the
// order {processing_detection, ai_analysis_step*, progress} and the
// final {summary_progress, summary_complete|error} pair immediately
// precedes {complete}.
func (o *Orchestrator) Run(ctx context.Context, job Job, sink Sink) (err error) {
	r := &run{o: o, job: job, sink: sink, sinkOpen: true}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[%s] run panicked: %v", job.ID, rec)
			r.emit(events.Error{Message: "Analysis failed unexpectedly", Err: fmt.Sprint(rec)})
			err = fmt.Errorf("analysis run panicked: %v", rec)
		}
	}()

	log.Printf("[%s] starting analysis run", job.ID)
	r.emit(events.Start{Message: "Analysis started", AnalysisID: job.ID})

	src, imageData, err := r.loadSource(ctx)
	if err != nil {
		log.Printf("[%s] source image unavailable: %v", job.ID, err)
		r.emit(events.Error{Message: "Could not load the source image", Err: err.Error()})
		return err
	}

	detections, detErr := r.detect(ctx, imageData)
	if detErr != nil {
		r.fallbackWholeImage(ctx, src, detErr)
	} else {
		accepted := r.filter(detections)
		r.announceDetections(accepted)
		r.total = len(accepted)
		for i := range accepted {
			r.processRegion(ctx, src, accepted[i])
			if !r.sinkOpen {
				break
			}
		}
	}

	if !r.sinkOpen {
		log.Printf("[%s] consumer gone, skipping aggregate", job.ID)
		return ErrConsumerGone
	}

	r.summarize(ctx)

	if !r.sinkOpen {
		return ErrConsumerGone
	}
	r.emit(events.Complete{
		Message:      "Analysis complete",
		AnalysisID:   job.ID,
		TotalDetails: r.persisted,
	})
	log.Printf("[%s] run complete: %d details persisted", job.ID, r.persisted)
	return nil
}

// emit forwards one event; a sink failure closes the stream for the
// rest of the run
func (r *run) emit(ev events.Event) {
	if !r.sinkOpen {
		return
	}
	if err := r.sink(ev); err != nil {
		log.Printf("[%s] event sink closed: %v", r.job.ID, err)
		r.sinkOpen = false
	}
}

// loadSource fetches and decodes the job's source image
func (r *run) loadSource(ctx context.Context) (image.Image, []byte, error) {
	fctx, cancel := context.WithTimeout(ctx, r.o.config.PersistTimeout)
	defer cancel()

	data, err := r.o.deps.Artifacts.Get(fctx, r.job.ImageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch source image: %w", err)
	}

	img, err := r.o.processor.DecodeBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode source image: %w", err)
	}
	return img, data, nil
}

// detect runs the region detector against the source image
func (r *run) detect(ctx context.Context, imageData []byte) ([]types.Detection, error) {
	r.emit(events.YoloAnalysis{Message: "Running object detection"})

	dctx, cancel := context.WithTimeout(ctx, r.o.config.DetectTimeout)
	defer cancel()
	return r.o.deps.Detector.Detect(dctx, imageData)
}

// filter keeps detections at or above the confidence threshold with a
// processable box, preserving detector order
func (r *run) filter(detections []types.Detection) []types.Detection {
	accepted := make([]types.Detection, 0, len(detections))
	for _, det := range detections {
		if det.Confidence < r.o.config.ConfidenceThreshold {
			continue
		}
		if !det.Box.Valid() {
			log.Printf("[%s] dropping %s detection with invalid box", r.job.ID, det.Label)
			continue
		}
		accepted = append(accepted, det)
	}
	return accepted
}

func (r *run) announceDetections(accepted []types.Detection) {
	labels := make([]string, 0, len(accepted))
	for _, det := range accepted {
		labels = append(labels, det.Label)
	}
	r.emit(events.DetectionsFound{
		Message: fmt.Sprintf("Found %d region(s) to analyze", len(accepted)),
		Data: events.DetectionsFoundData{
			DetectionCount: len(accepted),
			DetectionTypes: labels,
		},
	})
}

// processRegion crops one accepted detection and routes it through the
// person or pass-through branch
func (r *run) processRegion(ctx context.Context, src image.Image, det types.Detection) {
	crop, err := r.o.cropper.Crop(src, det.Box)
	if err != nil {
		log.Printf("[%s] crop failed for %s: %v", r.job.ID, det.Label, err)
		r.emit(events.Error{Message: fmt.Sprintf("Failed to crop %s region", det.Label), Err: err.Error()})
		if r.total > 0 {
			r.total--
		}
		return
	}

	if det.Label != r.o.config.PersonLabel {
		sub := types.SubRegion{Image: crop.Image, Coords: crop.Coords, Label: det.Label}
		r.processSubRegion(ctx, det.Confidence, sub)
		return
	}

	croppedBox := types.Box{
		X1: float64(crop.Coords.X),
		Y1: float64(crop.Coords.Y),
		X2: float64(crop.Coords.X + crop.Coords.Width),
		Y2: float64(crop.Coords.Y + crop.Coords.Height),
	}

	sctx, cancel := context.WithTimeout(ctx, r.o.config.SegmentTimeout)
	subRegions := r.o.deps.Segmenter.Segment(sctx, crop.Image, croppedBox)
	cancel()

	// Segmentation can reveal more sub-regions than the single slot
	// this detection was counted for
	r.total += len(subRegions) - 1

	for _, sub := range subRegions {
		r.processSubRegion(ctx, det.Confidence, sub)
		if !r.sinkOpen {
			return
		}
	}
}

// fallbackWholeImage handles a detector failure by analyzing the entire
// source image as one synthetic region, skipping segmentation
func (r *run) fallbackWholeImage(ctx context.Context, src image.Image, cause error) {
	log.Printf("[%s] detection failed: %v", r.job.ID, cause)
	r.emit(events.YoloError{
		Message: "Object detection failed, falling back to whole-image analysis",
		Err:     cause.Error(),
	})
	r.emit(events.FallbackAnalysis{Message: "Analyzing the whole image as a single region"})

	whole := r.o.cropper.WholeImage(src)
	r.total = 1
	r.processSubRegion(ctx, 0, types.SubRegion{
		Image:    whole.Image,
		Coords:   whole.Coords,
		Label:    "full_image",
		Fallback: true,
	})
}

// processSubRegion analyzes one sub-region, persists its crop and row,
// and emits the per-sub-region event triplet. Failures are isolated:
// they emit an error event and leave the rest of the run untouched.
func (r *run) processSubRegion(ctx context.Context, parentConfidence float64, sub types.SubRegion) {
	r.processed++
	label := sub.Label
	if label == "" {
		label = "region"
	}

	r.emit(events.ProcessingDetection{
		Message: fmt.Sprintf("Processing %s (%d/%d)", label, r.processed, r.total),
		Data: events.ProcessingDetectionData{
			DetectionType: label,
			Confidence:    parentConfidence,
			Progress:      r.processed,
			Total:         r.total,
		},
	})

	segmentInfo := &events.SegmentInfo{
		Label:        label,
		SegmentIndex: sub.SegmentIndex,
		Fallback:     sub.Fallback,
	}

	actx, cancel := context.WithTimeout(ctx, r.o.config.AnalyzeTimeout)
	result := r.o.deps.Analyzer.Analyze(actx, sub.Image, func(step, message string) {
		r.emit(events.AIAnalysisStep{Step: step, Message: message, SegmentInfo: segmentInfo})
	})
	cancel()

	detailID := uuid.NewString()

	imageData, err := r.o.processor.EncodeJPEG(sub.Image)
	if err != nil {
		log.Printf("[%s] encode failed for %s: %v", r.job.ID, label, err)
		r.emit(events.Error{Message: fmt.Sprintf("Failed to encode %s sub-region", label), Err: err.Error()})
		return
	}

	key := fmt.Sprintf("analyses/%s/details/%s.jpg", r.job.ID, detailID)
	pctx, cancel := context.WithTimeout(ctx, r.o.config.PersistTimeout)
	url, err := r.o.deps.Artifacts.Put(pctx, key, imageData)
	cancel()
	if err != nil {
		log.Printf("[%s] image upload failed for %s: %v", r.job.ID, label, err)
		r.emit(events.Error{Message: fmt.Sprintf("Failed to store image for %s", label), Err: err.Error()})
		return
	}

	detail := Detail{
		ID:           detailID,
		JobID:        r.job.ID,
		UserID:       r.job.UserID,
		ImageURL:     url,
		Label:        label,
		Description:  description(result),
		Confidence:   result.Confidence,
		SegmentIndex: sub.SegmentIndex,
		Coordinates:  sub.Coords,
		Fallback:     sub.Fallback,
		Result:       result,
	}

	ictx, cancel := context.WithTimeout(ctx, r.o.config.PersistTimeout)
	err = r.o.deps.Details.InsertDetail(ictx, detail)
	cancel()
	if err != nil {
		log.Printf("[%s] detail insert failed for %s: %v", r.job.ID, label, err)
		r.emit(events.Error{Message: fmt.Sprintf("Failed to record result for %s", label), Err: err.Error()})
		return
	}

	r.persisted++
	r.confidences = append(r.confidences, result.Confidence)
	r.emit(events.Progress{
		Step:  r.processed,
		Total: r.total,
		Detail: events.ProgressDetail{
			ID:                   detailID,
			DetailType:           label,
			Description:          detail.Description,
			Confidence:           result.Confidence,
			SegmentIndex:         sub.SegmentIndex,
			Coordinates:          sub.Coords,
			ManipulationDetected: result.Authenticity.Counterfeit(),
		},
	})
}

// description picks the user-facing text for a detail: the translated
// assessment when translation succeeded, the original otherwise
func description(result types.SegmentResult) string {
	if result.Translation.Text != "" && result.Translation.Language != "" {
		return result.Translation.Text
	}
	return result.Authenticity.OverallAssessment
}
