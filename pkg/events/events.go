// Package events defines the closed set of progress events emitted by an
// analysis run and their server-sent-event wire encoding.
package events

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// Wire discriminator values. Every event JSON object carries exactly one
// of these in its "type" field.
const (
	TypeStart               = "start"
	TypeYoloAnalysis        = "yolo_analysis"
	TypeDetectionsFound     = "detections_found"
	TypeProcessingDetection = "processing_detection"
	TypeAIAnalysisStep      = "ai_analysis_step"
	TypeYoloError           = "yolo_error"
	TypeFallbackAnalysis    = "fallback_analysis"
	TypeProgress            = "progress"
	TypeSummaryProgress     = "summary_progress"
	TypeSummaryComplete     = "summary_complete"
	TypeComplete            = "complete"
	TypeError               = "error"
)

// Event is one entry in the analysis progress stream. The set of
// implementations is closed; Marshal injects the type discriminator so
// a mistagged event cannot be constructed.
type Event interface {
	EventType() string
	isEvent()
}

// Start opens the stream for a run.
type Start struct {
	Message    string `json:"message"`
	AnalysisID string `json:"analysisId"`
}

// YoloAnalysis announces that the detection stage is starting.
type YoloAnalysis struct {
	Message string `json:"message"`
}

// DetectionsFound reports the post-filter detection count.
type DetectionsFound struct {
	Message string              `json:"message"`
	Data    DetectionsFoundData `json:"data"`
}

type DetectionsFoundData struct {
	DetectionCount int      `json:"detectionCount"`
	DetectionTypes []string `json:"detectionTypes"`
}

// ProcessingDetection announces that a sub-region is being processed.
type ProcessingDetection struct {
	Message string                  `json:"message"`
	Data    ProcessingDetectionData `json:"data"`
}

type ProcessingDetectionData struct {
	DetectionType string  `json:"detectionType"`
	Confidence    float64 `json:"confidence"`
	Progress      int     `json:"progress"`
	Total         int     `json:"total"`
}

// AIAnalysisStep reports one sub-step of the per-region analysis. It
// repeats for every streamed assessment chunk.
type AIAnalysisStep struct {
	Step        string         `json:"step"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	SegmentInfo *SegmentInfo   `json:"segmentInfo,omitempty"`
}

// SegmentInfo identifies which sub-region an analysis step refers to.
type SegmentInfo struct {
	Label        string `json:"label"`
	SegmentIndex int    `json:"segmentIndex"`
	Fallback     bool   `json:"fallback,omitempty"`
}

// YoloError reports a detector failure; the run continues in fallback.
type YoloError struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// FallbackAnalysis announces whole-image fallback processing.
type FallbackAnalysis struct {
	Message string `json:"message"`
}

// Progress reports one persisted sub-region result.
type Progress struct {
	Step   int            `json:"step"`
	Total  int            `json:"total"`
	Detail ProgressDetail `json:"detail"`
}

type ProgressDetail struct {
	ID                   string            `json:"id"`
	DetailType           string            `json:"type"`
	Description          string            `json:"description"`
	Confidence           float64           `json:"confidence"`
	SegmentIndex         int               `json:"segmentIndex"`
	Coordinates          types.Coordinates `json:"coordinates"`
	ManipulationDetected bool              `json:"manipulationDetected"`
}

// SummaryProgress announces that aggregation is starting.
type SummaryProgress struct {
	Message string `json:"message"`
}

// SummaryComplete reports the persisted aggregate verdict.
type SummaryComplete struct {
	Message string  `json:"message"`
	Summary Summary `json:"summary"`
}

type Summary struct {
	OverallResult          string  `json:"overallResult"`
	Confidence             float64 `json:"confidence"`
	Summary                string  `json:"summary"`
	AuthenticityAssessment string  `json:"authenticityAssessment"`
}

// Complete terminates a successful stream.
type Complete struct {
	Message      string `json:"message"`
	AnalysisID   string `json:"analysisId"`
	TotalDetails int    `json:"totalDetails"`
}

// Error reports a per-item or terminal failure.
type Error struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

func (Start) EventType() string               { return TypeStart }
func (YoloAnalysis) EventType() string        { return TypeYoloAnalysis }
func (DetectionsFound) EventType() string     { return TypeDetectionsFound }
func (ProcessingDetection) EventType() string { return TypeProcessingDetection }
func (AIAnalysisStep) EventType() string      { return TypeAIAnalysisStep }
func (YoloError) EventType() string           { return TypeYoloError }
func (FallbackAnalysis) EventType() string    { return TypeFallbackAnalysis }
func (Progress) EventType() string            { return TypeProgress }
func (SummaryProgress) EventType() string     { return TypeSummaryProgress }
func (SummaryComplete) EventType() string     { return TypeSummaryComplete }
func (Complete) EventType() string            { return TypeComplete }
func (Error) EventType() string               { return TypeError }

func (Start) isEvent()               {}
func (YoloAnalysis) isEvent()        {}
func (DetectionsFound) isEvent()     {}
func (ProcessingDetection) isEvent() {}
func (AIAnalysisStep) isEvent()      {}
func (YoloError) isEvent()           {}
func (FallbackAnalysis) isEvent()    {}
func (Progress) isEvent()            {}
func (SummaryProgress) isEvent()     {}
func (SummaryComplete) isEvent()     {}
func (Complete) isEvent()            {}
func (Error) isEvent()               {}

// Marshal renders an event as wire JSON with its type discriminator.
func Marshal(ev Event) ([]byte, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(strconv.Quote(ev.EventType()))

	return json.Marshal(fields)
}

// Unmarshal parses wire JSON back into the matching event type.
func Unmarshal(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("event missing type discriminator: %w", err)
	}

	switch head.Type {
	case TypeStart:
		var e Start
		return e, json.Unmarshal(data, &e)
	case TypeYoloAnalysis:
		var e YoloAnalysis
		return e, json.Unmarshal(data, &e)
	case TypeDetectionsFound:
		var e DetectionsFound
		return e, json.Unmarshal(data, &e)
	case TypeProcessingDetection:
		var e ProcessingDetection
		return e, json.Unmarshal(data, &e)
	case TypeAIAnalysisStep:
		var e AIAnalysisStep
		return e, json.Unmarshal(data, &e)
	case TypeYoloError:
		var e YoloError
		return e, json.Unmarshal(data, &e)
	case TypeFallbackAnalysis:
		var e FallbackAnalysis
		return e, json.Unmarshal(data, &e)
	case TypeProgress:
		var e Progress
		return e, json.Unmarshal(data, &e)
	case TypeSummaryProgress:
		var e SummaryProgress
		return e, json.Unmarshal(data, &e)
	case TypeSummaryComplete:
		var e SummaryComplete
		return e, json.Unmarshal(data, &e)
	case TypeComplete:
		var e Complete
		return e, json.Unmarshal(data, &e)
	case TypeError:
		var e Error
		return e, json.Unmarshal(data, &e)
	}
	return nil, fmt.Errorf("unknown event type %q", head.Type)
}
