package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/veridex/authenticity-analyzer/pkg/events"
	"github.com/veridex/authenticity-analyzer/pkg/processing"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func encodeTestImage(t *testing.T, img image.Image) []byte {
	t.Helper()
	data, err := processing.NewProcessor().EncodeJPEG(img)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	return data
}

type fakeDetector struct {
	detections []types.Detection
	err        error
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) ([]types.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detections, nil
}

type fakeSegmenter struct {
	subs   []types.SubRegion
	gotBox types.Box
	calls  int
}

func (f *fakeSegmenter) Segment(ctx context.Context, crop image.Image, originalBox types.Box) []types.SubRegion {
	f.calls++
	f.gotBox = originalBox
	out := make([]types.SubRegion, len(f.subs))
	copy(out, f.subs)
	for i := range out {
		out[i].Image = crop
	}
	return out
}

type fakeAnalyzer struct {
	confidences []float64
	steps       []string
	calls       int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, img image.Image, onStep func(step, message string)) types.SegmentResult {
	for _, s := range f.steps {
		onStep(s, "working")
	}
	conf := 0.5
	if f.calls < len(f.confidences) {
		conf = f.confidences[f.calls]
	}
	f.calls++
	verdict := types.VerdictAuthentic
	if conf < 0.5 {
		verdict = types.VerdictCounterfeit
	}
	return types.SegmentResult{
		Brand:        types.BrandResult{Name: "TestBrand", Confidence: conf},
		Authenticity: types.AuthenticityResult{Probability: conf, Verdict: verdict, OverallAssessment: "stitching and hardware look consistent"},
		Translation:  types.TranslationResult{Text: "translated assessment", Language: "ko"},
		Confidence:   conf,
	}
}

type fakeArtifacts struct {
	source  []byte
	getErr  error
	putErrs int
	puts    []string
}

func (f *fakeArtifacts) Get(ctx context.Context, ref string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.source, nil
}

func (f *fakeArtifacts) Put(ctx context.Context, key string, data []byte) (string, error) {
	if f.putErrs > 0 {
		f.putErrs--
		return "", errors.New("storage unavailable")
	}
	f.puts = append(f.puts, key)
	return "https://cdn.test/" + key, nil
}

type aggregateRecord struct {
	confidence float64
	result     string
	summary    string
}

type fakeJobs struct {
	saved *aggregateRecord
	err   error
}

func (f *fakeJobs) SaveAggregate(ctx context.Context, jobID string, confidence float64, result, summary string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = &aggregateRecord{confidence: confidence, result: result, summary: summary}
	return nil
}

type fakeDetails struct {
	rows []Detail
	err  error
}

func (f *fakeDetails) InsertDetail(ctx context.Context, detail Detail) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, detail)
	return nil
}

// eventLog collects emitted events and can simulate a consumer that
// disconnects at the first event of a given type.
type eventLog struct {
	events []events.Event
	failAt string
}

func (l *eventLog) sink(ev events.Event) error {
	if l.failAt != "" && ev.EventType() == l.failAt {
		return errors.New("client disconnected")
	}
	l.events = append(l.events, ev)
	return nil
}

func (l *eventLog) typeSequence() []string {
	seq := make([]string, len(l.events))
	for i, ev := range l.events {
		seq[i] = ev.EventType()
	}
	return seq
}

func (l *eventLog) first(eventType string) events.Event {
	for _, ev := range l.events {
		if ev.EventType() == eventType {
			return ev
		}
	}
	return nil
}

func (l *eventLog) count(eventType string) int {
	n := 0
	for _, ev := range l.events {
		if ev.EventType() == eventType {
			n++
		}
	}
	return n
}

func assertSequence(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("event sequence length = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}

func testJob() Job {
	return Job{ID: "job-1", UserID: "user-1", ImageURL: "uploads/job-1.jpg"}
}

func TestRunPersonAndBag(t *testing.T) {
	src := createTestImage(400, 300)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 20, Y1: 10, X2: 120, Y2: 210}, Label: "person", Confidence: 0.95},
		{Box: types.Box{X1: 200, Y1: 40, X2: 360, Y2: 200}, Label: "bag", Confidence: 0.80},
	}}
	segmenter := &fakeSegmenter{subs: []types.SubRegion{
		{Coords: types.Coordinates{X: 25, Y: 15, Width: 50, Height: 80}, LabelID: 1, Label: "upper_body", SegmentIndex: 0},
		{Coords: types.Coordinates{X: 25, Y: 100, Width: 50, Height: 100}, LabelID: 2, Label: "lower_body", SegmentIndex: 1},
	}}
	analyzer := &fakeAnalyzer{
		confidences: []float64{0.90, 0.85, 0.95},
		steps:       []string{"brand_identification", "authenticity_analysis"},
	}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}
	jobs := &fakeJobs{}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: segmenter, Analyzer: analyzer, Artifacts: artifacts, Jobs: jobs, Details: details})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	perSub := []string{events.TypeProcessingDetection, events.TypeAIAnalysisStep, events.TypeAIAnalysisStep, events.TypeProgress}
	want := []string{events.TypeStart, events.TypeYoloAnalysis, events.TypeDetectionsFound}
	for i := 0; i < 3; i++ {
		want = append(want, perSub...)
	}
	want = append(want, events.TypeSummaryProgress, events.TypeSummaryComplete, events.TypeComplete)
	assertSequence(t, logged.typeSequence(), want)

	found := logged.first(events.TypeDetectionsFound).(events.DetectionsFound)
	if found.Data.DetectionCount != 2 {
		t.Errorf("detection count = %d, want 2", found.Data.DetectionCount)
	}
	if len(found.Data.DetectionTypes) != 2 || found.Data.DetectionTypes[0] != "person" || found.Data.DetectionTypes[1] != "bag" {
		t.Errorf("detection types = %v, want [person bag]", found.Data.DetectionTypes)
	}

	var processed []events.ProcessingDetection
	var progress []events.Progress
	for _, ev := range logged.events {
		switch e := ev.(type) {
		case events.ProcessingDetection:
			processed = append(processed, e)
		case events.Progress:
			progress = append(progress, e)
		}
	}
	wantLabels := []string{"upper_body", "lower_body", "bag"}
	for i, pd := range processed {
		if pd.Data.DetectionType != wantLabels[i] {
			t.Errorf("processing %d type = %q, want %q", i, pd.Data.DetectionType, wantLabels[i])
		}
		if pd.Data.Progress != i+1 || pd.Data.Total != 3 {
			t.Errorf("processing %d counter = %d/%d, want %d/3", i, pd.Data.Progress, pd.Data.Total, i+1)
		}
	}
	for i, pg := range progress {
		if pg.Step != i+1 || pg.Total != 3 {
			t.Errorf("progress %d counter = %d/%d, want %d/3", i, pg.Step, pg.Total, i+1)
		}
	}

	// The plain object branch reports the detection box unchanged
	bag := progress[2].Detail
	wantCoords := types.Coordinates{X: 200, Y: 40, Width: 160, Height: 160}
	if bag.Coordinates != wantCoords {
		t.Errorf("bag coordinates = %+v, want %+v", bag.Coordinates, wantCoords)
	}
	if bag.DetailType != "bag" {
		t.Errorf("bag detail type = %q", bag.DetailType)
	}

	// The segmenter sees the clamped person crop in source coordinates
	wantBox := types.Box{X1: 20, Y1: 10, X2: 120, Y2: 210}
	if segmenter.gotBox != wantBox {
		t.Errorf("segmenter box = %+v, want %+v", segmenter.gotBox, wantBox)
	}

	step := logged.first(events.TypeAIAnalysisStep).(events.AIAnalysisStep)
	if step.SegmentInfo == nil || step.SegmentInfo.Label != "upper_body" || step.SegmentInfo.SegmentIndex != 0 {
		t.Errorf("ai step segment info = %+v", step.SegmentInfo)
	}

	summary := logged.first(events.TypeSummaryComplete).(events.SummaryComplete)
	wantMean := (0.90 + 0.85 + 0.95) / 3
	if math.Abs(summary.Summary.Confidence-wantMean) > 1e-9 {
		t.Errorf("summary confidence = %f, want %f", summary.Summary.Confidence, wantMean)
	}
	if summary.Summary.OverallResult != ResultAuthentic {
		t.Errorf("summary result = %q, want %q", summary.Summary.OverallResult, ResultAuthentic)
	}

	complete := logged.first(events.TypeComplete).(events.Complete)
	if complete.TotalDetails != 3 {
		t.Errorf("total details = %d, want 3", complete.TotalDetails)
	}
	if complete.AnalysisID != "job-1" {
		t.Errorf("analysis id = %q", complete.AnalysisID)
	}

	if jobs.saved == nil {
		t.Fatal("aggregate was not written")
	}
	if jobs.saved.result != ResultAuthentic {
		t.Errorf("saved result = %q", jobs.saved.result)
	}
	if len(details.rows) != 3 {
		t.Fatalf("detail rows = %d, want 3", len(details.rows))
	}
	for _, row := range details.rows {
		if row.JobID != "job-1" || row.UserID != "user-1" {
			t.Errorf("detail row ownership = %s/%s", row.JobID, row.UserID)
		}
		if !strings.HasPrefix(row.ImageURL, "https://cdn.test/analyses/job-1/details/") {
			t.Errorf("detail image url = %q", row.ImageURL)
		}
		if row.Description != "translated assessment" {
			t.Errorf("detail description = %q", row.Description)
		}
	}
}

func TestRunConfidenceThreshold(t *testing.T) {
	src := createTestImage(200, 200)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 10, Y1: 10, X2: 90, Y2: 90}, Label: "bag", Confidence: 0.62},
		{Box: types.Box{X1: 100, Y1: 100, X2: 180, Y2: 180}, Label: "shoe", Confidence: 0.61},
	}}
	analyzer := &fakeAnalyzer{confidences: []float64{0.9}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}
	jobs := &fakeJobs{}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: &fakeSegmenter{}, Analyzer: analyzer, Artifacts: artifacts, Jobs: jobs, Details: details})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	found := logged.first(events.TypeDetectionsFound).(events.DetectionsFound)
	if found.Data.DetectionCount != 1 {
		t.Errorf("detection count = %d, want 1 (0.61 is below the cutoff)", found.Data.DetectionCount)
	}
	if got := logged.count(events.TypeProgress); got != 1 {
		t.Errorf("progress events = %d, want 1", got)
	}
}

func TestRunNoDetections(t *testing.T) {
	src := createTestImage(200, 200)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 10, Y1: 10, X2: 90, Y2: 90}, Label: "bag", Confidence: 0.30},
	}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}
	jobs := &fakeJobs{}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: &fakeSegmenter{}, Analyzer: &fakeAnalyzer{}, Artifacts: artifacts, Jobs: jobs, Details: details})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	assertSequence(t, logged.typeSequence(), []string{
		events.TypeStart, events.TypeYoloAnalysis, events.TypeDetectionsFound,
		events.TypeSummaryProgress, events.TypeSummaryComplete, events.TypeComplete,
	})

	summary := logged.first(events.TypeSummaryComplete).(events.SummaryComplete)
	if summary.Summary.Confidence != 0 {
		t.Errorf("zero-detail confidence = %f, want 0", summary.Summary.Confidence)
	}
	if summary.Summary.OverallResult != ResultLikelyFake {
		t.Errorf("zero-detail result = %q, want %q", summary.Summary.OverallResult, ResultLikelyFake)
	}
	if summary.Summary.Summary != "No analyzable regions were found." {
		t.Errorf("zero-detail summary = %q", summary.Summary.Summary)
	}

	complete := logged.first(events.TypeComplete).(events.Complete)
	if complete.TotalDetails != 0 {
		t.Errorf("total details = %d, want 0", complete.TotalDetails)
	}
	if len(details.rows) != 0 {
		t.Errorf("detail rows = %d, want 0", len(details.rows))
	}
}

func TestRunDetectorFailureFallsBack(t *testing.T) {
	src := createTestImage(300, 200)
	detector := &fakeDetector{err: errors.New("detector unreachable")}
	analyzer := &fakeAnalyzer{confidences: []float64{0.4}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}
	jobs := &fakeJobs{}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: &fakeSegmenter{}, Analyzer: analyzer, Artifacts: artifacts, Jobs: jobs, Details: details})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	assertSequence(t, logged.typeSequence(), []string{
		events.TypeStart, events.TypeYoloAnalysis,
		events.TypeYoloError, events.TypeFallbackAnalysis,
		events.TypeProcessingDetection, events.TypeProgress,
		events.TypeSummaryProgress, events.TypeSummaryComplete, events.TypeComplete,
	})

	pd := logged.first(events.TypeProcessingDetection).(events.ProcessingDetection)
	if pd.Data.DetectionType != "full_image" {
		t.Errorf("fallback detection type = %q, want full_image", pd.Data.DetectionType)
	}
	if pd.Data.Total != 1 || pd.Data.Progress != 1 {
		t.Errorf("fallback counter = %d/%d, want 1/1", pd.Data.Progress, pd.Data.Total)
	}
	if pd.Data.Confidence != 0 {
		t.Errorf("fallback confidence = %f, want 0", pd.Data.Confidence)
	}

	pg := logged.first(events.TypeProgress).(events.Progress)
	wantCoords := types.Coordinates{X: 0, Y: 0, Width: 300, Height: 200}
	if pg.Detail.Coordinates != wantCoords {
		t.Errorf("fallback coordinates = %+v, want %+v", pg.Detail.Coordinates, wantCoords)
	}

	if len(details.rows) != 1 {
		t.Fatalf("detail rows = %d, want 1", len(details.rows))
	}
	if !details.rows[0].Fallback {
		t.Error("fallback flag not set on the persisted detail")
	}
	if jobs.saved == nil {
		t.Fatal("aggregate was not written")
	}
	if jobs.saved.result != ResultLikelyFake {
		t.Errorf("saved result = %q, want %q", jobs.saved.result, ResultLikelyFake)
	}
}

func TestRunUploadFailureIsIsolated(t *testing.T) {
	src := createTestImage(400, 300)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 10, Y1: 10, X2: 110, Y2: 110}, Label: "bag", Confidence: 0.9},
		{Box: types.Box{X1: 200, Y1: 100, X2: 300, Y2: 200}, Label: "watch", Confidence: 0.9},
	}}
	analyzer := &fakeAnalyzer{confidences: []float64{0.9, 0.6}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src), putErrs: 1}
	jobs := &fakeJobs{}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: &fakeSegmenter{}, Analyzer: analyzer, Artifacts: artifacts, Jobs: jobs, Details: details})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := logged.count(events.TypeError); got != 1 {
		t.Fatalf("error events = %d, want 1", got)
	}
	if got := logged.count(events.TypeProgress); got != 1 {
		t.Fatalf("progress events = %d, want 1 (failed sub-region is skipped)", got)
	}
	if got := logged.count(events.TypeComplete); got != 1 {
		t.Fatalf("complete events = %d, want 1", got)
	}

	complete := logged.first(events.TypeComplete).(events.Complete)
	if complete.TotalDetails != 1 {
		t.Errorf("total details = %d, want 1", complete.TotalDetails)
	}
	if len(details.rows) != 1 {
		t.Fatalf("detail rows = %d, want 1", len(details.rows))
	}
	if details.rows[0].Label != "watch" {
		t.Errorf("surviving detail = %q, want watch", details.rows[0].Label)
	}

	// The aggregate averages only what was persisted
	if jobs.saved == nil {
		t.Fatal("aggregate was not written")
	}
	if math.Abs(jobs.saved.confidence-0.6) > 1e-9 {
		t.Errorf("aggregate confidence = %f, want 0.6", jobs.saved.confidence)
	}
}

func TestRunAggregateWriteFailureStillCompletes(t *testing.T) {
	src := createTestImage(200, 200)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 10, Y1: 10, X2: 110, Y2: 110}, Label: "bag", Confidence: 0.9},
	}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}
	jobs := &fakeJobs{err: errors.New("database unavailable")}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: &fakeSegmenter{}, Analyzer: &fakeAnalyzer{confidences: []float64{0.9}}, Artifacts: artifacts, Jobs: jobs, Details: details})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	seq := logged.typeSequence()
	last3 := seq[len(seq)-3:]
	want := []string{events.TypeSummaryProgress, events.TypeError, events.TypeComplete}
	assertSequence(t, last3, want)
	if logged.count(events.TypeSummaryComplete) != 0 {
		t.Error("summary_complete emitted despite failed aggregate write")
	}
}

func TestRunConsumerGone(t *testing.T) {
	src := createTestImage(400, 300)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 10, Y1: 10, X2: 110, Y2: 110}, Label: "bag", Confidence: 0.9},
		{Box: types.Box{X1: 200, Y1: 100, X2: 300, Y2: 200}, Label: "watch", Confidence: 0.9},
	}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}
	jobs := &fakeJobs{}
	details := &fakeDetails{}

	o := New(Deps{Detector: detector, Segmenter: &fakeSegmenter{}, Analyzer: &fakeAnalyzer{confidences: []float64{0.9, 0.9}}, Artifacts: artifacts, Jobs: jobs, Details: details})

	// The consumer disconnects at the first progress event, which is the
	// last event of the first sub-region.
	logged := &eventLog{failAt: events.TypeProgress}

	err := o.Run(context.Background(), testJob(), logged.sink)
	if !errors.Is(err, ErrConsumerGone) {
		t.Fatalf("Run error = %v, want ErrConsumerGone", err)
	}

	// The in-flight sub-region was still persisted, the second never ran,
	// and the aggregate was left untouched.
	if len(details.rows) != 1 {
		t.Errorf("detail rows = %d, want 1", len(details.rows))
	}
	if jobs.saved != nil {
		t.Error("aggregate written after the consumer disconnected")
	}
	if logged.count(events.TypeSummaryProgress) != 0 || logged.count(events.TypeComplete) != 0 {
		t.Error("summary events emitted after the consumer disconnected")
	}
}

func TestRunSourceImageMissing(t *testing.T) {
	artifacts := &fakeArtifacts{getErr: errors.New("no such object")}
	jobs := &fakeJobs{}

	o := New(Deps{Detector: &fakeDetector{}, Segmenter: &fakeSegmenter{}, Analyzer: &fakeAnalyzer{}, Artifacts: artifacts, Jobs: jobs, Details: &fakeDetails{}})
	logged := &eventLog{}

	err := o.Run(context.Background(), testJob(), logged.sink)
	if err == nil {
		t.Fatal("expected an error for a missing source image")
	}

	assertSequence(t, logged.typeSequence(), []string{events.TypeStart, events.TypeError})
	if jobs.saved != nil {
		t.Error("aggregate written for a run that never analyzed anything")
	}
}

func TestRunSegmentationExpandsTotal(t *testing.T) {
	src := createTestImage(400, 300)
	detector := &fakeDetector{detections: []types.Detection{
		{Box: types.Box{X1: 20, Y1: 10, X2: 120, Y2: 210}, Label: "person", Confidence: 0.95},
	}}
	segmenter := &fakeSegmenter{subs: []types.SubRegion{
		{Coords: types.Coordinates{X: 25, Y: 15, Width: 50, Height: 80}, Label: "head", SegmentIndex: 0},
		{Coords: types.Coordinates{X: 25, Y: 95, Width: 50, Height: 50}, Label: "upper_body", SegmentIndex: 1},
		{Coords: types.Coordinates{X: 25, Y: 145, Width: 50, Height: 60}, Label: "lower_body", SegmentIndex: 2},
	}}
	artifacts := &fakeArtifacts{source: encodeTestImage(t, src)}

	o := New(Deps{Detector: detector, Segmenter: segmenter, Analyzer: &fakeAnalyzer{confidences: []float64{0.9, 0.9, 0.9}}, Artifacts: artifacts, Jobs: &fakeJobs{}, Details: &fakeDetails{}})
	logged := &eventLog{}

	if err := o.Run(context.Background(), testJob(), logged.sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// One accepted detection expands to three sub-regions; counters
	// report the corrected total.
	var progress []events.Progress
	for _, ev := range logged.events {
		if pg, ok := ev.(events.Progress); ok {
			progress = append(progress, pg)
		}
	}
	if len(progress) != 3 {
		t.Fatalf("progress events = %d, want 3", len(progress))
	}
	for i, pg := range progress {
		if pg.Step != i+1 || pg.Total != 3 {
			t.Errorf("progress %d counter = %d/%d, want %d/3", i, pg.Step, pg.Total, i+1)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{1.0, ResultAuthentic},
		{0.85, ResultAuthentic},
		{0.8499999, ResultSuspicious},
		{0.70, ResultSuspicious},
		{0.6999999, ResultLikelyFake},
		{0.0, ResultLikelyFake},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.7f", tt.confidence), func(t *testing.T) {
			if got := Classify(tt.confidence); got != tt.want {
				t.Errorf("Classify(%f) = %q, want %q", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ConfidenceThreshold != 0.62 {
		t.Errorf("threshold = %f, want 0.62", cfg.ConfidenceThreshold)
	}
	if cfg.PersonLabel != "person" {
		t.Errorf("person label = %q", cfg.PersonLabel)
	}
	if cfg.AnalyzeTimeout <= cfg.DetectTimeout {
		t.Error("analysis deadline should dominate the detection deadline")
	}
}
