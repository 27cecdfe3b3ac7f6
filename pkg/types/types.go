package types

import "image"

// Box is an axis-aligned bounding box in source-image pixel coordinates.
// The detector contract guarantees x1<=x2 and y1<=y2; callers must check
// Valid before cropping because a malformed box yields an empty crop.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Valid reports whether the box has non-negative extent in both axes.
func (b Box) Valid() bool {
	return b.X2 >= b.X1 && b.Y2 >= b.Y1
}

// Width returns the horizontal extent of the box in pixels.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box in pixels.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels, zero for invalid boxes.
func (b Box) Area() float64 {
	if !b.Valid() {
		return 0
	}
	return b.Width() * b.Height()
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.X1+0.5), int(b.Y1+0.5), int(b.X2+0.5), int(b.Y2+0.5))
}

// Keypoint is one pose keypoint reported by the detector for a person box.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Detection is a single detected region: bounding box, class label and
// confidence in [0,1], plus optional pose keypoints for person detections.
type Detection struct {
	Box        Box        `json:"box"`
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Keypoints  []Keypoint `json:"keypoints,omitempty"`
}

// Coordinates locates a sub-region inside the source image as an origin
// plus extent, the shape persisted with each analysis detail.
type Coordinates struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CoordinatesFromBox converts a detector box to detail coordinates.
func CoordinatesFromBox(b Box) Coordinates {
	r := b.Rect()
	return Coordinates{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// SubRegion is the unit actually analyzed: a cropped image payload with its
// placement in the source image. For human segmentation the label identifies
// the clothing/body part and Coverage is the percentage of the parent region
// the part occupies. Fallback marks sub-regions synthesized because
// segmentation failed or the coverage filter removed everything.
type SubRegion struct {
	Image        image.Image `json:"-"`
	Coords       Coordinates `json:"coordinates"`
	LabelID      int         `json:"labelId"`
	Label        string      `json:"label"`
	Coverage     float64     `json:"coverage"`
	SegmentIndex int         `json:"segmentIndex"`
	Fallback     bool        `json:"fallback,omitempty"`
}

// BrandResult is the normalized output of brand identification.
type BrandResult struct {
	Name       string  `json:"name"`
	Product    string  `json:"product,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Authenticity verdicts produced by the scorer for a single sub-region.
const (
	VerdictAuthentic   = "authentic"
	VerdictUncertain   = "uncertain"
	VerdictCounterfeit = "counterfeit"
)

// AuthenticityResult is the normalized output of authenticity scoring.
// Probability is the model's estimate that the item is genuine, in [0,1].
type AuthenticityResult struct {
	Probability       float64  `json:"probability"`
	Verdict           string   `json:"verdict"`
	OverallAssessment string   `json:"overallAssessment"`
	Findings          []string `json:"findings,omitempty"`
}

// Counterfeit reports whether the scorer concluded the item is fake.
func (a AuthenticityResult) Counterfeit() bool {
	return a.Verdict == VerdictCounterfeit
}

// TranslationResult carries a translated assessment text and its language.
type TranslationResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// SegmentResult is the composed per-sub-region analysis: brand, authenticity
// verdict, translated assessment and the combined confidence (the mean of
// brand confidence and authenticity probability).
type SegmentResult struct {
	Brand        BrandResult        `json:"brand"`
	Authenticity AuthenticityResult `json:"authenticity"`
	Translation  TranslationResult  `json:"translation"`
	Confidence   float64            `json:"confidence"`
}
