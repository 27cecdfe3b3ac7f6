package cropper

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// Cropper extracts detection regions from source images
type Cropper struct {
	config Config
}

// Config holds configuration for region cropping
type Config struct {
	// PaddingRatio expands each crop box by this fraction of its
	// width/height on every side before clamping
	PaddingRatio float64
	// MinCropSize rejects crops narrower or shorter than this
	MinCropSize int
}

// New creates a new Cropper with default configuration
func New() *Cropper {
	return &Cropper{
		config: Config{
			PaddingRatio: 0,
			MinCropSize:  1,
		},
	}
}

// NewWithConfig creates a new Cropper with custom configuration
func NewWithConfig(config Config) *Cropper {
	return &Cropper{config: config}
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image  image.Image
	Coords types.Coordinates
}

// Crop extracts the given box from the image. The box is expanded by the
// configured padding and clamped to the image bounds.
func (c *Cropper) Crop(img image.Image, box types.Box) (CropResult, error) {
	if !box.Valid() {
		return CropResult{}, fmt.Errorf("invalid crop box: %+v", box)
	}

	if c.config.PaddingRatio > 0 {
		box = expand(box, c.config.PaddingRatio)
	}

	bounds := img.Bounds()
	x1 := int(math.Max(box.X1, float64(bounds.Min.X)))
	y1 := int(math.Max(box.Y1, float64(bounds.Min.Y)))
	x2 := int(math.Min(box.X2, float64(bounds.Max.X)) + 0.5)
	y2 := int(math.Min(box.Y2, float64(bounds.Max.Y)) + 0.5)

	rect := image.Rect(x1, y1, x2, y2).Intersect(bounds)
	if rect.Empty() {
		return CropResult{}, fmt.Errorf("crop box outside image bounds: %+v", box)
	}

	minSide := c.config.MinCropSize
	if minSide < 1 {
		minSide = 1
	}
	if rect.Dx() < minSide || rect.Dy() < minSide {
		return CropResult{}, fmt.Errorf("crop too small: %dx%d (minimum: %d)", rect.Dx(), rect.Dy(), minSide)
	}

	return CropResult{
		Image: imaging.Crop(img, rect),
		Coords: types.Coordinates{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
		},
	}, nil
}

// CropRect extracts a pixel rectangle from the image, clamped to bounds
func (c *Cropper) CropRect(img image.Image, coords types.Coordinates) (CropResult, error) {
	box := types.Box{
		X1: float64(coords.X),
		Y1: float64(coords.Y),
		X2: float64(coords.X + coords.Width),
		Y2: float64(coords.Y + coords.Height),
	}
	return c.Crop(img, box)
}

// WholeImage wraps the full image as a crop result
func (c *Cropper) WholeImage(img image.Image) CropResult {
	bounds := img.Bounds()
	return CropResult{
		Image: img,
		Coords: types.Coordinates{
			X:      bounds.Min.X,
			Y:      bounds.Min.Y,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		},
	}
}

func expand(box types.Box, ratio float64) types.Box {
	padX := box.Width() * ratio
	padY := box.Height() * ratio
	return types.Box{
		X1: box.X1 - padX,
		Y1: box.Y1 - padY,
		X2: box.X2 + padX,
		Y2: box.Y2 + padY,
	}
}
