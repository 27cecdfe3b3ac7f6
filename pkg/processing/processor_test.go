package processing

import (
	"image"
	"image/color"
	"testing"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with a gradient pattern
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(128)
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	return img
}

func TestNewProcessor(t *testing.T) {
	p := NewProcessor()
	if p == nil {
		t.Fatal("NewProcessor() returned nil")
	}

	if p.config.JPEGQuality != 85 {
		t.Errorf("Expected default quality 85, got %d", p.config.JPEGQuality)
	}
}

func TestNewProcessorWithConfig(t *testing.T) {
	cfg := Config{
		JPEGQuality:  95,
		MinImageSize: 200,
	}

	p := NewProcessorWithConfig(cfg)
	if p.config.JPEGQuality != 95 {
		t.Errorf("Expected quality 95, got %d", p.config.JPEGQuality)
	}

	if p.config.MinImageSize != 200 {
		t.Errorf("Expected min size 200, got %d", p.config.MinImageSize)
	}
}

func TestInfo(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(400, 300)

	info := p.Info(img)

	if info.Width != 400 {
		t.Errorf("Expected width 400, got %d", info.Width)
	}

	if info.Height != 300 {
		t.Errorf("Expected height 300, got %d", info.Height)
	}

	expectedRatio := float64(400) / float64(300)
	if info.AspectRatio != expectedRatio {
		t.Errorf("Expected aspect ratio %f, got %f", expectedRatio, info.AspectRatio)
	}

	if info.Area != 120000 {
		t.Errorf("Expected area 120000, got %d", info.Area)
	}
}

func TestValidateImage(t *testing.T) {
	p := NewProcessor()

	// Valid image
	validImg := createTestImage(200, 200)
	if err := p.ValidateImage(validImg); err != nil {
		t.Errorf("Valid image should pass validation: %v", err)
	}

	// Invalid image (too small)
	invalidImg := createTestImage(50, 50)
	if err := p.ValidateImage(invalidImg); err == nil {
		t.Error("Small image should fail validation")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(320, 240)

	data, err := p.EncodeJPEG(img)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("EncodeJPEG returned empty data")
	}

	decoded, err := p.DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 240 {
		t.Errorf("Expected decoded size 320x240, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestDecodeBytesInvalid(t *testing.T) {
	p := NewProcessor()

	if _, err := p.DecodeBytes([]byte("not an image")); err == nil {
		t.Error("DecodeBytes should fail on garbage input")
	}
}

func TestPrepareForModelResizes(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(2000, 1000)

	data, err := p.PrepareForModel(img, "jpg", 1024)
	if err != nil {
		t.Fatalf("PrepareForModel failed: %v", err)
	}

	decoded, err := p.DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 1024 {
		t.Errorf("Expected width 1024 after resize, got %d", bounds.Dx())
	}
	if bounds.Dy() >= 1000 {
		t.Errorf("Expected height to shrink proportionally, got %d", bounds.Dy())
	}
}

func TestPrepareForModelKeepsSmallImages(t *testing.T) {
	p := NewProcessor()
	img := createTestImage(300, 200)

	data, err := p.PrepareForModel(img, "png", 1024)
	if err != nil {
		t.Fatalf("PrepareForModel failed: %v", err)
	}

	decoded, err := p.DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 300 || bounds.Dy() != 200 {
		t.Errorf("Expected 300x200 unchanged, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func BenchmarkEncodeJPEG(b *testing.B) {
	p := NewProcessor()
	img := createTestImage(1920, 1080)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.EncodeJPEG(img); err != nil {
			b.Fatal(err)
		}
	}
}
