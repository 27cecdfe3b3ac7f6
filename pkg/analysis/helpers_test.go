package analysis

import (
	"context"
	"image"
	"image/color"
)

// scriptedLLM is a canned client.LLMClient for tests
type scriptedLLM struct {
	response string
	err      error
	chunks   []string

	lastModel  string
	lastPrompt string
	lastImages int
	calls      int
}

func (s *scriptedLLM) Complete(ctx context.Context, model, prompt string, images [][]byte) (string, error) {
	s.calls++
	s.lastModel = model
	s.lastPrompt = prompt
	s.lastImages = len(images)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *scriptedLLM) Stream(ctx context.Context, model, prompt string, images [][]byte, fn func(chunk string) error) (string, error) {
	s.calls++
	s.lastModel = model
	s.lastPrompt = prompt
	s.lastImages = len(images)
	if s.err != nil {
		return "", s.err
	}
	chunks := s.chunks
	if len(chunks) == 0 {
		chunks = []string{s.response}
	}
	for _, c := range chunks {
		if err := fn(c); err != nil {
			return "", err
		}
	}
	return s.response, nil
}

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}
