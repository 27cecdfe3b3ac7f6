package segmenter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/veridex/authenticity-analyzer/pkg/cropper"
	"github.com/veridex/authenticity-analyzer/pkg/fault"
	"github.com/veridex/authenticity-analyzer/pkg/processing"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

const stage = "segmentation"

// Config holds configuration for sub-region filtering
type Config struct {
	// MinCoverage drops sub-regions covering less than this fraction
	// of the parent crop area
	MinCoverage float64
}

// Client calls an external human part segmentation service and
// normalizes its output into coverage-filtered sub-regions.
//
// Segment never returns an empty slice: when the service fails or the
// coverage filter removes everything, the whole input crop is returned
// as a single fallback sub-region.
type Client struct {
	baseURL    string
	httpClient *http.Client
	config     Config
	processor  *processing.Processor
	cropper    *cropper.Cropper
}

// NewClient creates a segmentation client with default configuration
func NewClient(baseURL string) *Client {
	return NewClientWithConfig(baseURL, Config{MinCoverage: 0.01})
}

// NewClientWithConfig creates a segmentation client with custom configuration
func NewClientWithConfig(baseURL string, config Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		config:     config,
		processor:  processing.NewProcessor(),
		cropper:    cropper.New(),
	}
}

// wirePart is the service response shape for one segmented part.
// Boxes are relative to the submitted crop; coverage is the fraction
// of crop pixels the part mask occupies.
type wirePart struct {
	LabelID  int       `json:"label_id"`
	Label    string    `json:"label"`
	Box      []float64 `json:"box"`
	Coverage float64   `json:"coverage"`
}

type wireResponse struct {
	Parts []wirePart `json:"parts"`
}

// Segment submits a cropped human region for part segmentation and
// returns at least one sub-region. originalBox is the source-image box
// the crop was taken from; sub-region coordinates are translated back
// into the source frame.
func (c *Client) Segment(ctx context.Context, crop image.Image, originalBox types.Box) []types.SubRegion {
	parts, err := c.call(ctx, crop)
	if err != nil {
		log.Printf("segmenter: falling back to whole crop: %v", err)
		return []types.SubRegion{c.fallback(crop, originalBox)}
	}

	subRegions := c.filter(crop, originalBox, parts)
	if len(subRegions) == 0 {
		return []types.SubRegion{c.fallback(crop, originalBox)}
	}
	return subRegions
}

func (c *Client) call(ctx context.Context, crop image.Image) ([]wirePart, error) {
	imageData, err := c.processor.EncodeJPEG(crop)
	if err != nil {
		return nil, fault.New(fault.Unexpected, stage, fmt.Errorf("encode crop: %w", err))
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "crop.jpg")
	if err != nil {
		return nil, fault.New(fault.Unexpected, stage, fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fault.New(fault.Unexpected, stage, fmt.Errorf("copy image data: %w", err))
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/segment", body)
	if err != nil {
		return nil, fault.New(fault.Unexpected, stage, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.Transport, stage, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.Transportf(stage, "segmentation service returned status %d", resp.StatusCode)
	}

	var result wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fault.New(fault.Transport, stage, fmt.Errorf("decode response: %w", err))
	}

	return result.Parts, nil
}

// filter applies the coverage threshold and crops each surviving part
// out of the parent image
func (c *Client) filter(crop image.Image, originalBox types.Box, parts []wirePart) []types.SubRegion {
	offsetX := int(originalBox.X1)
	offsetY := int(originalBox.Y1)

	var subRegions []types.SubRegion
	for _, p := range parts {
		if len(p.Box) != 4 {
			continue
		}
		coverage := p.Coverage
		if coverage < c.config.MinCoverage {
			continue
		}

		result, err := c.cropper.Crop(crop, types.Box{X1: p.Box[0], Y1: p.Box[1], X2: p.Box[2], Y2: p.Box[3]})
		if err != nil {
			log.Printf("segmenter: skipping part %q: %v", p.Label, err)
			continue
		}

		coords := result.Coords
		coords.X += offsetX
		coords.Y += offsetY

		subRegions = append(subRegions, types.SubRegion{
			Image:        result.Image,
			Coords:       coords,
			LabelID:      p.LabelID,
			Label:        p.Label,
			Coverage:     coverage,
			SegmentIndex: len(subRegions),
		})
	}
	return subRegions
}

// fallback wraps the whole crop as a single sub-region so an accepted
// human detection always yields at least one analyzable sub-region
func (c *Client) fallback(crop image.Image, originalBox types.Box) types.SubRegion {
	bounds := crop.Bounds()
	return types.SubRegion{
		Image: crop,
		Coords: types.Coordinates{
			X:      int(originalBox.X1),
			Y:      int(originalBox.Y1),
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		},
		LabelID:      0,
		Label:        "person",
		Coverage:     1,
		SegmentIndex: 0,
		Fallback:     true,
	}
}

// CheckHealth verifies the segmentation service is reachable
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fault.New(fault.Transport, stage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fault.Transportf(stage, "segmentation service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
