package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

const stage = "detection"

// Client calls an external object and pose detection service over HTTP.
// Timeouts and cancellation are owned by the caller through the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a detection client for the given service base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// wireDetection is the service response shape for a single detection
type wireDetection struct {
	Label      string       `json:"label"`
	Confidence float64      `json:"confidence"`
	Box        []float64    `json:"box"`
	Keypoints  [][3]float64 `json:"keypoints,omitempty"`
}

type wireResponse struct {
	Detections []wireDetection `json:"detections"`
}

// Detect sends the image to the detection service and returns the
// normalized detections. Boxes arrive in source-image pixel coordinates.
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]types.Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fault.New(fault.Unexpected, stage, fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fault.New(fault.Unexpected, stage, fmt.Errorf("copy image data: %w", err))
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", body)
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
		return nil, fault.Transportf(stage, "detection service returned status %d", resp.StatusCode)
	}

	var result wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fault.New(fault.Transport, stage, fmt.Errorf("decode response: %w", err))
	}

	detections := make([]types.Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		if len(d.Box) != 4 {
			continue
		}
		det := types.Detection{
			Box:        types.Box{X1: d.Box[0], Y1: d.Box[1], X2: d.Box[2], Y2: d.Box[3]},
			Label:      d.Label,
			Confidence: d.Confidence,
		}
		for _, kp := range d.Keypoints {
			det.Keypoints = append(det.Keypoints, types.Keypoint{
				X:          kp[0],
				Y:          kp[1],
				Confidence: kp[2],
			})
		}
		detections = append(detections, det)
	}

	return detections, nil
}

// CheckHealth verifies the detection service is reachable
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
		return fault.Transportf(stage, "detection service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
