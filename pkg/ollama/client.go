package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// Client implements client.LLMClient on top of the Ollama API.
type Client struct {
	client *api.Client
}

// NewClient creates a new Ollama client. The URL may include a path such as
// /api/chat; only scheme and host are used.
func NewClient(ollamaURL string) (*Client, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	// Create client with the specified URL, ignoring environment
	return &Client{client: api.NewClient(baseURL, http.DefaultClient)}, nil
}

// Complete sends one prompt (optionally with images) and returns the full
// response text. No timeout is applied here; the caller owns cancellation.
func (c *Client) Complete(ctx context.Context, model, prompt string, images [][]byte) (string, error) {
	streamFalse := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: []api.Message{userMessage(prompt, images)},
		Stream:   &streamFalse,
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %v", err)
	}
	if responseContent == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return responseContent, nil
}

// Stream sends one prompt and forwards each incremental content chunk to fn
// as Ollama produces it, returning the accumulated text.
func (c *Client) Stream(ctx context.Context, model, prompt string, images [][]byte, fn func(chunk string) error) (string, error) {
	streamTrue := true
	req := &api.ChatRequest{
		Model:    model,
		Messages: []api.Message{userMessage(prompt, images)},
		Stream:   &streamTrue,
	}

	var full string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		chunk := resp.Message.Content
		if chunk == "" {
			return nil
		}
		full += chunk
		if fn != nil {
			return fn(chunk)
		}
		return nil
	})
	if err != nil {
		return full, fmt.Errorf("ollama chat error: %v", err)
	}
	if full == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return full, nil
}

func userMessage(prompt string, images [][]byte) api.Message {
	msg := api.Message{
		Role:    "user",
		Content: prompt,
	}
	for _, img := range images {
		msg.Images = append(msg.Images, api.ImageData(img))
	}
	return msg
}
