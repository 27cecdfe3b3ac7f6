package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

// HTTPStore talks to a key-addressed object store over HTTP: GET and
// PUT on baseURL/key. publicURL is the prefix exposed to clients; it
// defaults to baseURL when empty.
type HTTPStore struct {
	baseURL    string
	publicURL  string
	httpClient *http.Client
}

func NewHTTPStore(baseURL, publicURL string) *HTTPStore {
	baseURL = strings.TrimRight(baseURL, "/")
	publicURL = strings.TrimRight(publicURL, "/")
	if publicURL == "" {
		publicURL = baseURL
	}
	return &HTTPStore{
		baseURL:    baseURL,
		publicURL:  publicURL,
		httpClient: &http.Client{},
	}
}

// objectURL maps a ref to its fetchable form: bare keys attach to
// baseURL, public URLs are rewritten to the backing store.
func (s *HTTPStore) objectURL(ref string) string {
	if rest, ok := strings.CutPrefix(ref, s.publicURL+"/"); ok {
		return s.baseURL + "/" + rest
	}
	if strings.Contains(ref, "://") {
		return ref
	}
	return s.baseURL + "/" + ref
}

func (s *HTTPStore) Get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(ref), nil)
	if err != nil {
		return nil, fault.New(fault.Unexpected, stage, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.Persistence, stage, fmt.Errorf("fetch %s: %w", ref, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fault.New(fault.NotFound, stage, fmt.Errorf("artifact %s not found", ref))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.Persistence, stage, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.New(fault.Persistence, stage, fmt.Errorf("read %s: %w", ref, err))
	}
	return data, nil
}

func (s *HTTPStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/"+key, bytes.NewReader(data))
	if err != nil {
		return "", fault.New(fault.Unexpected, stage, err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fault.New(fault.Persistence, stage, fmt.Errorf("store %s: %w", key, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return s.publicURL + "/" + key, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fault.New(fault.Persistence, stage, fmt.Errorf("store %s: status %d: %s", key, resp.StatusCode, string(body)))
	}
}

var _ Store = (*HTTPStore)(nil)
