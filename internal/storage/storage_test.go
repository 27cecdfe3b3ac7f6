package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridex/authenticity-analyzer/pkg/fault"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Put(ctx, "analyses/job-1/details/det-1.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/files/analyses/job-1/details/det-1.jpg", url)

	// Both the bare key and the minted URL resolve to the same object.
	data, err := s.Get(ctx, "analyses/job-1/details/det-1.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)

	data, err = s.Get(ctx, url)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)
}

func TestFilesystemStoreMissing(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope.jpg")
	require.Error(t, err)
	require.True(t, fault.Is(err, fault.NotFound))
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFilesystemStore(filepath.Join(dir, "artifacts"), "")
	require.NoError(t, err)

	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))

	_, err = s.Get(context.Background(), "../secret.txt")
	require.Error(t, err)

	_, err = s.Put(context.Background(), "../escape.jpg", []byte("x"))
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "escape.jpg"))
}

func TestFilesystemStoreBareKeyURL(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir(), "")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "uploads/a.jpg", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, "uploads/a.jpg", url)
}

func TestHTTPStoreRoundTrip(t *testing.T) {
	objects := map[string][]byte{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		switch r.Method {
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[key] = data
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			data, ok := objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(data)
		}
	}))
	defer server.Close()

	s := NewHTTPStore(server.URL, "https://cdn.example.com")
	ctx := context.Background()

	url, err := s.Put(ctx, "uploads/job-1.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/uploads/job-1.jpg", url)

	data, err := s.Get(ctx, "uploads/job-1.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)

	// The public URL form is rewritten back to the store address.
	data, err = s.Get(ctx, url)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)

	_, err = s.Get(ctx, "uploads/missing.jpg")
	require.Error(t, err)
	require.True(t, fault.Is(err, fault.NotFound))
}

func TestHTTPStorePutFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInsufficientStorage)
	}))
	defer server.Close()

	s := NewHTTPStore(server.URL, "")
	_, err := s.Put(context.Background(), "uploads/a.jpg", []byte("x"))
	require.Error(t, err)
	require.True(t, fault.Is(err, fault.Persistence))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	url, err := s.Put(ctx, "uploads/a.jpg", []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, "memory://uploads/a.jpg", url)

	data, err := s.Get(ctx, url)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)

	_, err = s.Get(ctx, "memory://uploads/missing.jpg")
	require.Error(t, err)
	require.True(t, fault.Is(err, fault.NotFound))
}
