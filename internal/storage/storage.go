// Package storage persists image artifacts: the uploaded source image
// and the cropped sub-region images a run produces. Implementations
// return a public URL for every stored object so detail rows can link
// straight to it.
package storage

import "context"

const stage = "artifact_store"

// Store reads and writes image artifacts. Get accepts either a bare
// storage key or a public URL previously returned by Put.
type Store interface {
	Get(ctx context.Context, ref string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) (url string, err error)
}
