package embedding

import "context"

// Embedder maps text to fixed-length vectors. Implementations are injected
// at wiring time and shared by reference; they must be safe for concurrent
// use.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
