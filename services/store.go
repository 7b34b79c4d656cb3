package services

import (
	"context"

	"regulatory-chatbot-backend/internal/vectorstore/chroma"
)

// VectorCollection is the slice of the vector-store API the pipelines need.
// Upserts must be idempotent by id, and metadata values must already be
// primitives (see NormalizeMetadata).
type VectorCollection interface {
	Name() string
	Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error
	Query(ctx context.Context, text string, topK int) ([]chroma.QueryMatch, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context) ([]string, []map[string]any, error)
}
