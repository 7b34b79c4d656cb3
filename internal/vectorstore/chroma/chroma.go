package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"regulatory-chatbot-backend/internal/ai"
	"regulatory-chatbot-backend/internal/logger"
)

// Collection is a minimal REST client for one ChromaDB collection.
// Embeddings are computed client-side through the Embedder, so the server
// only ever sees ids, vectors, documents, and flat metadata.
type Collection struct {
	baseURL      string
	collectionID string
	name         string
	embedder     ai.Embedder
	client       *http.Client
}

type Config struct {
	Host     string
	Port     int
	Name     string
	Embedder ai.Embedder
	Timeout  time.Duration
}

// QueryMatch is one ranked result of a similarity query.
type QueryMatch struct {
	ID       string
	Document string
	Metadata map[string]any
	Distance float64
}

const (
	connectRetries = 5
	connectDelay   = 2 * time.Second
)

// Connect establishes the collection, creating it if missing. The Chroma
// container can come up after the backend, so connection attempts are retried.
func Connect(ctx context.Context, cfg Config) (*Collection, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	c := &Collection{
		baseURL:  fmt.Sprintf("http://%s:%d/api/v1", cfg.Host, cfg.Port),
		name:     cfg.Name,
		embedder: cfg.Embedder,
		client:   &http.Client{Timeout: timeout},
	}

	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		if err := c.getOrCreate(ctx); err != nil {
			lastErr = err
			logger.Warn("ChromaDB connection attempt failed", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectDelay):
			}
			continue
		}
		logger.Info("Connected to ChromaDB", "collection", cfg.Name, "attempt", attempt)
		return c, nil
	}

	return nil, fmt.Errorf("could not connect to ChromaDB after %d attempts: %w", connectRetries, lastErr)
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

func (c *Collection) getOrCreate(ctx context.Context) error {
	body := map[string]any{
		"name":          c.name,
		"get_or_create": true,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/collections", body, &resp); err != nil {
		return err
	}
	if resp.ID == "" {
		return fmt.Errorf("collection create returned no id")
	}
	c.collectionID = resp.ID
	return nil
}

// Upsert writes one batch of chunks. Re-upserting an existing id overwrites
// its document and metadata, which keeps ingestion idempotent.
func (c *Collection) Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("ids, documents and metadatas length mismatch")
	}

	embeddings := make([][]float32, len(documents))
	for i, doc := range documents {
		vec, err := c.embedder.EmbedText(ctx, doc)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", ids[i], err)
		}
		embeddings[i] = vec
	}

	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	return c.postJSON(ctx, c.collectionURL("upsert"), body, nil)
}

// Query runs a similarity search for the given text.
func (c *Collection) Query(ctx context.Context, text string, topK int) ([]QueryMatch, error) {
	if topK <= 0 {
		topK = 3
	}

	vec, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	body := map[string]any{
		"query_embeddings": [][]float32{vec},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		IDs       [][]string         `json:"ids"`
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := c.postJSON(ctx, c.collectionURL("query"), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	matches := make([]QueryMatch, 0, len(resp.IDs[0]))
	for i := range resp.IDs[0] {
		m := QueryMatch{ID: resp.IDs[0][i]}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			m.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			m.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			m.Distance = resp.Distances[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.collectionURL("count"), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("chroma GET count failed: %s", resp.Status)
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Get returns all stored records with their metadata.
func (c *Collection) Get(ctx context.Context) ([]string, []map[string]any, error) {
	body := map[string]any{
		"include": []string{"metadatas"},
	}
	var resp struct {
		IDs       []string         `json:"ids"`
		Metadatas []map[string]any `json:"metadatas"`
	}
	if err := c.postJSON(ctx, c.collectionURL("get"), body, &resp); err != nil {
		return nil, nil, err
	}
	return resp.IDs, resp.Metadatas, nil
}

func (c *Collection) collectionURL(op string) string {
	return fmt.Sprintf("%s/collections/%s/%s", c.baseURL, c.collectionID, op)
}

func (c *Collection) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chroma POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
