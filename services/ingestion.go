package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/models"
)

// IngestionService drives the corpus pipeline: manifest → extraction →
// chunking → metadata normalization → batched upsert. One document failing
// never stops the run; every outcome lands in the summary.
type IngestionService struct {
	extractor  *FileExtractor
	chunker    *Chunker
	store      VectorCollection
	corpusRoot string
	minContent int
}

func NewIngestionService(cfg *config.Config, store VectorCollection) (*IngestionService, error) {
	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &IngestionService{
		extractor:  NewFileExtractor(),
		chunker:    chunker,
		store:      store,
		corpusRoot: cfg.CorpusRoot,
		minContent: cfg.MinContentLength,
	}, nil
}

// IngestAll processes every manifest entry and returns the run summary.
// Errors never escape this boundary.
func (s *IngestionService) IngestAll(ctx context.Context, manifestPath string) *models.IngestionSummary {
	logger.Info("Starting corpus ingestion", "manifest", manifestPath)

	manifest, err := loadManifest(manifestPath)
	if err != nil {
		logger.Error("Manifest load failed", "error", err)
		return &models.IngestionSummary{
			Success:    false,
			Collection: s.store.Name(),
			Message:    err.Error(),
		}
	}

	summary := &models.IngestionSummary{
		Success:        true,
		TotalDocuments: len(manifest.Documents),
		Collection:     s.store.Name(),
	}

	for _, doc := range manifest.Documents {
		result := s.ingestDocument(ctx, doc)
		summary.Results = append(summary.Results, result)
		if result.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	logger.Info("Ingestion completed",
		"total", summary.TotalDocuments,
		"successful", summary.Successful,
		"failed", summary.Failed)

	return summary
}

func loadManifest(path string) (*models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest not found: %s", path)
	}

	var manifest models.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("manifest is not valid JSON: %v", err)
	}
	return &manifest, nil
}

func (s *IngestionService) ingestDocument(ctx context.Context, doc models.CorpusDocument) models.DocumentResult {
	logger.Info("Processing document", "id", doc.ID, "title", doc.Title)

	filePath, ok := s.resolveFilePath(doc.FilePath)
	if !ok {
		logger.Warn("Corpus file not found", "id", doc.ID, "path", doc.FilePath)
		return models.DocumentResult{
			Success:    false,
			DocumentID: doc.ID,
			Message:    fmt.Sprintf("file not found: %s", doc.FilePath),
		}
	}

	extraction := s.extractor.Extract(filePath)
	if !extraction.Success {
		return models.DocumentResult{
			Success:    false,
			DocumentID: doc.ID,
			Message:    extraction.Error,
		}
	}

	// A file can extract successfully and still carry too little content
	// to be worth indexing.
	if utf8.RuneCountInString(strings.TrimSpace(extraction.Text)) < s.minContent {
		logger.Warn("Extracted text too short", "id", doc.ID)
		return models.DocumentResult{
			Success:    false,
			DocumentID: doc.ID,
			Message:    "extracted text too short or empty",
		}
	}

	chunks := s.chunker.Split(extraction.Text)
	logger.Debug("Document chunked", "id", doc.ID, "chunks", len(chunks))

	base := NormalizeMetadata(doc.Raw)
	base["filename"] = extraction.Metadata["filename"]
	base["size_bytes"] = extraction.Metadata["size_bytes"]
	base["chunks_total"] = len(chunks)

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		ids[i] = fmt.Sprintf("%s_chunk_%d", doc.ID, i)
		documents[i] = chunk

		meta := make(map[string]any, len(base)+2)
		for k, v := range base {
			meta[k] = v
		}
		meta["chunk_index"] = i
		meta["chunk_text_length"] = utf8.RuneCountInString(chunk)
		metadatas[i] = meta
	}

	// One batch per document: either every chunk lands or none do.
	if err := s.store.Upsert(ctx, ids, documents, metadatas); err != nil {
		logger.Error("Batch upsert failed", "id", doc.ID, "error", err)
		return models.DocumentResult{
			Success:    false,
			DocumentID: doc.ID,
			Message:    err.Error(),
		}
	}

	logger.Info("Document ingested", "id", doc.ID, "chunks", len(chunks))
	return models.DocumentResult{
		Success:     true,
		DocumentID:  doc.ID,
		ChunksCount: len(chunks),
		Message:     "document ingested successfully",
	}
}

// resolveFilePath accepts manifest paths that already include the corpus
// root's directory name as well as paths relative to the root itself.
func (s *IngestionService) resolveFilePath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if filepath.IsAbs(path) {
		if fileExists(path) {
			return path, true
		}
		return "", false
	}

	candidates := []string{
		filepath.Join(s.corpusRoot, path),
		filepath.Join(filepath.Dir(s.corpusRoot), path),
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
