package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"regulatory-chatbot-backend/internal/ai"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/models"
)

// ChatService answers questions by retrieving relevant chunks and forwarding
// them with the question to the selected model provider.
type ChatService struct {
	store    VectorCollection
	registry *ai.Registry
}

const defaultTopK = 3

func NewChatService(store VectorCollection, registry *ai.Registry) *ChatService {
	return &ChatService{store: store, registry: registry}
}

// Answer resolves the model, retrieves context, and generates the reply.
func (s *ChatService) Answer(ctx context.Context, question, modelID string, topK int) (*models.ChatResponse, error) {
	if modelID == "" {
		modelID = s.registry.DefaultModel()
	}
	if !s.registry.Has(modelID) {
		return nil, fmt.Errorf("model %q not available", modelID)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	matches, err := s.store.Query(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	contextChunks := make([]string, 0, len(matches))
	sources := make([]models.Source, 0, len(matches))
	for _, m := range matches {
		contextChunks = append(contextChunks, m.Document)
		sources = append(sources, sourceFromMetadata(m.Metadata))
	}

	prompt := buildPrompt(question, contextChunks)
	answer, err := s.registry.Generate(ctx, modelID, prompt)
	if err != nil {
		return nil, err
	}

	logger.Debug("Chat answered", "model", modelID, "sources", len(sources))
	return &models.ChatResponse{
		Answer:    answer,
		Model:     modelID,
		Sources:   sources,
		Timestamp: time.Now(),
	}, nil
}

func sourceFromMetadata(meta map[string]any) models.Source {
	return models.Source{
		Title:    metaString(meta, "titulo"),
		Source:   metaString(meta, "organismo"),
		Category: metaString(meta, "categoria"),
		Year:     metaInt(meta, "anio"),
		FilePath: metaString(meta, "ruta_archivo"),
	}
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// buildPrompt assembles the retrieved chunks and the question into a single
// grounded prompt. Without context the model is told to say so instead of
// improvising.
func buildPrompt(question string, contextChunks []string) string {
	var prompt strings.Builder

	if len(contextChunks) == 0 {
		prompt.WriteString("No se encontró contexto relevante en el corpus para esta pregunta.\n")
		prompt.WriteString("Indica claramente que no tienes información suficiente para responder.\n\n")
		prompt.WriteString("Pregunta: ")
		prompt.WriteString(question)
		return prompt.String()
	}

	prompt.WriteString("Basándote únicamente en el siguiente contexto extraído del corpus de documentos regulatorios:\n\n")
	for i, chunk := range contextChunks {
		prompt.WriteString(fmt.Sprintf("Contexto %d:\n%s\n\n", i+1, chunk))
	}
	prompt.WriteString("Responde de manera precisa y académica la siguiente pregunta. ")
	prompt.WriteString("Si el contexto no contiene información relevante, indícalo claramente.\n\n")
	prompt.WriteString("Pregunta: ")
	prompt.WriteString(question)

	return prompt.String()
}
