package ai

import (
	"context"
	"fmt"

	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/models"
)

// Provider generates a completion for a fully assembled prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Registry holds the providers discovered from configured credentials at
// startup. It is built once and read-only afterwards.
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry probes the configured credentials and registers one provider
// per usable credential. At least one provider must come up.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider)}

	if cfg.GeminiAPIKey != "" {
		p, err := NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiTier)
		if err != nil {
			logger.Warn("Gemini provider unavailable", "error", err)
		} else {
			r.register("gemini", p)
			logger.Info("Gemini provider initialized")
		}
	}

	if cfg.GroqAPIKey != "" {
		r.register("llama3", NewGroqProvider(cfg.GroqAPIKey))
		logger.Info("LLaMA3 (Groq) provider initialized")
	}

	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no model providers available: check GEMINI_API_KEY / GROQ_API_KEY")
	}

	logger.Info("Model registry ready", "models", r.order)
	return r, nil
}

func (r *Registry) register(id string, p Provider) {
	r.providers[id] = p
	r.order = append(r.order, id)
}

// Generate routes the prompt to the named model.
func (r *Registry) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	p, ok := r.providers[modelID]
	if !ok {
		return "", fmt.Errorf("model %q not available, available models: %v", modelID, r.order)
	}
	return p.Generate(ctx, prompt)
}

// Has reports whether the named model was registered.
func (r *Registry) Has(modelID string) bool {
	_, ok := r.providers[modelID]
	return ok
}

// DefaultModel prefers gemini, then llama3, then whatever registered first.
func (r *Registry) DefaultModel() string {
	if r.Has("gemini") {
		return "gemini"
	}
	if r.Has("llama3") {
		return "llama3"
	}
	return r.order[0]
}

// AvailableModels describes the registered providers for the /models endpoint.
func (r *Registry) AvailableModels() []models.ModelInfo {
	infos := make([]models.ModelInfo, 0, len(r.order))
	for _, id := range r.order {
		switch id {
		case "gemini":
			infos = append(infos, models.ModelInfo{
				ID:          "gemini",
				Name:        "Gemini 2.5 Flash",
				Provider:    "Google",
				Description: "Modelo de Google para generación de texto",
			})
		case "llama3":
			infos = append(infos, models.ModelInfo{
				ID:          "llama3",
				Name:        "LLaMA 3.1 8B",
				Provider:    "Groq",
				Description: "Modelo open source de Meta via Groq",
			})
		}
	}
	return infos
}
