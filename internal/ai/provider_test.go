package ai

import (
	"context"
	"testing"

	"regulatory-chatbot-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProvider struct {
	name   string
	answer string
}

func (p *fixedProvider) Name() string { return p.name }

func (p *fixedProvider) Generate(context.Context, string) (string, error) {
	return p.answer, nil
}

func TestNewRegistryRequiresCredentials(t *testing.T) {
	_, err := NewRegistry(&config.Config{})
	require.Error(t, err)
}

func TestNewRegistryWithGroqOnly(t *testing.T) {
	registry, err := NewRegistry(&config.Config{GroqAPIKey: "key"})
	require.NoError(t, err)

	assert.True(t, registry.Has("llama3"))
	assert.False(t, registry.Has("gemini"))
	assert.Equal(t, "llama3", registry.DefaultModel())

	infos := registry.AvailableModels()
	require.Len(t, infos, 1)
	assert.Equal(t, "llama3", infos[0].ID)
	assert.Equal(t, "Groq", infos[0].Provider)
}

func TestRegistryGenerateRoutesByModel(t *testing.T) {
	registry := &Registry{providers: make(map[string]Provider)}
	registry.register("uno", &fixedProvider{name: "uno", answer: "respuesta uno"})
	registry.register("dos", &fixedProvider{name: "dos", answer: "respuesta dos"})

	answer, err := registry.Generate(context.Background(), "dos", "pregunta")
	require.NoError(t, err)
	assert.Equal(t, "respuesta dos", answer)

	_, err = registry.Generate(context.Background(), "tres", "pregunta")
	require.Error(t, err)
}
