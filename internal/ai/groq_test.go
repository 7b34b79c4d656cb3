package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroqStub(t *testing.T, handler http.HandlerFunc) *GroqProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &GroqProvider{
		apiKey:     "test-key",
		apiURL:     server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGroqGenerate(t *testing.T) {
	var captured groqRequest
	provider := newGroqStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(groqResponse{
			Choices: []groqChoice{{Message: groqMessage{Role: "assistant", Content: "Respuesta generada."}}},
		})
	})

	answer, err := provider.Generate(context.Background(), "¿Qué es la gobernanza de IA?")
	require.NoError(t, err)
	assert.Equal(t, "Respuesta generada.", answer)

	assert.Equal(t, groqModel, captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "¿Qué es la gobernanza de IA?", captured.Messages[1].Content)
	assert.Equal(t, 0.1, captured.Temperature)
	assert.Equal(t, 1000, captured.MaxTokens)
}

func TestGroqGenerateRetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	provider := newGroqStub(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			json.NewEncoder(w).Encode(groqResponse{
				Error: &groqError{Message: "rate limit", Type: "rate_limit_exceeded"},
			})
			return
		}
		json.NewEncoder(w).Encode(groqResponse{
			Choices: []groqChoice{{Message: groqMessage{Content: "segunda vez"}}},
		})
	})

	answer, err := provider.Generate(context.Background(), "pregunta")
	require.NoError(t, err)
	assert.Equal(t, "segunda vez", answer)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGroqGenerateExhaustsRetries(t *testing.T) {
	provider := newGroqStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(groqResponse{
			Error: &groqError{Message: "down", Type: "server_error"},
		})
	})

	_, err := provider.Generate(context.Background(), "pregunta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestGroqGenerateEmptyChoices(t *testing.T) {
	provider := newGroqStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(groqResponse{})
	})

	_, err := provider.Generate(context.Background(), "pregunta")
	require.Error(t, err)
}
