package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	groqAPIURL   = "https://api.groq.com/openai/v1/chat/completions"
	groqModel    = "llama-3.1-8b-instant"
	groqSystem   = "Eres un asistente académico especializado en normativas de Inteligencia Artificial. Responde de manera precisa y académica basándote únicamente en el contexto proporcionado."
	groqMaxRetry = 2
)

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []groqChoice `json:"choices"`
	Error   *groqError   `json:"error,omitempty"`
}

type groqChoice struct {
	Message groqMessage `json:"message"`
}

type groqError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GroqProvider calls the Groq chat-completions endpoint (OpenAI wire format)
// to reach LLaMA 3. Length control happens through the prompt, so the request
// itself stays fixed apart from the user message.
type GroqProvider struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewGroqProvider(apiKey string) *GroqProvider {
	return &GroqProvider{
		apiKey: apiKey,
		apiURL: groqAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *GroqProvider) Name() string { return "llama3" }

func (p *GroqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	request := groqRequest{
		Model: groqModel,
		Messages: []groqMessage{
			{Role: "system", Content: groqSystem},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	}

	var lastErr error
	for attempt := 0; attempt <= groqMaxRetry; attempt++ {
		text, err := p.makeRequest(ctx, request)
		if err == nil {
			return text, nil
		}

		lastErr = err
		if attempt < groqMaxRetry {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			}
		}
	}

	return "", fmt.Errorf("groq request failed after %d attempts: %v", groqMaxRetry+1, lastErr)
}

func (p *GroqProvider) makeRequest(ctx context.Context, request groqRequest) (string, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	var groqResp groqResponse
	if err := json.Unmarshal(body, &groqResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %v", err)
	}

	if groqResp.Error != nil {
		return "", fmt.Errorf("API error: %s (type: %s)", groqResp.Error.Message, groqResp.Error.Type)
	}

	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return groqResp.Choices[0].Message.Content, nil
}
