package ai

import (
	"context"
	"fmt"
	"time"

	"regulatory-chatbot-backend/internal/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

const geminiModel = "gemini-2.5-flash"

// GeminiProvider calls the Gemini API behind a circuit breaker and a
// client-side rate limiter sized for the configured quota tier.
type GeminiProvider struct {
	client      *genai.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

type rateLimits struct {
	RPM int // Requests per minute
}

func getRateLimits(tier string) rateLimits {
	switch tier {
	case "tier1":
		return rateLimits{RPM: 1000}
	case "tier2":
		return rateLimits{RPM: 2000}
	default:
		return rateLimits{RPM: 10}
	}
}

func NewGeminiProvider(apiKey string, tier string) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	limits := getRateLimits(tier)
	limiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), 1)

	return &GeminiProvider{
		client:      client,
		breaker:     breaker,
		rateLimiter: limiter,
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		model := p.client.GenerativeModel(geminiModel)
		model.SetTemperature(0.1)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, fmt.Errorf("no candidates in gemini response")
		}

		text := ""
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		if text == "" {
			return nil, fmt.Errorf("empty text in gemini response")
		}
		return text, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("gemini temporarily unavailable: %w", err)
		}
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	return result.(string), nil
}

// Close releases the underlying genai client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
