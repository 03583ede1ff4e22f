package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiInvoker implements Invoker on the Gemini API.
type GeminiInvoker struct {
	client *genai.Client
	model  string
}

var _ Invoker = (*GeminiInvoker)(nil)

// NewGeminiInvoker creates a Gemini-backed invoker.
func NewGeminiInvoker(ctx context.Context, apiKey, model string) (*GeminiInvoker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}
	return &GeminiInvoker{client: client, model: model}, nil
}

// Invoke sends the prompt with the given decoding parameters and returns the
// completion text.
func (g *GeminiInvoker) Invoke(ctx context.Context, prompt string, p Params) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.Temperature),
		MaxOutputTokens: p.MaxTokens,
	}
	if p.TopP > 0 {
		cfg.TopP = genai.Ptr(p.TopP)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model returned an empty completion")
	}
	return text, nil
}
