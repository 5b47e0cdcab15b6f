package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/quizbank/quizbank-cli/internal/config"
	"github.com/quizbank/quizbank-cli/pkg/anthropic"
	"github.com/quizbank/quizbank-cli/pkg/gemini"
)

// NewCompleter creates a Completer for the configured provider. Provider
// "none" returns nil, which makes the Parser rule-based only.
func NewCompleter(cfg *config.Config) (Completer, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.Gemini.Key == "" {
			return nil, eris.New("pipeline: gemini provider requires gemini.key")
		}
		return gemini.NewClient(cfg.Gemini.Key,
			gemini.WithBaseURL(cfg.Gemini.BaseURL),
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithGenerationConfig(gemini.GenerationConfig{
				Temperature:     cfg.Gemini.Temperature,
				TopP:            cfg.Gemini.TopP,
				TopK:            cfg.Gemini.TopK,
				MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
			}),
			gemini.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
			}),
		), nil
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("pipeline: anthropic provider requires anthropic.key")
		}
		return &anthropicCompleter{
			client:    anthropic.NewClient(cfg.Anthropic.Key),
			model:     cfg.Anthropic.Model,
			maxTokens: cfg.Anthropic.MaxTokens,
		}, nil
	case "none", "":
		return nil, nil
	default:
		return nil, eris.Errorf("pipeline: unknown llm provider %q", cfg.LLM.Provider)
	}
}

// anthropicCompleter adapts the anthropic client to the Completer interface.
type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogUsage(c.model, "parse")
	return resp.Text(), nil
}
