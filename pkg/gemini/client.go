// Package gemini is a minimal client for the Gemini generateContent API,
// covering only single-turn text completion.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/quizbank/quizbank-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second
)

// Client performs text completions against the Gemini API.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig holds the generation parameters sent with every request.
// Near-zero temperature keeps structured extraction deterministic.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig returns the extraction-tuned defaults.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.1,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// generateRequest is the body for POST /models/{model}:generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the subset of the response envelope the client reads.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithGenerationConfig overrides the default generation parameters.
func WithGenerationConfig(gc GenerationConfig) Option {
	return func(c *httpClient) {
		c.genCfg = gc
	}
}

// WithRateLimit caps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetry overrides the default retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	genCfg  GenerationConfig
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Gemini API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		genCfg:  DefaultGenerationConfig(),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends the prompt and returns the first candidate's first text
// part. Transient HTTP failures are retried; a well-formed non-transient
// error or a malformed envelope fails the call.
func (c *httpClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "gemini: rate limit wait")
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.generate(ctx, prompt)
	})
}

func (c *httpClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: c.genCfg,
	})
	if err != nil {
		return "", eris.Wrap(err, "gemini: marshal request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "gemini: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "gemini: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "gemini: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "gemini: unmarshal response")
	}

	if len(result.Candidates) == 0 {
		return "", eris.New("gemini: malformed envelope: no candidates")
	}
	parts := result.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", eris.New("gemini: malformed envelope: no parts")
	}

	return parts[0].Text, nil
}
