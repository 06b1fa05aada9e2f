// Package provider abstracts the generative-model capability behind a
// unified interface. Implementations wrap either command-line AI tools
// (Gemini CLI, generic commands) or HTTP APIs (OpenAI). The debate core
// treats every provider as an opaque generate(prompt, config) -> text
// capability and catches all errors at the call site.
package provider

import (
	"context"
	"time"
)

// Provider is the generation capability.
type Provider interface {
	// Name returns the provider's unique identifier (e.g., "gemini").
	Name() string

	// Available reports whether the provider can serve requests (CLI tool
	// installed, API key configured).
	Available() bool

	// Generate sends a request and returns the generated text.
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// GenConfig carries per-call sampling parameters. Zero values mean
// "provider default" except Temperature, which is meaningful at 0 for
// deterministic output; use the constructor helpers to avoid ambiguity.
type GenConfig struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
	TopK        int
}

// CreativeConfig returns the sampling parameters used for debate turns.
func CreativeConfig() GenConfig {
	return GenConfig{Temperature: 0.7, MaxTokens: 500, TopP: 0.95, TopK: 40}
}

// SummaryConfig returns the deterministic, length-bounded parameters used
// for transcript compaction.
func SummaryConfig() GenConfig {
	return GenConfig{Temperature: 0, MaxTokens: 400, TopP: 0.95, TopK: 40}
}

// Request is a single generation request.
type Request struct {
	// Prompt is the input text to send.
	Prompt string

	// Model overrides the provider's default model when non-empty.
	Model string

	// Config carries the sampling parameters for this call.
	Config GenConfig

	// Args are additional command-line arguments for CLI providers.
	Args []string
}

// Response is a provider's reply with metadata.
type Response struct {
	// Content is the generated text.
	Content string `json:"content"`

	// Model is the model that produced the response.
	Model string `json:"model,omitempty"`

	// Provider is the name of the provider that produced the response.
	Provider string `json:"provider,omitempty"`

	// Duration is the time taken to generate the response.
	Duration time.Duration `json:"duration,omitempty"`

	// Raw is the unprocessed provider output, kept for debugging.
	Raw string `json:"-"`
}

// Config holds the settings needed to construct a provider.
type Config struct {
	// Name is the unique identifier for this provider.
	Name string

	// DisplayName is a human-friendly name. Defaults to Name.
	DisplayName string

	// Command is the CLI executable for command-line providers.
	Command string

	// Args are default arguments prepended to every CLI invocation.
	Args []string

	// APIKey authenticates HTTP API providers.
	APIKey string

	// BaseURL overrides the API endpoint for HTTP providers.
	BaseURL string

	// DefaultModel is used when Request.Model is empty.
	DefaultModel string

	// Models lists the models this provider is known to support.
	Models []string

	// Timeout bounds a single request. Defaults to 5 minutes.
	Timeout time.Duration

	// MaxRetries is the number of retries after a retriable failure.
	MaxRetries int
}
