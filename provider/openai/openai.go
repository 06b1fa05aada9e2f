// Package openai provides an OpenAI API provider implementation backed by
// the sashabaranov/go-openai client.
package openai

import (
	"context"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/debaite/debaite/provider"
)

const defaultModel = goopenai.GPT4oMini

// Provider implements provider.Provider against the OpenAI chat API.
type Provider struct {
	name         string
	client       *goopenai.Client
	apiKey       string
	defaultModel string
	timeout      time.Duration
}

// New creates an OpenAI provider from configuration. An empty APIKey leaves
// the provider registered but unavailable.
func New(cfg provider.Config) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = provider.DefaultTimeout
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}

	return &Provider{
		name:         name,
		client:       goopenai.NewClientWithConfig(clientCfg),
		apiKey:       cfg.APIKey,
		defaultModel: model,
		timeout:      timeout,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return p.name }

// Available reports whether an API key is configured.
func (p *Provider) Available() bool { return p.apiKey != "" }

// Generate sends a single-message chat completion request.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if p.apiKey == "" {
		return nil, &provider.Error{Provider: p.name, Message: "no API key configured"}
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Config.Temperature),
		MaxTokens:   req.Config.MaxTokens,
	}
	if req.Config.TopP > 0 {
		chatReq.TopP = float32(req.Config.TopP)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, &provider.Error{Provider: p.name, Message: "chat completion failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &provider.Error{Provider: p.name, Message: "empty completion response"}
	}

	return &provider.Response{
		Content:  resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Provider: p.name,
		Duration: time.Since(start),
		Raw:      fmt.Sprintf("id=%s finish=%s", resp.ID, resp.Choices[0].FinishReason),
	}, nil
}
