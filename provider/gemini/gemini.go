// Package gemini provides a Gemini CLI provider implementation.
package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/debaite/debaite/provider"
)

// Provider implements provider.Provider for the Gemini CLI.
type Provider struct {
	provider.BaseProvider
	extraArgs []string
}

// New creates a Gemini provider from configuration.
func New(cfg provider.Config) *Provider {
	extra := append([]string(nil), cfg.Args...)
	if cfg.Command == "" {
		cfg.Command = "gemini"
	}
	return &Provider{
		BaseProvider: provider.NewBaseProvider(cfg),
		extraArgs:    extra,
	}
}

// Generate sends the prompt to the Gemini CLI and parses its JSON output.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	args := append([]string{"--output-format", "json"}, p.extraArgs...)

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	args = append(args, req.Args...)
	args = append(args, req.Prompt)

	start := time.Now()
	raw, err := p.Run(ctx, args)
	if err != nil {
		return nil, err
	}

	resp := ParseJSON(raw)
	resp.Provider = p.Name()
	resp.Duration = time.Since(start)
	if resp.Model == "" {
		resp.Model = model
	}
	resp.Content = strings.TrimSpace(resp.Content)
	return resp, nil
}
