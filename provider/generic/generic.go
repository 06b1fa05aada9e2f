// Package generic provides a provider implementation for arbitrary CLI
// tools that accept a prompt as their final argument and print the
// response to stdout.
package generic

import (
	"context"
	"strings"
	"time"

	"github.com/debaite/debaite/provider"
)

// Provider is a configurable provider for custom CLI tools. It makes no
// attempt to parse structured metadata from the output.
type Provider struct {
	provider.BaseProvider
	extraArgs []string
}

// New creates a generic provider from configuration.
func New(cfg provider.Config) *Provider {
	return &Provider{
		BaseProvider: provider.NewBaseProvider(cfg),
		extraArgs:    append([]string(nil), cfg.Args...),
	}
}

// Generate runs the CLI and returns its stdout as the response.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	args := append([]string(nil), p.extraArgs...)

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
	out, err := p.Run(ctx, args)
	if err != nil {
		return nil, err
	}

	return &provider.Response{
		Content:  strings.TrimSpace(out),
		Provider: p.Name(),
		Model:    model,
		Duration: time.Since(start),
		Raw:      out,
	}, nil
}
