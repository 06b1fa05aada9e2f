package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	// MaxOutputSize caps CLI output at 10MB.
	MaxOutputSize = 10 * 1024 * 1024

	// DefaultTimeout bounds a single CLI invocation.
	DefaultTimeout = 5 * time.Minute

	// DefaultMaxRetries is the retry count after retriable failures.
	DefaultMaxRetries = 2
)

// BaseProvider provides common functionality for CLI-backed providers.
// Concrete providers embed it to inherit execution, retry and health logic.
type BaseProvider struct {
	name         string
	displayName  string
	command      string
	args         []string
	defaultModel string
	models       []string
	timeout      time.Duration
	maxRetries   int
}

// NewBaseProvider creates a base provider from configuration.
func NewBaseProvider(cfg Config) BaseProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = cfg.Name
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	return BaseProvider{
		name:         cfg.Name,
		displayName:  displayName,
		command:      cfg.Command,
		args:         cfg.Args,
		defaultModel: cfg.DefaultModel,
		models:       cfg.Models,
		timeout:      timeout,
		maxRetries:   maxRetries,
	}
}

// Name returns the provider identifier.
func (p *BaseProvider) Name() string { return p.name }

// DisplayName returns the human-friendly name.
func (p *BaseProvider) DisplayName() string { return p.displayName }

// Models returns the known models.
func (p *BaseProvider) Models() []string { return p.models }

// DefaultModel returns the default model.
func (p *BaseProvider) DefaultModel() string { return p.defaultModel }

// Timeout returns the configured per-request timeout.
func (p *BaseProvider) Timeout() time.Duration { return p.timeout }

// Available reports whether the CLI tool is installed.
func (p *BaseProvider) Available() bool {
	_, err := exec.LookPath(p.command)
	return err == nil
}

// limitedWriter discards bytes written past the limit instead of erroring.
type limitedWriter struct {
	w     io.Writer
	n     int64
	limit int64
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n >= l.limit {
		return len(p), nil
	}
	if remaining := l.limit - l.n; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := l.w.Write(p)
	l.n += int64(n)
	return n, err
}

// runOnce executes the CLI with the given arguments, a single attempt.
func (p *BaseProvider) runOnce(ctx context.Context, args []string) (string, error) {
	if _, err := exec.LookPath(p.command); err != nil {
		return "", &Error{
			Provider: p.name,
			Message:  fmt.Sprintf("executable %q not found in PATH", p.command),
			Err:      err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdout = &limitedWriter{w: &stdout, limit: MaxOutputSize}
	cmd.Stderr = &limitedWriter{w: &stderr, limit: MaxOutputSize}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &Error{
				Provider: p.name,
				Message:  fmt.Sprintf("timeout after %s", p.timeout),
				Err:      context.DeadlineExceeded,
			}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed"
		}
		return "", &Error{Provider: p.name, Message: msg, Err: err}
	}

	return stdout.String(), nil
}

// Run executes the CLI with bounded retries on retriable failures.
func (p *BaseProvider) Run(ctx context.Context, args []string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		out, err := p.runOnce(ctx, args)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetriable(err) {
			slog.Debug("provider error is not retriable", "provider", p.name, "error", err)
			return "", err
		}
		if attempt < p.maxRetries {
			slog.Warn("provider command failed, will retry",
				"provider", p.name,
				"attempt", attempt+1,
				"max_attempts", p.maxRetries+1,
				"error", err,
			)
		}
	}

	slog.Error("provider command failed after all retries",
		"provider", p.name,
		"attempts", p.maxRetries+1,
		"error", lastErr,
	)
	return "", fmt.Errorf("failed after %d attempts: %w", p.maxRetries+1, lastErr)
}

// isRetriable reports whether a failure is worth retrying.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var provErr *Error
	if !errors.As(err, &provErr) {
		return false
	}

	msg := strings.ToLower(provErr.Message)
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "temporary") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "rate limit")
}
