package provider

import (
	"context"
	"time"
)

// HealthCheckPrompt is the minimal prompt used to probe a provider.
const HealthCheckPrompt = "Reply with the single word: ok"

// healthCheckTimeout bounds a single probe.
const healthCheckTimeout = 10 * time.Second

// HealthStatus reports the result of probing a provider.
type HealthStatus struct {
	Available    bool          `json:"available"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// HealthCheck probes a provider with a minimal generation request.
func HealthCheck(ctx context.Context, p Provider) HealthStatus {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, err := p.Generate(ctx, &Request{Prompt: HealthCheckPrompt})
	elapsed := time.Since(start)

	if err != nil {
		return HealthStatus{
			Available:    false,
			ResponseTime: elapsed,
			Error:        err.Error(),
			CheckedAt:    time.Now(),
		}
	}
	return HealthStatus{
		Available:    true,
		ResponseTime: elapsed,
		CheckedAt:    time.Now(),
	}
}
