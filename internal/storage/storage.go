// Package storage provides persistence for finished debate sessions.
package storage

import (
	"github.com/debaite/debaite/internal/core"
)

// Storage defines the interface for debate persistence.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// SaveDebate stores a complete debate record with its turns.
	SaveDebate(record *core.DebateRecord) error

	// GetDebate retrieves a debate by ID. Returns nil when not found.
	GetDebate(id string) (*core.DebateRecord, error)

	// ListDebates returns summaries, newest first.
	ListDebates(limit, offset int) ([]*core.DebateSummary, error)

	// DeleteDebate removes a debate and its turns.
	DeleteDebate(id string) error
}
