// Package core contains the core domain types for debaite.
package core

import (
	"time"
)

// SystemSpeaker is the reserved speaker name for system turns.
const SystemSpeaker = "SYSTEM"

// TurnKind distinguishes system announcements from participant responses.
type TurnKind string

const (
	KindSystem   TurnKind = "system"
	KindResponse TurnKind = "response"
)

// Turn is a single utterance in the debate log. Turns are immutable once
// created and only ever appended to a transcript.
type Turn struct {
	Timestamp time.Time `json:"timestamp"`
	Round     int       `json:"round"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Kind      TurnKind  `json:"kind"`
}

// IsSystem reports whether the turn is a system announcement.
func (t Turn) IsSystem() bool {
	return t.Kind == KindSystem
}

// Participant is one debater. Participants are created before the debate
// starts and are fixed for the session's lifetime.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Persona   string `json:"persona"`
	Role      string `json:"role"`
	Expertise string `json:"expertise,omitempty"`
	Style     string `json:"style,omitempty"`

	// Domain is the optional knowledge domain used for retrieval
	// augmentation and drift control. Empty means no augmentation.
	Domain string `json:"domain,omitempty"`
}

// DebateStatus represents the lifecycle state of a stored debate.
type DebateStatus string

const (
	StatusInProgress DebateStatus = "in_progress"
	StatusCompleted  DebateStatus = "completed"
	StatusFailed     DebateStatus = "failed"
)

// DebateRecord is the serialized form of a finished debate session.
type DebateRecord struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	Mode         ContextMode   `json:"mode"`
	Participants []Participant `json:"participants"`
	Turns        []Turn        `json:"turns"`
	Summary      string        `json:"summary,omitempty"`
	Status       DebateStatus  `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// DebateSummary is a lightweight representation for listing debates.
type DebateSummary struct {
	ID               string      `json:"id"`
	Topic            string      `json:"topic"`
	Mode             ContextMode `json:"mode"`
	ParticipantCount int         `json:"participant_count"`
	TurnCount        int         `json:"turn_count"`
	CreatedAt        time.Time   `json:"created_at"`
}
