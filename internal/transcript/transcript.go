// Package transcript implements the append-only debate log.
package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/debaite/debaite/internal/core"
)

// Transcript owns the ordered sequence of turns, the current round number,
// the topic and the participant roster. It is purely in-memory; durable
// storage is a separate concern handled after the session ends.
//
// The round scheduler and context policy are the only writers, so the
// transcript carries no locking of its own.
type Transcript struct {
	topic  string
	roster []string
	round  int
	turns  []core.Turn
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Start resets all state and records the debate-start announcement and the
// participant roster as two system turns at round 0.
func (t *Transcript) Start(topic string, roster []string) {
	t.topic = topic
	t.roster = append([]string(nil), roster...)
	t.round = 0
	t.turns = t.turns[:0]

	t.AppendSystem(fmt.Sprintf("Debate started on '%s'.", topic))
	t.AppendSystem("Participants: " + strings.Join(t.roster, ", "))
}

// AdvanceRound increments the round counter and records a system turn
// announcing the new round. It must be called exactly once per stage,
// before any response turns for that stage are appended.
func (t *Transcript) AdvanceRound() {
	t.round++
	t.AppendSystem(fmt.Sprintf("Round %d begins.", t.round))
}

// Append records a response turn tagged with the current round. The speaker
// is not validated against the roster; participants are trusted.
func (t *Transcript) Append(speaker, text string) {
	t.add(speaker, text, core.KindResponse)
}

// AppendSystem records a system turn tagged with the current round.
func (t *Transcript) AppendSystem(text string) {
	t.add(core.SystemSpeaker, text, core.KindSystem)
}

func (t *Transcript) add(speaker, text string, kind core.TurnKind) {
	t.turns = append(t.turns, core.Turn{
		Timestamp: time.Now().UTC(),
		Round:     t.round,
		Speaker:   speaker,
		Text:      text,
		Kind:      kind,
	})
}

// AllTurns returns a copy of every turn in chronological order.
func (t *Transcript) AllTurns() []core.Turn {
	return append([]core.Turn(nil), t.turns...)
}

// NonSystemTurns returns a copy of the response turns in chronological order.
func (t *Transcript) NonSystemTurns() []core.Turn {
	out := make([]core.Turn, 0, len(t.turns))
	for _, turn := range t.turns {
		if !turn.IsSystem() {
			out = append(out, turn)
		}
	}
	return out
}

// Round returns the current round number.
func (t *Transcript) Round() int {
	return t.round
}

// Topic returns the debate topic.
func (t *Transcript) Topic() string {
	return t.topic
}

// Roster returns a copy of the ordered participant name list.
func (t *Transcript) Roster() []string {
	return append([]string(nil), t.roster...)
}

// Len returns the total number of turns, system turns included.
func (t *Transcript) Len() int {
	return len(t.turns)
}
