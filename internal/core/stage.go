package core

import "fmt"

// Stage identifies which scripted phase of the debate a round belongs to.
// The stage determines the instruction given to participants for that round.
type Stage string

const (
	StageOpening  Stage = "opening"
	StageRebuttal Stage = "rebuttal"
	StageClosing  Stage = "closing"
)

// Schedule builds the ordered stage list for a debate run: exactly one
// opening, maxRounds-2 rebuttals, exactly one closing. maxRounds of 2
// degenerates to opening followed directly by closing.
func Schedule(maxRounds int) ([]Stage, error) {
	if maxRounds < 2 {
		return nil, fmt.Errorf("max rounds must be at least 2, got %d", maxRounds)
	}

	stages := make([]Stage, 0, maxRounds)
	stages = append(stages, StageOpening)
	for i := 0; i < maxRounds-2; i++ {
		stages = append(stages, StageRebuttal)
	}
	stages = append(stages, StageClosing)
	return stages, nil
}
