package core

import (
	"encoding/json"
	"testing"
)

func TestParseContextMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ContextMode
		wantErr bool
	}{
		{"full", ModeFull, false},
		{"summarized", ModeSummarized, false},
		{"hybrid", ModeHybrid, false},
		{"HYBRID", ModeFull, true},
		{"", ModeFull, true},
		{"window", ModeFull, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContextMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextModeJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Mode ContextMode `json:"mode"`
	}

	data, err := json.Marshal(wrapper{Mode: ModeHybrid})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"mode":"hybrid"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Mode != ModeHybrid {
		t.Errorf("round trip changed mode: got %v", w.Mode)
	}
}

func TestSchedule(t *testing.T) {
	t.Run("ThreeRounds", func(t *testing.T) {
		stages, err := Schedule(3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Stage{StageOpening, StageRebuttal, StageClosing}
		if len(stages) != len(want) {
			t.Fatalf("got %d stages, want %d", len(stages), len(want))
		}
		for i := range want {
			if stages[i] != want[i] {
				t.Errorf("stage %d: got %s, want %s", i, stages[i], want[i])
			}
		}
	})

	t.Run("DegenerateTwoRounds", func(t *testing.T) {
		stages, err := Schedule(2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stages) != 2 || stages[0] != StageOpening || stages[1] != StageClosing {
			t.Errorf("unexpected schedule: %v", stages)
		}
	})

	t.Run("RejectsTooFewRounds", func(t *testing.T) {
		if _, err := Schedule(1); err == nil {
			t.Error("expected error for max rounds 1")
		}
		if _, err := Schedule(0); err == nil {
			t.Error("expected error for max rounds 0")
		}
	})

	t.Run("ManyRounds", func(t *testing.T) {
		stages, err := Schedule(6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rebuttals := 0
		for _, s := range stages {
			if s == StageRebuttal {
				rebuttals++
			}
		}
		if rebuttals != 4 {
			t.Errorf("got %d rebuttals, want 4", rebuttals)
		}
	})
}
