package core

import "fmt"

// ContextMode selects how prior debate context is presented to a
// participant. It is chosen at session start and immutable afterward.
type ContextMode int

const (
	// ModeFull hands every participant the entire non-system history,
	// excluding their own turns. Unbounded growth is this mode's
	// defining property.
	ModeFull ContextMode = iota

	// ModeSummarized hands participants only the rolling summary.
	ModeSummarized

	// ModeHybrid hands participants the rolling summary plus a sliding
	// window of the most recent turns.
	ModeHybrid
)

// String returns the lowercase mode name.
func (m ContextMode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeSummarized:
		return "summarized"
	case ModeHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("ContextMode(%d)", int(m))
	}
}

// ParseContextMode converts a mode name to its ContextMode value.
func ParseContextMode(s string) (ContextMode, error) {
	switch s {
	case "full":
		return ModeFull, nil
	case "summarized":
		return ModeSummarized, nil
	case "hybrid":
		return ModeHybrid, nil
	default:
		return ModeFull, fmt.Errorf("unknown context mode: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so modes serialize as
// their names in JSON and YAML.
func (m ContextMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ContextMode) UnmarshalText(text []byte) error {
	parsed, err := ParseContextMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
