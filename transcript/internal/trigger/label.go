package trigger

import "fmt"

// Button colours, taken from the Fluent palette the player uses.
const (
	colorIdle    = "#0078d4"
	colorWorking = "#d83b01"
	colorSaved   = "#107c10"
)

// Label returns the button text and background for s. idle is the resting
// label.
func (s State) Label(idle string) (text, color string) {
	switch s.Kind {
	case Working:
		if s.Entries == 0 && s.Percent == 0 {
			return "Working... 0%", colorWorking
		}
		return fmt.Sprintf("Working... %d%% (%d entries)", s.Percent, s.Entries), colorWorking
	case Saved:
		return fmt.Sprintf("✓ Saved %d entries!", s.Entries), colorSaved
	default:
		return idle, colorIdle
	}
}
