package term

import "strings"

// screenScanCols bounds how much of each rendered row is examined for
// stop-hook phrases.
const screenScanCols = 200

// Signals holds the textual heuristics used to interpret agent output. The
// completion marker and stop-hook phrases are conventions of the driven
// agent, not a protocol, so they are data supplied by configuration rather
// than constants baked into the engine.
type Signals struct {
	// CompletionMarker is the literal sentinel the agent emits when the
	// entire task is done.
	CompletionMarker string
	// StopPhrases are matched case-insensitively against the ANSI-stripped
	// raw buffer and against every rendered screen row.
	StopPhrases []string
}

// DefaultSignals returns the heuristics for Claude Code with the ralph stop
// hook installed.
func DefaultSignals() Signals {
	return Signals{
		CompletionMarker: "<promise>COMPLETE</promise>",
		StopPhrases: []string{
			"iteration complete",
			"ralph will start next iteration",
			"ran 1 stop hook",
			"stop hook",
		},
	}
}

// HasCompletion reports whether raw contains the literal completion marker.
func (s Signals) HasCompletion(raw string) bool {
	return s.CompletionMarker != "" && strings.Contains(raw, s.CompletionMarker)
}

// HasStopHook reports whether a stop-hook phrase appears in the ANSI-stripped
// raw buffer or in any rendered screen row. The screen check exists because
// cursor-positioning sequences can split a phrase across writes in the raw
// stream while the rendered screen reflows it intact.
func (s Signals) HasStopHook(raw string, screenRows []string) bool {
	stripped := strings.ToLower(StripANSI(raw))
	for _, phrase := range s.StopPhrases {
		if strings.Contains(stripped, phrase) {
			return true
		}
	}
	for _, row := range screenRows {
		runes := []rune(row)
		if len(runes) > screenScanCols {
			runes = runes[:screenScanCols]
		}
		lower := strings.ToLower(string(runes))
		for _, phrase := range s.StopPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}
