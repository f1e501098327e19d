package types

// RunState is a node of the orchestrator state machine.
type RunState int

const (
	StateIdle RunState = iota
	StateAnalyzing
	StateSelecting
	StateExtracting
	StateTranscribing
	StateSubtitling
	StateDescribing
	StateDone
	StateNoHighlights
	StateFailed
)

var stateNames = [...]string{
	StateIdle:         "Idle",
	StateAnalyzing:    "Analyzing",
	StateSelecting:    "Selecting",
	StateExtracting:   "Extracting",
	StateTranscribing: "Transcribing",
	StateSubtitling:   "Subtitling",
	StateDescribing:   "Describing",
	StateDone:         "Done",
	StateNoHighlights: "NoHighlightsFound",
	StateFailed:       "Failed",
}

func (s RunState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateNoHighlights || s == StateFailed
}
