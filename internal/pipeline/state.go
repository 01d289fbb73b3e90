package pipeline

import "fmt"

// State is a step of a pipeline run.
type State int

const (
	AwaitingUpload State = iota
	Normalizing
	Transcribing
	Persisting
	Screening
	Complete
	Failed
)

var stateNames = [...]string{
	"AwaitingUpload", "Normalizing", "Transcribing", "Persisting", "Screening", "Complete", "Failed",
}

func (s State) String() string {
	if s < AwaitingUpload || s > Failed {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}

// next is the single forward transition of every non-terminal state.
var next = map[State]State{
	AwaitingUpload: Normalizing,
	Normalizing:    Transcribing,
	Transcribing:   Persisting,
	Persisting:     Screening,
	Screening:      Complete,
}

// canTransition reports whether from → to is allowed. Failed is reachable
// from every non-terminal state.
func canTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	return to == Failed || next[from] == to
}
