package runner

// State is a step of the single-run state machine:
//
//	Idle → Invoking → {Succeeded → Parsing → {Rendered | NoResults | ParseFailed}} | Failed → Idle
//
// Temp-file cleanup happens on every terminal transition.
type State string

const (
	StateIdle        State = "idle"
	StateInvoking    State = "invoking"
	StateSucceeded   State = "succeeded"
	StateParsing     State = "parsing"
	StateRendered    State = "rendered"
	StateNoResults   State = "no_results"
	StateParseFailed State = "parse_failed"
	StateFailed      State = "failed"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	switch s {
	case StateRendered, StateNoResults, StateParseFailed, StateFailed:
		return true
	}
	return false
}

// Observer receives every state transition of a run. It is called
// synchronously on the running goroutine and must not block.
type Observer func(from, to State)
