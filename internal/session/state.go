// Package session holds the per-user exploration state and the handlers that
// move it between stages. Handlers take a State and return the updated State;
// on failure they return the input State untouched together with the error.
package session

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/reviewlens/internal/dataset"
)

// Stage is how far a session has progressed through the pipeline.
type Stage int

const (
	StageEmpty Stage = iota
	StageLoaded
	StageCleaned
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageLoaded:
		return "loaded"
	case StageCleaned:
		return "cleaned"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// User-facing outcome messages.
const (
	MsgLoaded    = "Dataset loaded successfully!"
	MsgCleaned   = "Reviews parsed and cleaned successfully!"
	MsgNoDataset = "No dataset loaded. Please load a dataset first."
)

// State is one session's view of the pipeline.
type State struct {
	Stage Stage
	Table *dataset.Table
	// Message is the outcome of the last action, kept until it is shown.
	Message string
	Failed  bool
}

// Loader produces a fresh table, typically by reading the configured dataset.
type Loader func() (*dataset.Table, error)

// Require fails with a *dataset.PreconditionError unless st has reached min.
func Require(st State, action string, min Stage) error {
	if st.Stage >= min && st.Table != nil {
		return nil
	}
	msg := ""
	if min >= StageLoaded {
		msg = MsgNoDataset
	}
	return &dataset.PreconditionError{Action: action, Msg: msg}
}

// Ingest loads a new table, replacing any previous one. On failure the
// previous state is returned unchanged.
func Ingest(st State, load Loader) (State, error) {
	t, err := load()
	if err != nil {
		var le *dataset.LoadError
		if !errors.As(err, &le) {
			err = &dataset.LoadError{Err: err}
		}
		return st, err
	}
	return State{Stage: StageLoaded, Table: t}, nil
}

// Parse derives CLEANED_SUMMARY on the loaded table. It requires a loaded
// dataset and may be repeated.
func Parse(st State) (State, error) {
	if err := Require(st, "parse", StageLoaded); err != nil {
		return st, err
	}
	if err := st.Table.Clean(); err != nil {
		return st, err
	}
	return State{Stage: StageCleaned, Table: st.Table}, nil
}

// WithOutcome returns st carrying the display message for action's result.
func (st State) WithOutcome(action string, err error) State {
	st.Message = Message(action, err)
	st.Failed = err != nil
	return st
}

// Message renders the outcome of an action for display.
func Message(action string, err error) string {
	if err != nil {
		return err.Error()
	}
	switch action {
	case "ingest":
		return MsgLoaded
	case "parse":
		return MsgCleaned
	default:
		return ""
	}
}
