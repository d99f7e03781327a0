package dataset

import (
	"fmt"
	"strings"
)

// LoadError indicates the dataset file was missing, unreadable, or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "request failed"
	}
	return fmt.Sprintf("Request failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PreconditionError indicates an action was requested before the session
// reached the stage it depends on (e.g., parsing before a dataset is loaded).
type PreconditionError struct {
	Action string
	Msg    string
}

func (e *PreconditionError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: precondition not met", e.Action)
}

// SchemaGapError reports columns a view or action needs but the table lacks.
type SchemaGapError struct {
	Missing []string
	Msg     string
}

func (e *SchemaGapError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("columns not found: %s", strings.Join(e.Missing, ", "))
}
