// Package flow models the client-side import sequence as an explicit state
// machine. The machine is a value and the transition function is pure, so
// orchestration can be unit tested without any transport or UI attached.
package flow

import (
	"fmt"

	"github.com/growship/backend/internal/domain"
)

// State names one stage of the import sequence.
type State string

const (
	StateUpload    State = "upload"
	StateConfirm   State = "confirm"
	StateValidate  State = "validate"
	StateValidated State = "validated"
	StateImporting State = "importing"
	StateCompleted State = "completed"
)

// EventType names a transition trigger.
type EventType string

const (
	// EventFileAccepted fires when decode and constraint checks pass.
	EventFileAccepted EventType = "file_accepted"
	// EventScopeConfirmed fires when the actor confirms the target tenant.
	EventScopeConfirmed EventType = "scope_confirmed"
	// EventValidationDone fires when the validate step returns, acceptable
	// or not. Completing validation advances state either way.
	EventValidationDone EventType = "validation_done"
	// EventImportStarted fires when the actor triggers the commit.
	EventImportStarted EventType = "import_started"
	// EventImportFinished fires when the confirm step returns a summary.
	EventImportFinished EventType = "import_finished"
	// EventStepFailed fires when any step returns a terminal error.
	EventStepFailed EventType = "step_failed"
	// EventOutcomeUnknown fires when the confirm step times out. The import
	// may or may not have committed; only the import log knows.
	EventOutcomeUnknown EventType = "outcome_unknown"
	// EventRestart discards all pipeline state and returns to upload.
	EventRestart EventType = "restart"
)

// Event carries a trigger plus the payload produced by the step that fired
// it. Only the fields relevant to the event type are set.
type Event struct {
	Type EventType

	// ScopeFixed marks an upload whose actor role pins the tenant scope, so
	// the confirm stage has nothing to ask and is skipped.
	ScopeFixed bool

	FileHash string
	FileName string
	Records  []domain.ImportRecord

	Outcome *domain.ValidationOutcome
	Summary *domain.ImportSummary
	Err     error
}

// Context is the accumulated pipeline state the machine carries between
// steps. It holds everything needed to resume or retry.
type Context struct {
	FileHash string
	FileName string
	Records  []domain.ImportRecord

	Outcome *domain.ValidationOutcome
	Summary *domain.ImportSummary

	// Err is set when the machine completed carrying a failure instead of a
	// summary.
	Err error

	// OutcomeKnown is false only after a timeout during importing. The
	// import log, not client state, settles what actually happened.
	OutcomeKnown bool
}

// Machine is the orchestrator value. The zero value is not valid; use New.
type Machine struct {
	State   State
	Context Context
}

// New returns a machine at the upload stage with empty context.
func New() Machine {
	return Machine{State: StateUpload, Context: Context{OutcomeKnown: true}}
}

// Reduce applies one event and returns the next machine value. The input
// machine is never mutated. Illegal transitions return an error and the
// machine unchanged.
func Reduce(m Machine, ev Event) (Machine, error) {
	switch ev.Type {
	case EventRestart:
		return New(), nil
	case EventStepFailed:
		next := m
		next.State = StateCompleted
		next.Context.Summary = nil
		next.Context.Err = ev.Err
		next.Context.OutcomeKnown = true
		return next, nil
	}

	switch m.State {
	case StateUpload:
		if ev.Type != EventFileAccepted {
			return m, transitionError(m.State, ev.Type)
		}
		next := New()
		next.Context.FileHash = ev.FileHash
		next.Context.FileName = ev.FileName
		next.Context.Records = ev.Records
		if ev.ScopeFixed {
			next.State = StateValidate
		} else {
			next.State = StateConfirm
		}
		return next, nil

	case StateConfirm:
		if ev.Type != EventScopeConfirmed {
			return m, transitionError(m.State, ev.Type)
		}
		next := m
		next.State = StateValidate
		return next, nil

	case StateValidate:
		if ev.Type != EventValidationDone {
			return m, transitionError(m.State, ev.Type)
		}
		next := m
		next.State = StateValidated
		next.Context.Outcome = ev.Outcome
		return next, nil

	case StateValidated:
		if ev.Type != EventImportStarted {
			return m, transitionError(m.State, ev.Type)
		}
		next := m
		next.State = StateImporting
		return next, nil

	case StateImporting:
		switch ev.Type {
		case EventImportFinished:
			next := m
			next.State = StateCompleted
			next.Context.Summary = ev.Summary
			next.Context.Err = nil
			next.Context.OutcomeKnown = true
			return next, nil
		case EventOutcomeUnknown:
			next := m
			next.State = StateCompleted
			next.Context.Summary = nil
			next.Context.Err = nil
			next.Context.OutcomeKnown = false
			return next, nil
		default:
			return m, transitionError(m.State, ev.Type)
		}

	case StateCompleted:
		return m, transitionError(m.State, ev.Type)
	}

	return m, fmt.Errorf("unknown state %q", m.State)
}

// Failed reports whether the machine completed carrying an error.
func (m Machine) Failed() bool {
	return m.State == StateCompleted && m.Context.Err != nil
}

// RetryAllowed reports whether re-submitting the confirm step is safe. It is
// safe only when the outcome is unknown, because the idempotency guard turns
// an already-committed retry into a duplicate answer instead of a double
// write.
func (m Machine) RetryAllowed() bool {
	return m.State == StateCompleted && !m.Context.OutcomeKnown
}

func transitionError(s State, ev EventType) error {
	return fmt.Errorf("event %q not allowed in state %q", ev, s)
}
