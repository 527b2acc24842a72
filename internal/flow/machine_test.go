package flow

import (
	"errors"
	"testing"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
)

func step(t *testing.T, m Machine, ev Event) Machine {
	t.Helper()
	next, err := Reduce(m, ev)
	if err != nil {
		t.Fatalf("transition %s from %s failed: %v", ev.Type, m.State, err)
	}
	return next
}

func TestHappyPathToCompleted(t *testing.T) {
	m := New()
	if m.State != StateUpload {
		t.Fatalf("new machine must start at upload, got %s", m.State)
	}

	m = step(t, m, Event{
		Type:     EventFileAccepted,
		FileHash: "abc",
		FileName: "orders.csv",
		Records:  []domain.ImportRecord{{RowNumber: 2}},
	})
	if m.State != StateConfirm {
		t.Fatalf("expected confirm after upload, got %s", m.State)
	}
	if m.Context.FileHash != "abc" || len(m.Context.Records) != 1 {
		t.Fatalf("upload context not carried: %+v", m.Context)
	}

	m = step(t, m, Event{Type: EventScopeConfirmed})
	if m.State != StateValidate {
		t.Fatalf("expected validate after confirm, got %s", m.State)
	}

	outcome := &domain.ValidationOutcome{Valid: []domain.ImportRecord{{RowNumber: 2}}}
	m = step(t, m, Event{Type: EventValidationDone, Outcome: outcome})
	if m.State != StateValidated {
		t.Fatalf("expected validated, got %s", m.State)
	}
	if m.Context.Outcome != outcome {
		t.Fatalf("validation outcome not carried")
	}

	m = step(t, m, Event{Type: EventImportStarted})
	if m.State != StateImporting {
		t.Fatalf("expected importing, got %s", m.State)
	}

	summary := &domain.ImportSummary{ImportID: uuid.New(), Total: 1, Successful: 1}
	m = step(t, m, Event{Type: EventImportFinished, Summary: summary})
	if m.State != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State)
	}
	if m.Context.Summary != summary || m.Failed() {
		t.Fatalf("expected a successful completion, got %+v", m.Context)
	}
	if m.RetryAllowed() {
		t.Fatalf("a known outcome must not invite a retry")
	}
}

func TestFixedScopeSkipsConfirm(t *testing.T) {
	m := step(t, New(), Event{Type: EventFileAccepted, ScopeFixed: true, FileHash: "abc"})
	if m.State != StateValidate {
		t.Fatalf("a fixed scope auto-advances past confirm, got %s", m.State)
	}
}

func TestValidationAdvancesEvenWhenUnacceptable(t *testing.T) {
	m := step(t, New(), Event{Type: EventFileAccepted, FileHash: "abc"})
	m = step(t, m, Event{Type: EventScopeConfirmed})

	outcome := &domain.ValidationOutcome{
		Invalid: []domain.InvalidRecord{{Record: domain.ImportRecord{RowNumber: 2}}},
	}
	m = step(t, m, Event{Type: EventValidationDone, Outcome: outcome})
	if m.State != StateValidated {
		t.Fatalf("completing validation advances state regardless of outcome, got %s", m.State)
	}
}

func TestStepFailureCompletesWithError(t *testing.T) {
	m := step(t, New(), Event{Type: EventFileAccepted, FileHash: "abc"})
	failure := errors.New("scope mismatch")
	m = step(t, m, Event{Type: EventStepFailed, Err: failure})

	if m.State != StateCompleted || !m.Failed() {
		t.Fatalf("expected failed completion, got %+v", m)
	}
	if !errors.Is(m.Context.Err, failure) {
		t.Fatalf("expected the step error to be carried, got %v", m.Context.Err)
	}
}

func TestRestartFromAnyState(t *testing.T) {
	states := []Machine{New()}
	m := step(t, New(), Event{Type: EventFileAccepted, FileHash: "abc"})
	states = append(states, m)
	m = step(t, m, Event{Type: EventScopeConfirmed})
	states = append(states, m)
	m = step(t, m, Event{Type: EventValidationDone, Outcome: &domain.ValidationOutcome{}})
	states = append(states, m)
	m = step(t, m, Event{Type: EventImportStarted})
	states = append(states, m)
	m = step(t, m, Event{Type: EventImportFinished, Summary: &domain.ImportSummary{}})
	states = append(states, m)

	for _, from := range states {
		restarted := step(t, from, Event{Type: EventRestart})
		if restarted.State != StateUpload {
			t.Fatalf("restart from %s must return to upload, got %s", from.State, restarted.State)
		}
		if restarted.Context.FileHash != "" || restarted.Context.Summary != nil {
			t.Fatalf("restart must discard context, got %+v", restarted.Context)
		}
	}
}

func TestTimeoutDuringImportingIsUnknownNotFailed(t *testing.T) {
	m := step(t, New(), Event{Type: EventFileAccepted, ScopeFixed: true, FileHash: "abc"})
	m = step(t, m, Event{Type: EventValidationDone, Outcome: &domain.ValidationOutcome{}})
	m = step(t, m, Event{Type: EventImportStarted})

	m = step(t, m, Event{Type: EventOutcomeUnknown})
	if m.State != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State)
	}
	if m.Failed() {
		t.Fatalf("an unknown outcome is not a failure")
	}
	if !m.RetryAllowed() {
		t.Fatalf("an unknown outcome must allow a guarded retry")
	}
}

func TestIllegalTransitionsRejected(t *testing.T) {
	m := New()
	if _, err := Reduce(m, Event{Type: EventImportStarted}); err == nil {
		t.Fatalf("expected import start to be rejected at upload")
	}

	m = step(t, m, Event{Type: EventFileAccepted, FileHash: "abc"})
	if _, err := Reduce(m, Event{Type: EventImportFinished}); err == nil {
		t.Fatalf("expected import finish to be rejected at confirm")
	}

	done := step(t, m, Event{Type: EventStepFailed, Err: errors.New("boom")})
	if _, err := Reduce(done, Event{Type: EventValidationDone}); err == nil {
		t.Fatalf("completed machines only accept restart")
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	m := step(t, New(), Event{Type: EventFileAccepted, FileHash: "abc"})
	before := m

	if _, err := Reduce(m, Event{Type: EventScopeConfirmed}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if m.State != before.State || m.Context.FileHash != before.Context.FileHash {
		t.Fatalf("reduce must not mutate its input: %+v", m)
	}
}
