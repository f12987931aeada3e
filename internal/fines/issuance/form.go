package issuance

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	dErrors "finetrack/pkg/domain-errors"
)

// Form states.
const (
	StateIdle       = "idle"
	StateValidating = "validating"
	StateSubmitting = "submitting"
	StateError      = "error"
)

// Form events.
const (
	eventValidate = "validate"
	eventSubmit   = "submit"
	eventDone     = "done"
	eventFail     = "fail"
	eventRetry    = "retry"
	eventReset    = "reset"
)

// Persist hands a validated submission to the store.
type Persist func(ctx context.Context, sub Submission) error

// Form tracks one issuance attempt: idle -> validating -> submitting -> idle,
// with error reachable from validating or submitting and retry going back to
// validating. The validator is passed per submit so every attempt runs against
// the latest snapshot.
type Form struct {
	FSM     *fsm.FSM
	lastErr error
}

func NewForm() *Form {
	f := &Form{}
	f.FSM = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventValidate, Src: []string{StateIdle}, Dst: StateValidating},
			{Name: eventSubmit, Src: []string{StateValidating}, Dst: StateSubmitting},
			{Name: eventDone, Src: []string{StateSubmitting}, Dst: StateIdle},
			{Name: eventFail, Src: []string{StateValidating, StateSubmitting}, Dst: StateError},
			{Name: eventRetry, Src: []string{StateError}, Dst: StateValidating},
			{Name: eventReset, Src: []string{StateError}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
	return f
}

// State is the current form state.
func (f *Form) State() string { return f.FSM.Current() }

// LastError is the error that moved the form into the error state, if any.
func (f *Form) LastError() error { return f.lastErr }

// Submit validates d with v and, on success, persists it. From the error state
// it retries. A form that is already validating or submitting is busy.
func (f *Form) Submit(ctx context.Context, v *Validator, d Draft, now time.Time, persist Persist) (Submission, error) {
	var start string
	switch {
	case f.FSM.Can(eventValidate):
		start = eventValidate
	case f.FSM.Can(eventRetry):
		start = eventRetry
	default:
		return Submission{}, dErrors.New(dErrors.CodeConflict, "submission already in progress")
	}
	if err := f.FSM.Event(ctx, start); err != nil {
		return Submission{}, dErrors.Wrap(err, dErrors.CodeInternal, "form transition failed")
	}

	sub, err := v.Validate(d, now)
	if err != nil {
		return Submission{}, f.fail(ctx, err)
	}

	if err := f.FSM.Event(ctx, eventSubmit); err != nil {
		return Submission{}, dErrors.Wrap(err, dErrors.CodeInternal, "form transition failed")
	}
	if err := persist(ctx, sub); err != nil {
		return Submission{}, f.fail(ctx, err)
	}
	if err := f.FSM.Event(ctx, eventDone); err != nil {
		return Submission{}, dErrors.Wrap(err, dErrors.CodeInternal, "form transition failed")
	}
	f.lastErr = nil
	return sub, nil
}

// Reset abandons a failed attempt.
func (f *Form) Reset(ctx context.Context) {
	if f.FSM.Can(eventReset) {
		_ = f.FSM.Event(ctx, eventReset)
	}
	f.lastErr = nil
}

func (f *Form) fail(ctx context.Context, cause error) error {
	f.lastErr = cause
	_ = f.FSM.Event(ctx, eventFail)
	return cause
}
