package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/keketsolithane/keketso/internal/store"
)

// ErrBusy is returned when the draft's token already has a submission in
// flight.
var ErrBusy = errors.New("submission already in progress")

// State is the position of a draft in the submission workflow.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the result of one submit attempt.
type Outcome int

const (
	// OutcomeIncomplete means the required-field gate blocked the attempt.
	OutcomeIncomplete Outcome = iota + 1
	// OutcomeBusy means another submission holds the same token.
	OutcomeBusy
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeBusy:
		return "busy"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Messages are the status lines a form shows after a submission. Rejected
// and Unexpected are format strings taking the error text.
type Messages struct {
	Success    string
	Rejected   string
	Unexpected string
}

func (m Messages) failure(err error) string {
	var se *store.Error
	if errors.As(err, &se) {
		return fmt.Sprintf(m.Rejected, se.Message)
	}
	return fmt.Sprintf(m.Unexpected, err.Error())
}

// Workflow runs the submit transition for one draft.
type Workflow struct {
	guard  *Guard
	token  string
	msgs   Messages
	state  State
	status string
}

func newWorkflow(token string, guard *Guard, msgs Messages) *Workflow {
	if token == "" {
		token = uuid.NewString()
	}
	if guard == nil {
		guard = NewGuard()
	}
	return &Workflow{guard: guard, token: token, msgs: msgs}
}

// Token identifies the draft to the in-flight guard. It changes after every
// successful submission.
func (w *Workflow) Token() string { return w.token }

func (w *Workflow) State() State { return w.state }

// Status is the message from the last completed submission, or "".
func (w *Workflow) Status() string { return w.status }

// run validates draft, then calls send exactly once. reset is called only
// when send succeeds.
func (w *Workflow) run(ctx context.Context, draft any, send func(context.Context) error, reset func()) (Outcome, error) {
	if err := check(draft); err != nil {
		return OutcomeIncomplete, err
	}
	token := w.token
	if !w.guard.Acquire(token) {
		return OutcomeBusy, ErrBusy
	}
	defer w.guard.Release(token)

	w.status = ""
	w.state = Submitting
	if err := send(ctx); err != nil {
		w.state = Failed
		w.status = w.msgs.failure(err)
		return OutcomeFailure, err
	}
	reset()
	w.token = uuid.NewString()
	w.state = Succeeded
	w.status = w.msgs.Success
	return OutcomeSuccess, nil
}
