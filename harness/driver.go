package harness

import (
	"context"
	"errors"
	"fmt"
)

// Outcome is the tagged result of one session drive. It is reported to the
// operator as log text only; resumption works by re-running against the same
// project directory, not by reading a checkpoint.
type Outcome int

const (
	// OutcomeCompleted means the runtime returned normally: the iteration
	// budget was exhausted or the agent declared the work done.
	OutcomeCompleted Outcome = iota

	// OutcomeInterrupted means the in-flight runtime call was cancelled by
	// an external interruption signal. The project state on disk remains
	// valid and resumable; this is a soft terminal state.
	OutcomeInterrupted

	// OutcomeFatal means an unrecoverable error propagated from the runtime.
	// Fatal errors are never swallowed: silent failure of a long-running
	// unattended session is worse than a noisy crash.
	OutcomeFatal
)

// String returns the operator-facing name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SessionRequest carries everything the agent runtime needs for one
// multi-iteration session. MaxIterations <= 0 means unbounded: the runtime
// keeps iterating until it self-declares completion or is interrupted.
type SessionRequest struct {
	ProjectDir    string
	Model         string
	MaxIterations int
	SpecFile      string
	ExtraFiles    []string
}

// Runtime is the boundary to the agent runtime: a single asynchronous
// operation that completes with no structured value on success, returns the
// context's error on cancellation, or returns any other error on fatal
// failure. The harness performs no polling and no partial-result inspection
// while it runs.
type Runtime interface {
	RunSession(ctx context.Context, req SessionRequest) error
}

// Driver owns the top-level runtime invocation and the interrupt/fatal
// boundary. It is the only place that distinguishes interruption from fatal
// failure; lower layers signal failure by returning errors immediately.
type Driver struct {
	Runtime Runtime
	Console *Console
}

// Run issues exactly one call into the runtime and classifies how it
// settled. On interruption it prints a resumption hint and returns a nil
// error; on fatal failure it prints the error and returns it so the caller
// propagates a non-zero exit. No cleanup of the project directory is
// performed in either case.
func (d *Driver) Run(ctx context.Context, req SessionRequest) (Outcome, error) {
	err := d.Runtime.RunSession(ctx, req)
	switch {
	case err == nil:
		return OutcomeCompleted, nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(d.Console.Out, "\n\nInterrupted by user")
		fmt.Fprintln(d.Console.Out, "To resume, run the same command again")
		return OutcomeInterrupted, nil
	default:
		fmt.Fprintf(d.Console.Err, "\nFatal error: %v\n", err)
		return OutcomeFatal, err
	}
}
