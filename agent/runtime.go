package agent

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/martinemde/longhaul/harness"
	"github.com/martinemde/longhaul/llm"
)

// Runtime implements harness.Runtime. It owns the two-agent pattern: an
// initializer session on a fresh project, then coding sessions until the
// feature list passes, the iteration budget runs out, or the operator
// interrupts.
type Runtime struct {
	Client  *llm.Client
	Console *harness.Console
}

// NewRuntime creates a Runtime over the given LLM client and console.
func NewRuntime(client *llm.Client, console *harness.Console) *Runtime {
	return &Runtime{Client: client, Console: console}
}

// RunSession executes the full autonomous run for one invocation. Every
// durable artifact lives in req.ProjectDir, so an interrupted run resumes
// by calling RunSession again with the same request.
func (r *Runtime) RunSession(ctx context.Context, req harness.SessionRequest) error {
	workspace := NewProjectWorkspace(req.ProjectDir)

	registry := NewToolRegistry()
	config := DefaultSessionConfig()
	if req.Model != "" {
		config.Model = req.Model
	}
	RegisterCoreTools(registry, config.DefaultCommandTimeoutMs, config.MaxCommandTimeoutMs)

	// Initializer session: only when no feature list exists yet.
	if _, err := LoadFeatureList(req.ProjectDir); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(r.Console.Out, "Fresh project: running initializer session")
		if err := r.runOneSession(ctx, registry, workspace, config, InitializerPrompt()); err != nil {
			return err
		}
		if _, err := LoadFeatureList(req.ProjectDir); err != nil {
			return fmt.Errorf("initializer session did not produce %s: %w", FeatureListName, err)
		}
	} else if err != nil {
		return err
	}

	// Coding sessions, one per iteration.
	for iteration := 1; req.MaxIterations <= 0 || iteration <= req.MaxIterations; iteration++ {
		features, err := LoadFeatureList(req.ProjectDir)
		if err != nil {
			return err
		}
		if AllPassing(features) {
			fmt.Fprintf(r.Console.Out, "\nAll features passing (%s). Done.\n", ProgressSummary(features))
			return nil
		}

		fmt.Fprintf(r.Console.Out, "\n--- Iteration %d (%s) ---\n", iteration, ProgressSummary(features))
		if err := r.runOneSession(ctx, registry, workspace, config, CodingPrompt(ProgressSummary(features))); err != nil {
			return err
		}
	}

	features, err := LoadFeatureList(req.ProjectDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Console.Out, "\nIteration budget exhausted (%s).\n", ProgressSummary(features))
	return nil
}

// runOneSession runs a single session to completion, draining its events
// to the console.
func (r *Runtime) runOneSession(ctx context.Context, registry *ToolRegistry, workspace Workspace, config SessionConfig, goal string) error {
	sess := NewSession(r.Client, registry, workspace, &config)
	printer := NewEventPrinter(r.Console)

	done := make(chan struct{})
	go func() {
		printer.Consume(sess.Events())
		close(done)
	}()

	err := sess.Run(ctx, goal)
	sess.Close()
	<-done
	return err
}
