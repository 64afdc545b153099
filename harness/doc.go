// Package harness implements the iteration-control and resumable-project-state
// core of longhaul.
//
// It resolves a stable project directory from CLI input, provisions the
// specification bundle into it exactly once, captures all session output to
// both the terminal and a durable log file, and drives a single asynchronous
// call into the agent runtime with a clean interrupt/resume contract.
//
// The strict startup sequence is:
//
//	ResolveProjectDir -> Provisioner.Provision -> NewConsole -> Driver.Run
//
// Identity resolution and provisioning are synchronous and complete before
// the log file is opened (the log lives inside the project directory) and
// before the runtime sees the project, so the agent can never observe a
// half-provisioned spec.
//
// Interruption is a soft terminal state: the project directory is left
// exactly as the agent last wrote it, and re-running the harness with the
// same identity-resolving arguments resumes the session.
package harness
