// Package agent implements the autonomous coding runtime driven by the
// harness. It realizes the two-agent pattern: a one-shot initializer session
// that reads the provisioned spec and writes a feature list with every entry
// failing, followed by coding sessions, one per iteration, that work the
// list until everything passes or the iteration budget runs out.
//
// Runtime satisfies harness.Runtime and is the only entry point the harness
// uses. Inside a session the flow is a conventional agentic loop: an LLM
// completion with tool definitions, sequential tool dispatch against the
// project workspace, output truncation, and repeated-call detection, with a
// typed event stream rendered to the harness console (and therefore into
// the combined session log).
//
// All state that matters for resumption lives in the project directory
// (app_spec.txt, feature_list.json, the code the agent writes); the runtime
// itself keeps nothing across invocations.
package agent
