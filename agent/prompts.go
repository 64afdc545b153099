package agent

import (
	"fmt"
	"strings"
	"time"
)

// BuildSystemPrompt assembles the system prompt for a coding session:
// base instructions, environment context, then tool descriptions.
func BuildSystemPrompt(ws Workspace, registry *ToolRegistry, model string) string {
	var sb strings.Builder

	sb.WriteString(baseSystemPrompt)
	sb.WriteString("\n\n")

	sb.WriteString(buildEnvironmentContext(ws, model))
	sb.WriteString("\n\n")

	sb.WriteString("# Available Tools\n\n")
	for _, def := range registry.Definitions() {
		fmt.Fprintf(&sb, "## %s\n%s\n\n", def.Name, def.Description)
	}

	return sb.String()
}

// buildEnvironmentContext generates the structured environment block.
func buildEnvironmentContext(ws Workspace, model string) string {
	var sb strings.Builder
	sb.WriteString("<environment>\n")
	fmt.Fprintf(&sb, "Working directory: %s\n", ws.Root())
	fmt.Fprintf(&sb, "Platform: %s\n", ws.Platform())
	fmt.Fprintf(&sb, "Today's date: %s\n", time.Now().Format("2006-01-02"))
	if model != "" {
		fmt.Fprintf(&sb, "Model: %s\n", model)
	}
	sb.WriteString("</environment>")
	return sb.String()
}

const baseSystemPrompt = `You are an autonomous coding agent working on a long-running project. You read files, edit code, run commands, and iterate until your current goal is done. All paths are relative to the project directory, which is your working directory.

# Core Principles

- Read files before editing them. Understand existing code before suggesting modifications.
- Prefer editing existing files over creating new ones.
- Use the edit_file tool for modifications. The old_string parameter must be an exact match of text in the file and must be unique. If old_string appears multiple times, provide more surrounding context to make it unique.
- Keep changes minimal and focused. Only make changes that are directly requested or clearly necessary.
- After making changes, verify them by reading the modified file or running relevant tests.
- When running shell commands, prefer short-running commands. Use timeouts for potentially long-running operations.

# Persistence

- Your session may be interrupted at any time. Leave the project in a state another session can pick up: commit working increments, keep feature_list.json accurate, and never leave half-applied edits.
- All state that matters lives in files in the project directory. Do not rely on anything outside it.

# Error Handling

- If a tool call fails, read the error, adjust, and retry with corrected parameters.
- If a command produces unexpected output, investigate before continuing.
- Never mark work as done without verifying it.`

// InitializerPrompt is the driving input for the first session on a fresh
// project. It sets up the project skeleton and the feature list that every
// later session works from.
func InitializerPrompt() string {
	return `You are initializing a brand new project.

1. Read app_spec.txt in the project directory. It describes the application to build.
2. Create feature_list.json in the project directory: a JSON array of feature objects, each with "category" (string), "description" (string), and "passes" (boolean). Derive the features from the spec, covering every piece of described functionality. Every feature starts with "passes": false. Aim for small, independently testable features.
3. Initialize a git repository in the project directory and make an initial commit containing app_spec.txt and feature_list.json.
4. Set up the minimal project skeleton (directory layout, build configuration, dependency manifest) appropriate for the spec, and commit it.

Do not implement features in this session. Your job is to leave a project that coding sessions can make steady progress on.`
}

// CodingPrompt is the driving input for each coding session. progress is a
// short human-readable summary of the feature list, shown so the model knows
// where the project stands without re-deriving it.
func CodingPrompt(progress string) string {
	var sb strings.Builder
	sb.WriteString(`Continue work on the project.

1. Read app_spec.txt and feature_list.json to understand the application and its current state.
`)
	if progress != "" {
		fmt.Fprintf(&sb, "\nCurrent progress: %s\n", progress)
	}
	sb.WriteString(`
2. Pick the highest-value feature with "passes": false. Review recent git history to see what the previous session was working on.
3. Implement the feature. Write or update tests that demonstrate it works.
4. Run the tests. Only when they pass, set the feature's "passes" field to true in feature_list.json. Never mark a feature passing without a passing test, and never remove or reword existing features.
5. Commit your work with a message describing the feature.

Work on as many features as you can get done properly. Quality over quantity: a feature marked passing must actually work.`)
	return sb.String()
}

// LoopNudge is injected when the session repeats the same tool calls.
const LoopNudge = `You appear to be repeating the same tool calls with the same arguments. Step back and reconsider: re-read the relevant files, check your assumptions, and try a different approach.`
