package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/martinemde/longhaul/llm"
)

// RegisterCoreTools registers the coding toolset on a ToolRegistry. The
// tools delegate to the session's Workspace.
func RegisterCoreTools(reg *ToolRegistry, defaultTimeoutMs, maxTimeoutMs int) {
	registerReadFile(reg)
	registerWriteFile(reg)
	registerEditFile(reg)
	registerShell(reg, defaultTimeoutMs, maxTimeoutMs)
	registerGrep(reg)
	registerGlob(reg)
}

func registerReadFile(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "read_file",
			Description: "Read a file from the project. Returns line-numbered content.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the file, relative to the project root.",
					},
					"offset": map[string]interface{}{
						"type":        "integer",
						"description": "1-based line number to start reading from.",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of lines to read. Default: 2000.",
					},
				},
				"required": []string{"file_path"},
			},
		},
		Executor: func(arguments json.RawMessage, ws Workspace) (string, error) {
			args, err := parseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			filePath, ok := stringArg(args, "file_path")
			if !ok || filePath == "" {
				return "", fmt.Errorf("file_path is required")
			}
			offset, _ := intArg(args, "offset")
			limit, _ := intArg(args, "limit")
			if limit == 0 {
				limit = 2000
			}
			return ws.ReadFile(filePath, offset, limit)
		},
	})
}

func registerWriteFile(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "write_file",
			Description: "Write content to a file, creating it and any parent directories.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to write to, relative to the project root.",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "The full file content to write.",
					},
				},
				"required": []string{"file_path", "content"},
			},
		},
		Executor: func(arguments json.RawMessage, ws Workspace) (string, error) {
			args, err := parseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			filePath, ok := stringArg(args, "file_path")
			if !ok || filePath == "" {
				return "", fmt.Errorf("file_path is required")
			}
			content, ok := stringArg(args, "content")
			if !ok {
				return "", fmt.Errorf("content is required")
			}
			if err := ws.WriteFile(filePath, content); err != nil {
				return "", err
			}
			return fmt.Sprintf("Wrote %d bytes to %s", len(content), filePath), nil
		},
	})
}

func registerEditFile(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name: "edit_file",
			Description: "Replace an exact string occurrence in a file. old_string must be " +
				"unique in the file unless replace_all is true.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the file to edit.",
					},
					"old_string": map[string]interface{}{
						"type":        "string",
						"description": "Exact text to find in the file.",
					},
					"new_string": map[string]interface{}{
						"type":        "string",
						"description": "Replacement text.",
					},
					"replace_all": map[string]interface{}{
						"type":        "boolean",
						"description": "Replace all occurrences. Default: false.",
					},
				},
				"required": []string{"file_path", "old_string", "new_string"},
			},
		},
		Executor: func(arguments json.RawMessage, ws Workspace) (string, error) {
			args, err := parseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			filePath, ok := stringArg(args, "file_path")
			if !ok || filePath == "" {
				return "", fmt.Errorf("file_path is required")
			}
			oldString, ok := stringArg(args, "old_string")
			if !ok {
				return "", fmt.Errorf("old_string is required")
			}
			newString, _ := stringArg(args, "new_string")
			replaceAll, _ := boolArg(args, "replace_all")

			content, err := ws.ReadFileRaw(filePath)
			if err != nil {
				return "", fmt.Errorf("file not found: %s", filePath)
			}

			count := strings.Count(content, oldString)
			if count == 0 {
				return "", fmt.Errorf("old_string not found in %s", filePath)
			}
			if count > 1 && !replaceAll {
				return "", fmt.Errorf("old_string found %d times in %s; provide more context or set replace_all=true", count, filePath)
			}

			var updated string
			if replaceAll {
				updated = strings.ReplaceAll(content, oldString, newString)
			} else {
				updated = strings.Replace(content, oldString, newString, 1)
			}
			if err := ws.WriteFile(filePath, updated); err != nil {
				return "", err
			}

			replacements := 1
			if replaceAll {
				replacements = count
			}
			return fmt.Sprintf("Replaced %d occurrence(s) in %s", replacements, filePath), nil
		},
	})
}

func registerShell(reg *ToolRegistry, defaultTimeoutMs, maxTimeoutMs int) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "shell",
			Description: "Execute a shell command in the project directory. Returns stdout, stderr, and exit code.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command": map[string]interface{}{
						"type":        "string",
						"description": "The command to run.",
					},
					"timeout_ms": map[string]interface{}{
						"type":        "integer",
						"description": "Override the default command timeout in milliseconds.",
					},
				},
				"required": []string{"command"},
			},
		},
		Executor: func(arguments json.RawMessage, ws Workspace) (string, error) {
			args, err := parseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			command, ok := stringArg(args, "command")
			if !ok || command == "" {
				return "", fmt.Errorf("command is required")
			}
			timeoutMs, _ := intArg(args, "timeout_ms")
			if timeoutMs <= 0 {
				timeoutMs = defaultTimeoutMs
			}
			if timeoutMs > maxTimeoutMs {
				timeoutMs = maxTimeoutMs
			}

			result, err := ws.ExecCommand(context.Background(), command, timeoutMs)
			if err != nil {
				return "", err
			}

			var sb strings.Builder
			sb.WriteString(result.Output())
			if result.TimedOut {
				fmt.Fprintf(&sb, "\n\n[ERROR: Command timed out after %dms. Partial output shown above. "+
					"Retry with a larger timeout_ms if needed.]", timeoutMs)
			}
			if result.ExitCode != 0 && !result.TimedOut {
				fmt.Fprintf(&sb, "\n\n[Exit code: %d]", result.ExitCode)
			}
			return sb.String(), nil
		},
	})
}

func registerGrep(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "grep",
			Description: "Search file contents by regex pattern. Returns matching lines with file paths and line numbers.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Regex pattern to search for.",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Directory or file to search. Default: project root.",
					},
					"glob_filter": map[string]interface{}{
						"type":        "string",
						"description": "File pattern filter (e.g. \"*.go\").",
					},
					"case_insensitive": map[string]interface{}{
						"type":        "boolean",
						"description": "Case insensitive search. Default: false.",
					},
				},
				"required": []string{"pattern"},
			},
		},
		Executor: func(arguments json.RawMessage, ws Workspace) (string, error) {
			args, err := parseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			pattern, ok := stringArg(args, "pattern")
			if !ok || pattern == "" {
				return "", fmt.Errorf("pattern is required")
			}
			path, _ := stringArg(args, "path")
			globFilter, _ := stringArg(args, "glob_filter")
			caseInsensitive, _ := boolArg(args, "case_insensitive")

			return ws.Grep(context.Background(), pattern, path, GrepOptions{
				GlobFilter:      globFilter,
				CaseInsensitive: caseInsensitive,
				MaxResults:      100,
			})
		},
	})
}

func registerGlob(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "glob",
			Description: "Find files matching a glob pattern, relative to the project root.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Glob pattern (e.g. \"**/*.go\").",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Base directory. Default: project root.",
					},
				},
				"required": []string{"pattern"},
			},
		},
		Executor: func(arguments json.RawMessage, ws Workspace) (string, error) {
			args, err := parseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			pattern, ok := stringArg(args, "pattern")
			if !ok || pattern == "" {
				return "", fmt.Errorf("pattern is required")
			}
			path, _ := stringArg(args, "path")

			matches, err := ws.Glob(pattern, path)
			if err != nil {
				return "", err
			}
			if len(matches) == 0 {
				return "No files matched the pattern.", nil
			}
			return strings.Join(matches, "\n"), nil
		},
	})
}
