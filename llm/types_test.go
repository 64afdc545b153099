package llm

import (
	"encoding/json"
	"testing"
)

func TestResponseText(t *testing.T) {
	resp := &Response{Message: Message{
		Role: RoleAssistant,
		Content: []ContentPart{
			TextPart("part one "),
			ToolCallPart("c1", "shell", json.RawMessage(`{"command":"ls"}`)),
			TextPart("part two"),
		},
	}}
	if got := resp.Text(); got != "part one part two" {
		t.Errorf("Text() = %q", got)
	}
}

func TestResponseToolCalls(t *testing.T) {
	resp := &Response{Message: Message{
		Role: RoleAssistant,
		Content: []ContentPart{
			TextPart("let me check"),
			ToolCallPart("c1", "read_file", json.RawMessage(`{"file_path":"main.go"}`)),
			ToolCallPart("c2", "shell", json.RawMessage(`{"command":"go test"}`)),
		},
	}}
	calls := resp.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("ToolCalls() = %d, want 2", len(calls))
	}
	if calls[0].Name != "read_file" || calls[1].ID != "c2" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		msg      Message
		wantRole Role
		wantText string
	}{
		{SystemMessage("sys"), RoleSystem, "sys"},
		{UserMessage("usr"), RoleUser, "usr"},
		{AssistantMessage("asst"), RoleAssistant, "asst"},
	}
	for _, tt := range tests {
		if tt.msg.Role != tt.wantRole || tt.msg.TextContent() != tt.wantText {
			t.Errorf("message = %+v", tt.msg)
		}
	}

	tr := ToolResultMessage("c1", "output", true)
	if tr.Role != RoleTool || tr.Content[0].ToolResult == nil || !tr.Content[0].ToolResult.IsError {
		t.Errorf("tool result message = %+v", tr)
	}
}
