package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/martinemde/longhaul/llm"
)

// scriptedAdapter returns canned responses in order. When the script runs
// out it keeps returning the final response.
type scriptedAdapter struct {
	responses []*llm.Response
	errs      []error
	calls     int
}

func (a *scriptedAdapter) Name() string { return "mock" }

func (a *scriptedAdapter) Complete(_ context.Context, _ llm.Request) (*llm.Response, error) {
	i := a.calls
	a.calls++
	if i < len(a.errs) && a.errs[i] != nil {
		return nil, a.errs[i]
	}
	if i >= len(a.responses) {
		i = len(a.responses) - 1
	}
	if i < 0 {
		return nil, fmt.Errorf("scripted adapter has no responses")
	}
	return a.responses[i], nil
}

func textResponse(text string) *llm.Response {
	return &llm.Response{
		ID:      "resp_text",
		Message: llm.Message{Role: llm.RoleAssistant, Content: []llm.ContentPart{llm.TextPart(text)}},
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

func toolCallResponse(name, args string) *llm.Response {
	return &llm.Response{
		ID: "resp_tool",
		Message: llm.Message{Role: llm.RoleAssistant, Content: []llm.ContentPart{
			llm.ToolCallPart("tc_1", name, json.RawMessage(args)),
		}},
		Usage: llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

func scriptedClient(adapter *scriptedAdapter) *llm.Client {
	return llm.NewClient(llm.WithProvider("mock", adapter))
}

func testSessionConfig() *SessionConfig {
	cfg := DefaultSessionConfig()
	cfg.Model = "test-model" // not in the catalog, routes to the only provider
	return &cfg
}

// drainEvents collects every event a session emits. Call the returned
// function after sess.Close to get the slice.
func drainEvents(sess *Session) func() []Event {
	var events []Event
	done := make(chan struct{})
	go func() {
		for event := range sess.Events() {
			events = append(events, event)
		}
		close(done)
	}()
	return func() []Event {
		<-done
		return events
	}
}

func TestSessionNaturalCompletion(t *testing.T) {
	adapter := &scriptedAdapter{responses: []*llm.Response{textResponse("all done")}}
	sess := NewSession(scriptedClient(adapter), NewToolRegistry(), NewProjectWorkspace(t.TempDir()), testSessionConfig())
	collect := drainEvents(sess)

	err := sess.Run(context.Background(), "do the thing")
	sess.Close()
	if err != nil {
		t.Fatal(err)
	}

	history := sess.History()
	if len(history) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(history))
	}
	if history[1].Assistant.Content != "all done" {
		t.Errorf("unexpected assistant content: %q", history[1].Assistant.Content)
	}
	if adapter.calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", adapter.calls)
	}

	events := collect()
	last := events[len(events)-1]
	if last.Kind != EventSessionEnd || last.Data["reason"] != "completed" {
		t.Errorf("expected completed session_end, got %+v", last)
	}
}

func TestSessionToolCallRoundTrip(t *testing.T) {
	reg := NewToolRegistry()
	RegisterCoreTools(reg, 5000, 10000)
	ws := NewProjectWorkspace(t.TempDir())

	adapter := &scriptedAdapter{responses: []*llm.Response{
		toolCallResponse("write_file", `{"file_path": "out.txt", "content": "written by tool"}`),
		textResponse("done"),
	}}
	sess := NewSession(scriptedClient(adapter), reg, ws, testSessionConfig())
	collect := drainEvents(sess)

	if err := sess.Run(context.Background(), "write the file"); err != nil {
		t.Fatal(err)
	}
	sess.Close()
	collect()

	raw, err := ws.ReadFileRaw("out.txt")
	if err != nil {
		t.Fatal("tool call did not write the file:", err)
	}
	if raw != "written by tool" {
		t.Errorf("unexpected file content: %q", raw)
	}

	// History: user, assistant(tool call), tool results, assistant(text).
	history := sess.History()
	if len(history) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(history))
	}
	if history[2].Kind != TurnToolResults {
		t.Errorf("expected tool results turn, got %s", history[2].Kind)
	}
	if history[2].ToolResults.Results[0].IsError {
		t.Error("tool result should not be an error")
	}
}

func TestSessionUnknownToolReturnsErrorResult(t *testing.T) {
	adapter := &scriptedAdapter{responses: []*llm.Response{
		toolCallResponse("launch_rockets", `{}`),
		textResponse("giving up"),
	}}
	sess := NewSession(scriptedClient(adapter), NewToolRegistry(), NewProjectWorkspace(t.TempDir()), testSessionConfig())
	collect := drainEvents(sess)

	if err := sess.Run(context.Background(), "go"); err != nil {
		t.Fatal(err)
	}
	sess.Close()
	collect()

	history := sess.History()
	result := history[2].ToolResults.Results[0]
	if !result.IsError || !strings.Contains(result.Content, "unknown tool") {
		t.Errorf("expected unknown-tool error result, got %+v", result)
	}
}

func TestSessionCancelledBeforeCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := &scriptedAdapter{responses: []*llm.Response{textResponse("never")}}
	sess := NewSession(scriptedClient(adapter), NewToolRegistry(), NewProjectWorkspace(t.TempDir()), testSessionConfig())
	collect := drainEvents(sess)

	err := sess.Run(ctx, "go")
	sess.Close()
	collect()

	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if adapter.calls != 0 {
		t.Errorf("no LLM calls should happen after cancellation, got %d", adapter.calls)
	}
}

func TestSessionRoundLimit(t *testing.T) {
	reg := NewToolRegistry()
	RegisterCoreTools(reg, 5000, 10000)

	adapter := &scriptedAdapter{responses: []*llm.Response{
		toolCallResponse("glob", `{"pattern": "*.go"}`),
	}}
	cfg := testSessionConfig()
	cfg.MaxToolRounds = 3
	cfg.EnableLoopDetection = false
	sess := NewSession(scriptedClient(adapter), reg, NewProjectWorkspace(t.TempDir()), cfg)
	collect := drainEvents(sess)

	if err := sess.Run(context.Background(), "search forever"); err != nil {
		t.Fatal(err)
	}
	sess.Close()

	if adapter.calls != 3 {
		t.Errorf("expected 3 LLM calls before the round limit, got %d", adapter.calls)
	}

	var sawLimit bool
	for _, event := range collect() {
		if event.Kind == EventRoundLimit {
			sawLimit = true
		}
	}
	if !sawLimit {
		t.Error("expected a round_limit event")
	}
}

func TestSessionLoopDetectionInjectsNudge(t *testing.T) {
	reg := NewToolRegistry()
	RegisterCoreTools(reg, 5000, 10000)

	adapter := &scriptedAdapter{responses: []*llm.Response{
		toolCallResponse("glob", `{"pattern": "*.go"}`),
	}}
	cfg := testSessionConfig()
	cfg.MaxToolRounds = 12
	cfg.LoopDetectionWindow = 4
	sess := NewSession(scriptedClient(adapter), reg, NewProjectWorkspace(t.TempDir()), cfg)
	collect := drainEvents(sess)

	if err := sess.Run(context.Background(), "search forever"); err != nil {
		t.Fatal(err)
	}
	sess.Close()
	collect()

	var sawNudge bool
	for _, turn := range sess.History() {
		if turn.Kind == TurnNudge {
			sawNudge = true
		}
	}
	if !sawNudge {
		t.Error("expected a nudge turn after repeated identical tool calls")
	}
}

func TestSessionUnrecoverableError(t *testing.T) {
	adapter := &scriptedAdapter{errs: []error{&llm.AuthenticationError{ProviderError: llm.ProviderError{
		ClientError: llm.ClientError{Message: "bad key"},
		Provider:    "mock",
		StatusCode:  401,
	}}}}
	sess := NewSession(scriptedClient(adapter), NewToolRegistry(), NewProjectWorkspace(t.TempDir()), testSessionConfig())
	collect := drainEvents(sess)

	err := sess.Run(context.Background(), "go")
	sess.Close()
	collect()

	if err == nil || !strings.Contains(err.Error(), "unrecoverable") {
		t.Errorf("expected unrecoverable error, got %v", err)
	}
}
