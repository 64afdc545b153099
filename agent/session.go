package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martinemde/longhaul/llm"
)

// SessionConfig holds configuration for a single session.
type SessionConfig struct {
	Model                   string         `json:"model"`
	MaxToolRounds           int            `json:"max_tool_rounds"` // 0 = unlimited
	DefaultCommandTimeoutMs int            `json:"default_command_timeout_ms"`
	MaxCommandTimeoutMs     int            `json:"max_command_timeout_ms"`
	EnableLoopDetection     bool           `json:"enable_loop_detection"`
	LoopDetectionWindow     int            `json:"loop_detection_window"`
	ContextWindowTokens     int            `json:"context_window_tokens"`
	ToolCharLimits          map[string]int `json:"tool_char_limits,omitempty"`
}

// DefaultSessionConfig returns the default configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Model:                   llm.DefaultModel,
		MaxToolRounds:           200,
		DefaultCommandTimeoutMs: 120000,  // 2 minutes
		MaxCommandTimeoutMs:     600000,  // 10 minutes
		EnableLoopDetection:     true,
		LoopDetectionWindow:     10,
		ContextWindowTokens:     200000,
	}
}

// Session runs one agentic loop: a single goal driven to natural
// completion, a round limit, or cancellation.
type Session struct {
	id        string
	client    *llm.Client
	registry  *ToolRegistry
	workspace Workspace
	emitter   *EventEmitter
	config    SessionConfig
	history   []Turn
	mu        sync.Mutex
}

// NewSession creates a session over the given client, tool registry, and
// workspace.
func NewSession(client *llm.Client, registry *ToolRegistry, workspace Workspace, config *SessionConfig) *Session {
	sessionID := uuid.New().String()

	cfg := DefaultSessionConfig()
	if config != nil {
		cfg = *config
	}

	return &Session{
		id:        sessionID,
		client:    client,
		registry:  registry,
		workspace: workspace,
		emitter:   NewEventEmitter(sessionID, 256),
		config:    cfg,
		history:   make([]Turn, 0),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Events returns the session's event channel. The host must drain it.
func (s *Session) Events() <-chan Event { return s.emitter.Events() }

// Close closes the event channel. Call after Run returns.
func (s *Session) Close() { s.emitter.Close() }

// History returns a copy of the conversation history.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	historyCopy := make([]Turn, len(s.history))
	copy(historyCopy, s.history)
	return historyCopy
}

// Run drives the goal to completion. It returns ctx.Err() when cancelled
// so the caller can distinguish interruption from failure.
func (s *Session) Run(ctx context.Context, goal string) error {
	s.mu.Lock()
	s.history = append(s.history, NewUserTurn(goal))
	s.mu.Unlock()
	s.emitter.Emit(EventSessionStart, map[string]interface{}{
		"goal":  goal,
		"model": s.config.Model,
	})

	systemPrompt := BuildSystemPrompt(s.workspace, s.registry, s.config.Model)
	toolDefs := s.registry.Definitions()

	roundCount := 0

	for {
		// 1. Check limits.
		if s.config.MaxToolRounds > 0 && roundCount >= s.config.MaxToolRounds {
			s.emitter.Emit(EventRoundLimit, map[string]interface{}{
				"round": roundCount,
			})
			break
		}

		// 2. Check cancellation before the next LLM call.
		select {
		case <-ctx.Done():
			s.emitter.Emit(EventSessionEnd, map[string]interface{}{
				"reason": "cancelled",
			})
			return ctx.Err()
		default:
		}

		// 3. Build and send the LLM request.
		request := llm.Request{
			Model:      s.config.Model,
			Messages:   append([]llm.Message{llm.SystemMessage(systemPrompt)}, historyToMessages(s.History())...),
			Tools:      toolDefs,
			ToolChoice: &llm.ToolChoice{Mode: "auto"},
		}

		response, err := s.client.Complete(ctx, request)
		if err != nil {
			s.emitter.Emit(EventError, map[string]interface{}{
				"error": err.Error(),
			})
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !llm.IsRetryable(err) {
				return fmt.Errorf("unrecoverable LLM error: %w", err)
			}
			return fmt.Errorf("LLM error after retries: %w", err)
		}

		// 4. Record the assistant turn.
		toolCalls := response.ToolCalls()
		s.mu.Lock()
		s.history = append(s.history, NewAssistantTurn(response.Text(), toolCalls, response.Usage, response.ID))
		s.mu.Unlock()

		if response.Text() != "" {
			s.emitter.Emit(EventAssistantText, map[string]interface{}{
				"text": response.Text(),
			})
		}

		// 5. Context window awareness.
		s.checkContextUsage(response.Usage)

		// 6. No tool calls means natural completion.
		if len(toolCalls) == 0 {
			break
		}

		// 7. Execute tool calls sequentially. Tools mutate one shared
		// workspace, so ordering must match the model's intent.
		roundCount++
		results := s.executeToolCalls(ctx, toolCalls)
		s.mu.Lock()
		s.history = append(s.history, NewToolResultsTurn(results))
		s.mu.Unlock()

		// 8. Loop detection.
		if s.config.EnableLoopDetection && DetectLoop(s.History(), s.config.LoopDetectionWindow) {
			s.mu.Lock()
			s.history = append(s.history, NewNudgeTurn(LoopNudge))
			s.mu.Unlock()
			s.emitter.Emit(EventLoopWarning, map[string]interface{}{
				"window": s.config.LoopDetectionWindow,
			})
		}
	}

	s.emitter.Emit(EventSessionEnd, map[string]interface{}{
		"reason": "completed",
		"rounds": roundCount,
	})
	return nil
}

func (s *Session) executeToolCalls(ctx context.Context, toolCalls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(toolCalls))
	for i, toolCall := range toolCalls {
		results[i] = s.executeSingleTool(ctx, toolCall)
	}
	return results
}

func (s *Session) executeSingleTool(_ context.Context, toolCall llm.ToolCall) llm.ToolResult {
	s.emitter.Emit(EventToolCallStart, map[string]interface{}{
		"tool_call_id": toolCall.ID,
		"name":         toolCall.Name,
		"arguments":    string(toolCall.Arguments),
	})

	tool := s.registry.Get(toolCall.Name)
	if tool == nil {
		errMsg := fmt.Sprintf("unknown tool: %s", toolCall.Name)
		s.emitter.Emit(EventToolCallEnd, map[string]interface{}{
			"tool_call_id": toolCall.ID,
			"name":         toolCall.Name,
			"error":        errMsg,
		})
		return llm.ToolResult{ToolCallID: toolCall.ID, Content: errMsg, IsError: true}
	}

	start := time.Now()
	output, err := tool.Executor(toolCall.Arguments, s.workspace)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		s.emitter.Emit(EventToolCallEnd, map[string]interface{}{
			"tool_call_id": toolCall.ID,
			"name":         toolCall.Name,
			"error":        err.Error(),
			"duration_ms":  durationMs,
		})
		return llm.ToolResult{ToolCallID: toolCall.ID, Content: err.Error(), IsError: true}
	}

	// The event stream carries the full output; the model sees the
	// truncated version.
	s.emitter.Emit(EventToolCallEnd, map[string]interface{}{
		"tool_call_id": toolCall.ID,
		"name":         toolCall.Name,
		"output":       output,
		"duration_ms":  durationMs,
	})

	truncated := TruncateToolOutput(output, toolCall.Name)
	return llm.ToolResult{ToolCallID: toolCall.ID, Content: truncated}
}

// checkContextUsage emits a warning event when the conversation approaches
// the model's context window.
func (s *Session) checkContextUsage(usage llm.Usage) {
	if s.config.ContextWindowTokens <= 0 || usage.TotalTokens == 0 {
		return
	}
	ratio := float64(usage.TotalTokens) / float64(s.config.ContextWindowTokens)
	if ratio >= 0.8 {
		s.emitter.Emit(EventContextUsage, map[string]interface{}{
			"total_tokens": usage.TotalTokens,
			"window":       s.config.ContextWindowTokens,
			"ratio":        ratio,
		})
	}
}
