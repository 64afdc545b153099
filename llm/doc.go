// Package llm is the model transport for the longhaul agent runtime. It
// wraps the gollm library (github.com/teilomillet/gollm) behind a small
// provider-agnostic client so the agent loop never speaks to a provider SDK
// directly.
//
// The harness drives unattended batch sessions, so the surface is
// deliberately narrow: blocking completions with tool definitions. There is
// no streaming and no multimodal content.
//
//	adapter, _ := llm.NewGollmAdapter("anthropic", "")
//	client := llm.NewClient(llm.WithProvider("anthropic", adapter))
//
//	resp, err := client.Complete(ctx, llm.Request{
//	    Model:    "claude-opus-4-6",
//	    Messages: []llm.Message{llm.UserMessage("hello")},
//	})
//
// Complete applies the client's retry policy: rate limits and server errors
// are retried with exponential backoff, everything the taxonomy marks
// non-retryable surfaces immediately.
package llm
