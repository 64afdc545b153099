package llm

import (
	"context"
	"testing"
)

// mockAdapter is a test double for ProviderAdapter.
type mockAdapter struct {
	name     string
	response *Response
	errs     []error // consumed one per call; nil entries mean success
	calls    int
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Complete(_ context.Context, _ Request) (*Response, error) {
	var err error
	if m.calls < len(m.errs) {
		err = m.errs[m.calls]
	}
	m.calls++
	if err != nil {
		return nil, err
	}
	return m.response, nil
}

func newMockAdapter(name, text string) *mockAdapter {
	return &mockAdapter{
		name: name,
		response: &Response{
			ID:       "test_resp",
			Model:    "test-model",
			Provider: name,
			Message: Message{
				Role:    RoleAssistant,
				Content: []ContentPart{TextPart(text)},
			},
			FinishReason: FinishReason{Reason: "stop"},
			Usage:        Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}
}

func fastRetry(max int) RetryPolicy {
	return RetryPolicy{MaxRetries: max, BaseDelay: 0.001, MaxDelay: 0.01, BackoffMultiplier: 1}
}

func TestClientComplete(t *testing.T) {
	mock := newMockAdapter("test-provider", "Hello!")
	client := NewClient(
		WithProvider("test-provider", mock),
		WithDefaultProvider("test-provider"),
	)

	resp, err := client.Complete(context.Background(), Request{
		Model:    "test-model",
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text() != "Hello!" {
		t.Errorf("Text() = %q", resp.Text())
	}
}

func TestClientSingleProviderBecomesDefault(t *testing.T) {
	mock := newMockAdapter("anthropic", "ok")
	client := NewClient(WithProvider("anthropic", mock))

	if _, err := client.Complete(context.Background(), Request{Model: "unknown-model"}); err != nil {
		t.Fatalf("Complete via implicit default: %v", err)
	}
}

func TestClientRoutesByCatalog(t *testing.T) {
	anthropic := newMockAdapter("anthropic", "from anthropic")
	openai := newMockAdapter("openai", "from openai")
	client := NewClient(
		WithProvider("anthropic", anthropic),
		WithProvider("openai", openai),
		WithDefaultProvider("openai"),
	)

	resp, err := client.Complete(context.Background(), Request{Model: "claude-opus-4-6"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text() != "from anthropic" {
		t.Errorf("catalog routing picked %q", resp.Provider)
	}
}

func TestClientUnknownProvider(t *testing.T) {
	client := NewClient(WithProvider("anthropic", newMockAdapter("anthropic", "x")))

	_, err := client.Complete(context.Background(), Request{Provider: "gemini"})
	if err == nil {
		t.Fatal("expected configuration error for unregistered provider")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("error type = %T, want *ConfigurationError", err)
	}
}

func TestClientNoProviders(t *testing.T) {
	client := NewClient()
	if _, err := client.Complete(context.Background(), Request{Model: "whatever"}); err == nil {
		t.Fatal("expected configuration error with no providers")
	}
}

func TestClientRetriesRetryableErrors(t *testing.T) {
	mock := newMockAdapter("anthropic", "recovered")
	mock.errs = []error{
		&ServerError{ProviderError{ClientError: ClientError{Message: "overloaded"}, Provider: "anthropic", StatusCode: 500, Retryable: true}},
		&ServerError{ProviderError{ClientError: ClientError{Message: "overloaded"}, Provider: "anthropic", StatusCode: 500, Retryable: true}},
	}
	client := NewClient(
		WithProvider("anthropic", mock),
		WithRetryPolicy(fastRetry(3)),
	)

	resp, err := client.Complete(context.Background(), Request{Model: "claude-opus-4-6"})
	if err != nil {
		t.Fatalf("Complete after retries: %v", err)
	}
	if resp.Text() != "recovered" {
		t.Errorf("Text() = %q", resp.Text())
	}
	if mock.calls != 3 {
		t.Errorf("adapter called %d times, want 3", mock.calls)
	}
}

func TestClientDoesNotRetryAuthErrors(t *testing.T) {
	mock := newMockAdapter("anthropic", "never")
	mock.errs = []error{
		&AuthenticationError{ProviderError{ClientError: ClientError{Message: "bad key"}, Provider: "anthropic", StatusCode: 401}},
	}
	client := NewClient(
		WithProvider("anthropic", mock),
		WithRetryPolicy(fastRetry(5)),
	)

	_, err := client.Complete(context.Background(), Request{Model: "claude-opus-4-6"})
	if err == nil {
		t.Fatal("expected authentication error")
	}
	if mock.calls != 1 {
		t.Errorf("adapter called %d times, want 1 (no retry)", mock.calls)
	}
}
