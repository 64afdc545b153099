package agent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/martinemde/longhaul/harness"
	"github.com/martinemde/longhaul/llm"
)

func testConsole(t *testing.T) (*harness.Console, string) {
	t.Helper()
	dir := t.TempDir()
	open := func(name string) *os.File {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { f.Close() })
		return f
	}
	stdout := open("stdout")
	stderr := open("stderr")
	logFile := open("session.log")
	return harness.NewConsole(stdout, stderr, logFile), filepath.Join(dir, "stdout")
}

func featureListJSON(passes bool) string {
	features := []Feature{{Category: "core", Description: "does the thing", Passes: passes}}
	data, _ := json.Marshal(features)
	return string(data)
}

func TestRuntimeStopsWhenAllFeaturesPass(t *testing.T) {
	projectDir := t.TempDir()
	writeFeatureList(t, projectDir, featureListJSON(true))

	console, stdoutPath := testConsole(t)
	adapter := &scriptedAdapter{responses: []*llm.Response{textResponse("unused")}}
	rt := NewRuntime(scriptedClient(adapter), console)

	err := rt.RunSession(context.Background(), harness.SessionRequest{
		ProjectDir: projectDir,
		Model:      "test-model",
	})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.calls != 0 {
		t.Errorf("no sessions should run when all features pass, got %d calls", adapter.calls)
	}

	out, _ := os.ReadFile(stdoutPath)
	if !strings.Contains(string(out), "All features passing") {
		t.Errorf("expected completion message, got: %q", out)
	}
}

func TestRuntimeInitializerMustProduceFeatureList(t *testing.T) {
	projectDir := t.TempDir()
	console, _ := testConsole(t)

	// Initializer session ends without writing the feature list.
	adapter := &scriptedAdapter{responses: []*llm.Response{textResponse("forgot to write it")}}
	rt := NewRuntime(scriptedClient(adapter), console)

	err := rt.RunSession(context.Background(), harness.SessionRequest{
		ProjectDir: projectDir,
		Model:      "test-model",
	})
	if err == nil || !strings.Contains(err.Error(), FeatureListName) {
		t.Errorf("expected missing feature list error, got %v", err)
	}
}

func TestRuntimeInitializerThenCodingToCompletion(t *testing.T) {
	projectDir := t.TempDir()
	console, _ := testConsole(t)

	// Session 1 (initializer): writes the feature list, one feature failing.
	// Session 2 (coding): marks it passing. The runtime then sees all
	// features passing and stops.
	adapter := &scriptedAdapter{responses: []*llm.Response{
		toolCallResponse("write_file",
			`{"file_path": "feature_list.json", "content": `+jsonQuote(featureListJSON(false))+`}`),
		textResponse("project initialized"),
		toolCallResponse("write_file",
			`{"file_path": "feature_list.json", "content": `+jsonQuote(featureListJSON(true))+`}`),
		textResponse("feature implemented"),
	}}
	rt := NewRuntime(scriptedClient(adapter), console)

	err := rt.RunSession(context.Background(), harness.SessionRequest{
		ProjectDir:    projectDir,
		Model:         "test-model",
		MaxIterations: 5,
	})
	if err != nil {
		t.Fatal(err)
	}

	features, err := LoadFeatureList(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if !AllPassing(features) {
		t.Error("expected all features passing after the run")
	}
	if adapter.calls != 4 {
		t.Errorf("expected 4 LLM calls, got %d", adapter.calls)
	}
}

func TestRuntimeIterationBudget(t *testing.T) {
	projectDir := t.TempDir()
	writeFeatureList(t, projectDir, featureListJSON(false))
	console, stdoutPath := testConsole(t)

	// Coding sessions never make progress.
	adapter := &scriptedAdapter{responses: []*llm.Response{textResponse("stuck")}}
	rt := NewRuntime(scriptedClient(adapter), console)

	err := rt.RunSession(context.Background(), harness.SessionRequest{
		ProjectDir:    projectDir,
		Model:         "test-model",
		MaxIterations: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if adapter.calls != 2 {
		t.Errorf("expected one call per iteration, got %d", adapter.calls)
	}

	out, _ := os.ReadFile(stdoutPath)
	if !strings.Contains(string(out), "Iteration budget exhausted") {
		t.Errorf("expected budget message, got: %q", out)
	}
}

func TestRuntimeCancellationPropagates(t *testing.T) {
	projectDir := t.TempDir()
	writeFeatureList(t, projectDir, featureListJSON(false))
	console, _ := testConsole(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := &scriptedAdapter{responses: []*llm.Response{textResponse("unused")}}
	rt := NewRuntime(scriptedClient(adapter), console)

	err := rt.RunSession(ctx, harness.SessionRequest{
		ProjectDir: projectDir,
		Model:      "test-model",
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// jsonQuote quotes a string for embedding in tool arguments.
func jsonQuote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
