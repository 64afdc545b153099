package llm

import "testing"

func TestGetModelInfo(t *testing.T) {
	info := GetModelInfo("claude-opus-4-6")
	if info == nil {
		t.Fatal("catalog missing claude-opus-4-6")
	}
	if info.Provider != "anthropic" {
		t.Errorf("provider = %q", info.Provider)
	}

	if GetModelInfo("no-such-model") != nil {
		t.Error("unknown model should return nil")
	}
}

func TestGetModelInfoAliases(t *testing.T) {
	for alias, want := range map[string]string{
		"opus":   "claude-opus-4-6",
		"sonnet": "claude-sonnet-4-5",
		"OPUS":   "claude-opus-4-6", // case-insensitive
	} {
		info := GetModelInfo(alias)
		if info == nil || info.ID != want {
			t.Errorf("alias %q resolved to %+v, want %s", alias, info, want)
		}
	}
}

func TestResolveModelPassthrough(t *testing.T) {
	if got := ResolveModel("opus"); got != "claude-opus-4-6" {
		t.Errorf("ResolveModel(opus) = %q", got)
	}
	// Newer-than-catalog models pass through unchanged.
	if got := ResolveModel("claude-opus-5"); got != "claude-opus-5" {
		t.Errorf("ResolveModel passthrough = %q", got)
	}
}

func TestListModels(t *testing.T) {
	anthropic := ListModels("anthropic")
	if len(anthropic) == 0 {
		t.Fatal("no anthropic models in catalog")
	}
	for _, m := range anthropic {
		if m.Provider != "anthropic" {
			t.Errorf("ListModels(anthropic) returned %s/%s", m.Provider, m.ID)
		}
	}

	all := ListModels("")
	if len(all) != len(Models) {
		t.Errorf("ListModels(\"\") = %d entries, want %d", len(all), len(Models))
	}
}
