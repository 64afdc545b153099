package llm

import "strings"

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string   `json:"id"`
	Provider      string   `json:"provider"`
	DisplayName   string   `json:"display_name"`
	ContextWindow int      `json:"context_window"`
	MaxOutput     int      `json:"max_output"`
	Aliases       []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog. The harness targets Anthropic models
// for coding sessions; the OpenAI entries exist so --model can point an
// experiment at another provider without code changes.
var Models = []ModelInfo{
	{
		ID: "claude-opus-4-6", Provider: "anthropic", DisplayName: "Claude Opus 4.6",
		ContextWindow: 200000, MaxOutput: 32768,
		Aliases: []string{"opus", "claude-opus"},
	},
	{
		ID: "claude-sonnet-4-5", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5",
		ContextWindow: 200000, MaxOutput: 16384,
		Aliases: []string{"sonnet", "claude-sonnet"},
	},
	{
		ID: "gpt-5.2", Provider: "openai", DisplayName: "GPT-5.2",
		ContextWindow: 1047576, MaxOutput: 32768,
		Aliases: []string{"gpt5"},
	},
	{
		ID: "gpt-5.2-codex", Provider: "openai", DisplayName: "GPT-5.2 Codex",
		ContextWindow: 1047576, MaxOutput: 32768,
		Aliases: []string{"codex"},
	},
}

// DefaultModel is used when the operator does not pass --model.
const DefaultModel = "claude-opus-4-6"

// GetModelInfo returns the catalog entry for a model ID or alias, or nil if
// unknown.
func GetModelInfo(modelID string) *ModelInfo {
	needle := strings.ToLower(modelID)
	for i := range Models {
		m := &Models[i]
		if strings.ToLower(m.ID) == needle {
			return m
		}
		for _, alias := range m.Aliases {
			if strings.ToLower(alias) == needle {
				return m
			}
		}
	}
	return nil
}

// ResolveModel maps an ID or alias to a canonical model ID. Unknown inputs
// pass through unchanged so operators can use models newer than the catalog.
func ResolveModel(modelID string) string {
	if info := GetModelInfo(modelID); info != nil {
		return info.ID
	}
	return modelID
}

// ListModels returns all catalog entries for a provider, or every entry when
// provider is empty.
func ListModels(provider string) []ModelInfo {
	if provider == "" {
		out := make([]ModelInfo, len(Models))
		copy(out, Models)
		return out
	}
	var out []ModelInfo
	for _, m := range Models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}
