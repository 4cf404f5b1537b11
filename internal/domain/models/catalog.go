package models

import "strings"

// Provider identifies the upstream model family, used for token-estimation
// dispatch and capability gating.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderGoogle    Provider = "google"
	ProviderUnknown   Provider = "unknown"
)

// ReasoningMode describes how a model exposes its reasoning trace.
type ReasoningMode string

const (
	// ReasoningForced means the model always emits reasoning.
	ReasoningForced ReasoningMode = "forced"
	// ReasoningOptional means reasoning is emitted only when requested.
	ReasoningOptional ReasoningMode = "optional"
	// ReasoningNone means the model never emits reasoning.
	ReasoningNone ReasoningMode = "none"
)

// ModelConfig is a static per-model configuration entry. It is the single
// source of truth for capability gating and token-cost calculation.
// By convention HasReasoning is true exactly when ReasoningMode != "none".
type ModelConfig struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Provider        Provider      `json:"provider"`
	ContextLength   int           `json:"contextLength"`
	HasReasoning    bool          `json:"hasReasoning"`
	ReasoningMode   ReasoningMode `json:"reasoningMode"`
	SupportsWebSearch bool        `json:"supportsWebSearch"`
	SupportsVision  bool          `json:"supportsVision"`
	InputCostPer1k  float64       `json:"inputCostPer1k"`
	OutputCostPer1k float64       `json:"outputCostPer1k"`
}

// Catalog is the static model table. Entries are never mutated at runtime.
var Catalog = []ModelConfig{
	{
		ID:             "openai/gpt-4o",
		Name:           "GPT-4o",
		Provider:       ProviderOpenAI,
		ContextLength:  128000,
		ReasoningMode:  ReasoningNone,
		SupportsVision: true,
		InputCostPer1k: 0.0025, OutputCostPer1k: 0.01,
	},
	{
		ID:             "openai/gpt-4o-mini",
		Name:           "GPT-4o Mini",
		Provider:       ProviderOpenAI,
		ContextLength:  128000,
		ReasoningMode:  ReasoningNone,
		SupportsVision: true,
		InputCostPer1k: 0.00015, OutputCostPer1k: 0.0006,
	},
	{
		ID:            "openai/o1",
		Name:          "o1",
		Provider:      ProviderOpenAI,
		ContextLength: 200000,
		HasReasoning:  true,
		ReasoningMode: ReasoningForced,
		InputCostPer1k: 0.015, OutputCostPer1k: 0.06,
	},
	{
		ID:            "openai/o1-mini",
		Name:          "o1 Mini",
		Provider:      ProviderOpenAI,
		ContextLength: 128000,
		HasReasoning:  true,
		ReasoningMode: ReasoningForced,
		InputCostPer1k: 0.0011, OutputCostPer1k: 0.0044,
	},
	{
		ID:             "anthropic/claude-3.7-sonnet",
		Name:           "Claude 3.7 Sonnet",
		Provider:       ProviderAnthropic,
		ContextLength:  200000,
		HasReasoning:   true,
		ReasoningMode:  ReasoningOptional,
		SupportsVision: true,
		InputCostPer1k: 0.003, OutputCostPer1k: 0.015,
	},
	{
		ID:             "anthropic/claude-3.5-haiku",
		Name:           "Claude 3.5 Haiku",
		Provider:       ProviderAnthropic,
		ContextLength:  200000,
		ReasoningMode:  ReasoningNone,
		SupportsVision: true,
		InputCostPer1k: 0.0008, OutputCostPer1k: 0.004,
	},
	{
		ID:            "deepseek/deepseek-chat",
		Name:          "DeepSeek V3",
		Provider:      ProviderDeepSeek,
		ContextLength: 64000,
		ReasoningMode: ReasoningNone,
		InputCostPer1k: 0.00027, OutputCostPer1k: 0.0011,
	},
	{
		ID:            "deepseek/deepseek-r1",
		Name:          "DeepSeek R1",
		Provider:      ProviderDeepSeek,
		ContextLength: 64000,
		HasReasoning:  true,
		ReasoningMode: ReasoningForced,
		InputCostPer1k: 0.00055, OutputCostPer1k: 0.00219,
	},
	{
		ID:                "google/gemini-2.5-flash-preview-05-20",
		Name:              "Gemini 2.5 Flash",
		Provider:          ProviderGoogle,
		ContextLength:     1048576,
		HasReasoning:      true,
		ReasoningMode:     ReasoningOptional,
		SupportsWebSearch: true,
		SupportsVision:    true,
		InputCostPer1k:    0.00015, OutputCostPer1k: 0.0006,
	},
	{
		ID:                "google/gemini-2.0-flash-001",
		Name:              "Gemini 2.0 Flash",
		Provider:          ProviderGoogle,
		ContextLength:     1048576,
		ReasoningMode:     ReasoningNone,
		SupportsWebSearch: true,
		SupportsVision:    true,
		InputCostPer1k:    0.0001, OutputCostPer1k: 0.0004,
	},
}

func init() {
	// HasReasoning mirrors ReasoningMode; keep the table consistent even if
	// an entry above forgets to set both.
	for i := range Catalog {
		Catalog[i].HasReasoning = Catalog[i].ReasoningMode != ReasoningNone
	}
}

// LookupModel returns the catalog entry for a model ID.
func LookupModel(modelID string) (ModelConfig, bool) {
	for _, m := range Catalog {
		if m.ID == modelID {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// ResolveProvider resolves the provider for a model ID, falling back to
// substring matching for models not in the catalog.
func ResolveProvider(modelID string) Provider {
	if m, ok := LookupModel(modelID); ok {
		return m.Provider
	}
	id := strings.ToLower(modelID)
	switch {
	case strings.Contains(id, "gpt") || strings.Contains(id, "o1"):
		return ProviderOpenAI
	case strings.Contains(id, "claude"):
		return ProviderAnthropic
	case strings.Contains(id, "deepseek"):
		return ProviderDeepSeek
	case strings.Contains(id, "gemini"):
		return ProviderGoogle
	default:
		return ProviderUnknown
	}
}
