// Package tokens_test provides tests for token estimation.
package tokens_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/tokens"
)

// TestEstimator_EmptyText tests that empty text estimates to zero tokens.
func TestEstimator_EmptyText(t *testing.T) {
	estimator := tokens.NewEstimator()

	assert.Equal(t, 0, estimator.Estimate("", "openai/gpt-4o"))
	assert.Equal(t, 0, estimator.Estimate("", "anthropic/claude-3.7-sonnet"))
	assert.Equal(t, 0, estimator.Estimate("", "unknown/model"))
}

// TestEstimator_Deterministic tests that the same input always yields the
// same count.
func TestEstimator_Deterministic(t *testing.T) {
	estimator := tokens.NewEstimator()
	text := "The quick brown fox jumps over the lazy dog."

	first := estimator.Estimate(text, "openai/gpt-4o")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, estimator.Estimate(text, "openai/gpt-4o"))
	}
}

// TestEstimator_ProviderRatios tests the per-provider character ratios.
func TestEstimator_ProviderRatios(t *testing.T) {
	estimator := tokens.NewEstimator()
	// 40 runes exactly.
	text := strings.Repeat("abcd", 10)

	// anthropic: ceil(40/4.0) = 10
	assert.Equal(t, 10, estimator.Estimate(text, "anthropic/claude-3.7-sonnet"))
	// deepseek: ceil(40/3.5) = 12
	assert.Equal(t, 12, estimator.Estimate(text, "deepseek/deepseek-r1"))
	// google: ceil(40/3.8) = 11
	assert.Equal(t, 11, estimator.Estimate(text, "google/gemini-2.5-flash-preview-05-20"))
	// unknown provider falls back to 4.0
	assert.Equal(t, 10, estimator.Estimate(text, "mystery/model"))
}

// TestEstimator_CountsRunesNotBytes tests that multi-byte characters are
// counted as single runes.
func TestEstimator_CountsRunesNotBytes(t *testing.T) {
	estimator := tokens.NewEstimator()
	// 8 runes, 24 bytes.
	text := "日本語のテキスト"
	require.Equal(t, 8, len([]rune(text)))

	// anthropic ratio 4.0: ceil(8/4) = 2, not ceil(24/4) = 6.
	assert.Equal(t, 2, estimator.Estimate(text, "anthropic/claude-3.7-sonnet"))
}

// TestEstimator_OpenAINonZero tests that the BPE path returns a positive
// count for non-empty text.
func TestEstimator_OpenAINonZero(t *testing.T) {
	estimator := tokens.NewEstimator()

	count := estimator.Estimate("Hello, world!", "openai/gpt-4o")
	assert.Greater(t, count, 0)
}

// TestEstimator_WithStrategy tests strategy replacement.
func TestEstimator_WithStrategy(t *testing.T) {
	estimator := tokens.NewEstimator().
		WithStrategy(models.ProviderAnthropic, tokens.RatioStrategy{CharsPerToken: 2.0})

	// 40 runes / 2.0 = 20
	assert.Equal(t, 20, estimator.Estimate(strings.Repeat("abcd", 10), "anthropic/claude-3.7-sonnet"))
}

// TestEstimator_EstimateMessages tests summing over a conversation history.
func TestEstimator_EstimateMessages(t *testing.T) {
	estimator := tokens.NewEstimator()
	messages := []*models.ChatMessage{
		{Content: strings.Repeat("abcd", 10)},
		{Content: strings.Repeat("abcd", 5)},
		{Content: ""},
	}

	// anthropic ratio 4.0: 10 + 5 + 0
	assert.Equal(t, 15, estimator.EstimateMessages(messages, "anthropic/claude-3.7-sonnet"))
}
