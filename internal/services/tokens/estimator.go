// Package tokens provides token estimation, cost calculation, and
// throughput tracking for streamed exchanges.
package tokens

import (
	"math"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// Strategy counts tokens for one provider family. Counts from ratio
// strategies are estimates, not exact tokenizer output; only the OpenAI
// strategy encodes exactly.
type Strategy interface {
	Count(text string) int
}

// Characters-per-token ratios chosen empirically; no public tokenizer
// exists for these providers.
const (
	anthropicCharsPerToken = 4.0
	deepseekCharsPerToken  = 3.5
	googleCharsPerToken    = 3.8
	defaultCharsPerToken   = 4.0
)

// RatioStrategy estimates tokens by dividing character length by a fixed
// per-provider ratio, rounding up.
type RatioStrategy struct {
	CharsPerToken float64
}

// Count implements Strategy.
func (s RatioStrategy) Count(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / s.CharsPerToken))
}

// BPEStrategy counts tokens with an exact byte-pair encoder, falling back
// to a character ratio when the encoder is unavailable.
type BPEStrategy struct {
	encoder  *tiktoken.Tiktoken
	fallback RatioStrategy
}

// NewBPEStrategy creates a BPE strategy for the given tiktoken encoding.
func NewBPEStrategy(encodingName string) *BPEStrategy {
	// A nil encoder just means every call takes the fallback path.
	encoder, _ := tiktoken.GetEncoding(encodingName)
	return &BPEStrategy{
		encoder:  encoder,
		fallback: RatioStrategy{CharsPerToken: defaultCharsPerToken},
	}
}

// Count implements Strategy.
func (s *BPEStrategy) Count(text string) int {
	if text == "" {
		return 0
	}
	if s.encoder == nil {
		return s.fallback.Count(text)
	}
	return len(s.encoder.Encode(text, nil, nil))
}

// Estimator maps text chunks to approximate token counts, dispatching on
// the model's provider. It never fails for valid string input and always
// returns a non-negative count.
type Estimator struct {
	strategies map[models.Provider]Strategy
	fallback   Strategy
}

// NewEstimator creates an estimator with the default per-provider
// strategies.
func NewEstimator() *Estimator {
	return &Estimator{
		strategies: map[models.Provider]Strategy{
			models.ProviderOpenAI:    NewBPEStrategy(tiktoken.MODEL_CL100K_BASE),
			models.ProviderAnthropic: RatioStrategy{CharsPerToken: anthropicCharsPerToken},
			models.ProviderDeepSeek:  RatioStrategy{CharsPerToken: deepseekCharsPerToken},
			models.ProviderGoogle:    RatioStrategy{CharsPerToken: googleCharsPerToken},
		},
		fallback: RatioStrategy{CharsPerToken: defaultCharsPerToken},
	}
}

// WithStrategy replaces the strategy for a provider, letting ratios be
// corrected without touching relay or tracker logic.
func (e *Estimator) WithStrategy(provider models.Provider, strategy Strategy) *Estimator {
	e.strategies[provider] = strategy
	return e
}

// Estimate returns the approximate token count of text for the given model.
func (e *Estimator) Estimate(text, modelID string) int {
	if text == "" {
		return 0
	}
	provider := models.ResolveProvider(modelID)
	if strategy, ok := e.strategies[provider]; ok {
		return strategy.Count(text)
	}
	return e.fallback.Count(text)
}

// EstimateMessages sums the estimate over a conversation history.
func (e *Estimator) EstimateMessages(messages []*models.ChatMessage, modelID string) int {
	total := 0
	for _, m := range messages {
		total += e.Estimate(m.Content, modelID)
	}
	return total
}
