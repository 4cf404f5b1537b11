package tokens

import (
	"math"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// EstimateCost converts token counts into a USD estimate using the model's
// per-1000-token prices. Models without pricing yield zero cost. All values
// are rounded to 4 decimal places to avoid floating-point noise in display.
func EstimateCost(inputTokens, outputTokens int, model models.ModelConfig) models.EstimatedCost {
	input := round4(float64(inputTokens) / 1000 * model.InputCostPer1k)
	output := round4(float64(outputTokens) / 1000 * model.OutputCostPer1k)
	return models.EstimatedCost{
		Input:  input,
		Output: output,
		Total:  round4(input + output),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
