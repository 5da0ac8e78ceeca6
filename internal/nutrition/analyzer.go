package nutrition

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/shared"
)

//go:embed analyzer_prompt.md
var analyzerPrompt string

const (
	analyzerAgent      = "FoodAnalyzer"
	analyzerUserPrompt = "Analyze this food image and provide detailed nutritional information."
)

// Analyzer asks a vision model to estimate the nutrition of a food photo.
type Analyzer struct {
	vision llm.VisionGenerator
}

// NewAnalyzer creates an Analyzer backed by the given vision model.
func NewAnalyzer(vision llm.VisionGenerator) *Analyzer {
	return &Analyzer{vision: vision}
}

// Analyze sends img to the model and normalizes its reply. Provider failures
// are returned as errors; unparseable replies are not.
func (a *Analyzer) Analyze(ctx context.Context, img llm.Image) (Analysis, shared.AgentMeta, error) {
	start := time.Now()

	resp, err := a.vision.DescribeImage(ctx, analyzerPrompt, analyzerUserPrompt, img)
	if err != nil {
		return Analysis{}, shared.AgentMeta{AgentName: analyzerAgent}, fmt.Errorf("failed to analyze food image: %w", err)
	}

	return ParseAnalysis(resp.Content), shared.NewAgentMeta(analyzerAgent, resp.Usage, start), nil
}
