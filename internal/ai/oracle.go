package ai

import "context"

// Analysis is the structured second opinion returned by an LLM oracle.
type Analysis struct {
	OverallAssessment   string   `json:"overall_assessment" yaml:"overall_assessment" mapstructure:"overall_assessment"`
	KeyStrengths        []string `json:"key_strengths" yaml:"key_strengths" mapstructure:"key_strengths"`
	ImprovementAreas    []string `json:"improvement_areas" yaml:"improvement_areas" mapstructure:"improvement_areas"`
	RecommendationScore *float64 `json:"recommendation_score,omitempty" yaml:"recommendation_score,omitempty" mapstructure:"recommendation_score"`
	DetailedFeedback    string   `json:"detailed_feedback" yaml:"detailed_feedback" mapstructure:"detailed_feedback"`
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	out := *a
	out.KeyStrengths = append([]string(nil), a.KeyStrengths...)
	out.ImprovementAreas = append([]string(nil), a.ImprovementAreas...)
	if a.RecommendationScore != nil {
		score := *a.RecommendationScore
		out.RecommendationScore = &score
	}
	return &out
}

// Oracle is a best-effort text generator that may be slow or unavailable.
type Oracle interface {
	Name() string
	Model() string
	Probe(ctx context.Context) error
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultTemperature is sent when Options.Temperature is unset.
const DefaultTemperature = 0.3

// Options carries sampling parameters shared by every oracle transport.
type Options struct {
	// Temperature is a pointer so that 0 (greedy decoding) differs from unset.
	Temperature *float64
	TopP        float64
	MaxTokens   int
}

// Float returns a pointer to v, for filling Options.Temperature.
func Float(v float64) *float64 {
	return &v
}

// SamplingTemperature returns the configured temperature or DefaultTemperature.
func (o Options) SamplingTemperature() float64 {
	if o.Temperature == nil {
		return DefaultTemperature
	}
	return *o.Temperature
}
