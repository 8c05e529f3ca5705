package fusion

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/utils"
	"github.com/xeipuuv/gojsonschema"
)

const (
	wrapperKey   = "llm_analysis"
	scoreKey     = "recommendation_score"
	maxListItems = 10
)

//go:embed analysis.schema.json
var analysisSchema string

var errNoJSON = errors.New("no json object in oracle response")

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(analysisSchema))
})

// parseAnalysis recovers an Analysis from free-form oracle output. It never
// returns a partially filled value.
func parseAnalysis(raw string) (*ai.Analysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return nil, errNoJSON
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &doc); err != nil {
		return nil, fmt.Errorf("parse oracle response: %w", err)
	}
	if inner, ok := doc[wrapperKey].(map[string]any); ok {
		doc = inner
	}

	// A blank score string means the model left the score out.
	if s, ok := doc[scoreKey].(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			delete(doc, scoreKey)
		} else {
			doc[scoreKey] = s
		}
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	var analysis ai.Analysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode oracle analysis: %w", err)
	}

	if s := analysis.RecommendationScore; s != nil {
		if math.IsNaN(*s) || math.IsInf(*s, 0) {
			return nil, fmt.Errorf("recommendation_score is not finite: %s", strconv.FormatFloat(*s, 'g', -1, 64))
		}
		clamped := clampScore(*s)
		analysis.RecommendationScore = &clamped
	}

	analysis.OverallAssessment = strings.TrimSpace(analysis.OverallAssessment)
	analysis.DetailedFeedback = strings.TrimSpace(analysis.DetailedFeedback)
	analysis.KeyStrengths = utils.CompactList(analysis.KeyStrengths, 0)
	analysis.ImprovementAreas = utils.CompactList(analysis.ImprovementAreas, 0)

	return &analysis, nil
}

// capLists keeps at most maxListItems entries per list and returns how many were cut.
func capLists(a *ai.Analysis) int {
	dropped := 0
	for _, list := range []*[]string{&a.KeyStrengths, &a.ImprovementAreas} {
		if len(*list) > maxListItems {
			dropped += len(*list) - maxListItems
			*list = (*list)[:maxListItems]
		}
	}
	return dropped
}

func validate(doc map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load analysis schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate oracle analysis: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, field+": "+desc.Description())
	}
	return fmt.Errorf("oracle analysis does not match schema: %s", strings.Join(problems, "; "))
}

func clampScore(v float64) float64 {
	return min(100, max(0, v))
}
