package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ludo-technologies/cukereport/domain"
)

// rawFeature mirrors a feature object of the Cucumber JSON format.
// Pointer fields are required and checked for presence.
type rawFeature struct {
	URI         string       `json:"uri"`
	ID          string       `json:"id"`
	Keyword     string       `json:"keyword"`
	Name        *string      `json:"name"`
	Description string       `json:"description"`
	Line        int          `json:"line"`
	Tags        []rawTag     `json:"tags"`
	Elements    []rawElement `json:"elements"`
}

type rawElement struct {
	ID      string     `json:"id"`
	Keyword string     `json:"keyword"`
	Name    *string    `json:"name"`
	Type    string     `json:"type"`
	Line    int        `json:"line"`
	Tags    []rawTag   `json:"tags"`
	Steps   []*rawStep `json:"steps"`
}

type rawStep struct {
	Keyword string     `json:"keyword"`
	Name    string     `json:"name"`
	Line    int        `json:"line"`
	Result  *rawResult `json:"result"`
	Match   *rawMatch  `json:"match"`
}

type rawResult struct {
	Status       string  `json:"status"`
	Duration     float64 `json:"duration"`
	ErrorMessage string  `json:"error_message"`
}

type rawMatch struct {
	Location string `json:"location"`
}

// rawTag accepts both {"name": "@tag"} objects and plain "@tag" strings
type rawTag struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// UnmarshalJSON implements json.Unmarshaler
func (t *rawTag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Name)
	}

	type plain rawTag
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = rawTag(p)
	return nil
}

func (f *rawFeature) toFeature(index int) (*domain.Feature, error) {
	if f.Name == nil {
		return nil, fmt.Errorf("feature #%d: missing required field \"name\"", index+1)
	}

	feature := &domain.Feature{
		ID:          f.ID,
		URI:         f.URI,
		Keyword:     f.Keyword,
		Name:        *f.Name,
		Description: f.Description,
		Line:        f.Line,
		Tags:        convertTags(f.Tags),
		Scenarios:   make([]domain.Scenario, 0, len(f.Elements)),
	}

	for i := range f.Elements {
		scenario, err := f.Elements[i].toScenario()
		if err != nil {
			return nil, fmt.Errorf("feature %q, element #%d: %w", feature.Name, i+1, err)
		}
		feature.Scenarios = append(feature.Scenarios, scenario)
	}

	return feature, nil
}

func (e *rawElement) toScenario() (domain.Scenario, error) {
	if e.Name == nil {
		return domain.Scenario{}, fmt.Errorf("missing required field \"name\"")
	}

	scenario := domain.Scenario{
		ID:      e.ID,
		Keyword: e.Keyword,
		Name:    *e.Name,
		Type:    e.Type,
		Line:    e.Line,
		Tags:    convertTags(e.Tags),
		Steps:   make([]domain.Step, 0, len(e.Steps)),
	}
	if scenario.Type == "" {
		scenario.Type = "scenario"
	}

	for i, raw := range e.Steps {
		if raw == nil {
			return domain.Scenario{}, fmt.Errorf("scenario %q, step #%d: step must be an object, got null", scenario.Name, i+1)
		}
		step, err := raw.toStep()
		if err != nil {
			return domain.Scenario{}, fmt.Errorf("scenario %q, step #%d: %w", scenario.Name, i+1, err)
		}
		scenario.Steps = append(scenario.Steps, step)
	}

	return scenario, nil
}

func (s *rawStep) toStep() (domain.Step, error) {
	step := domain.Step{
		Keyword: s.Keyword,
		Name:    s.Name,
		Line:    s.Line,
		Status:  domain.StatusMissing,
	}
	if s.Match != nil {
		step.Location = s.Match.Location
	}

	// No result, or an empty status, means the runner never reported the step.
	if s.Result == nil || s.Result.Status == "" {
		return step, nil
	}

	status, err := domain.ParseStatus(s.Result.Status)
	if err != nil {
		return domain.Step{}, err
	}
	if s.Result.Duration < 0 {
		return domain.Step{}, fmt.Errorf("negative duration %v", s.Result.Duration)
	}
	if s.Result.Duration >= math.MaxInt64 {
		return domain.Step{}, fmt.Errorf("duration %v out of range", s.Result.Duration)
	}

	step.Status = status
	step.Duration = time.Duration(int64(s.Result.Duration))
	step.ErrorMessage = s.Result.ErrorMessage
	return step, nil
}

func convertTags(raw []rawTag) []domain.Tag {
	if len(raw) == 0 {
		return nil
	}
	tags := make([]domain.Tag, 0, len(raw))
	for _, t := range raw {
		tags = append(tags, domain.Tag{Name: t.Name, Line: t.Line})
	}
	return tags
}
