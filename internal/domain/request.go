package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Field length limits, counted in characters.
const (
	MaxReasoningLength = 5000
	MaxDecisionLength  = 200
	MaxOutcomeLength   = 500
	MaxContentLength   = 5000
)

// StepInput is an explicitly supplied trace step.
type StepInput struct {
	StepType     StepType        `json:"step_type"`
	Content      string          `json:"content"`
	StepMetadata json.RawMessage `json:"step_metadata,omitempty"`
}

// CreateDecisionRequest carries the fields of a new decision. When Steps is
// empty the trace is derived from the other fields.
type CreateDecisionRequest struct {
	InputData   json.RawMessage `json:"input_data"`
	SystemState json.RawMessage `json:"system_state,omitempty"`
	Reasoning   string          `json:"reasoning"`
	Decision    string          `json:"decision"`
	Confidence  *float64        `json:"confidence"`
	Source      Source          `json:"source"`
	Outcome     string          `json:"outcome,omitempty"`
	OutcomeData json.RawMessage `json:"outcome_data,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Steps       []StepInput     `json:"steps,omitempty"`
}

// Validate checks every field and normalizes JSON nulls to absent values.
func (r *CreateDecisionRequest) Validate() error {
	if isNull(r.InputData) {
		return Invalid("input_data", "field required")
	}
	if !isObject(r.InputData) {
		return Invalid("input_data", "must be an object")
	}

	var err error
	if r.SystemState, err = optionalObject("system_state", r.SystemState); err != nil {
		return err
	}
	if r.OutcomeData, err = optionalObject("outcome_data", r.OutcomeData); err != nil {
		return err
	}

	if err := textField("reasoning", r.Reasoning, 1, MaxReasoningLength); err != nil {
		return err
	}
	if err := textField("decision", r.Decision, 1, MaxDecisionLength); err != nil {
		return err
	}
	if err := textField("outcome", r.Outcome, 0, MaxOutcomeLength); err != nil {
		return err
	}

	if r.Confidence == nil {
		return Invalid("confidence", "field required")
	}
	if err := ValidateConfidence("confidence", *r.Confidence); err != nil {
		return err
	}

	if r.Source == "" {
		return Invalid("source", "field required")
	}
	if !r.Source.Valid() {
		return Invalid("source", "unknown source %q", r.Source)
	}

	for i := range r.Steps {
		step := &r.Steps[i]
		if !step.StepType.Valid() {
			return Invalid("steps", "step %d: unknown step_type %q", i, step.StepType)
		}
		if err := textField("steps", step.Content, 1, MaxContentLength); err != nil {
			err.Message = "step content: " + err.Message
			return err
		}
		if step.StepMetadata, err = optionalObject("steps", step.StepMetadata); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfidence rejects values outside [0, 1].
func ValidateConfidence(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return Invalid(field, "must be between 0.0 and 1.0")
	}
	return nil
}

// RoundConfidence rounds v to the 4 decimal places confidence is stored with.
func RoundConfidence(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func textField(field, value string, minLen, maxLen int) *ValidationError {
	n := utf8.RuneCountInString(value)
	if n < minLen {
		if minLen == 1 {
			return Invalid(field, "must not be empty")
		}
		return Invalid(field, "must be at least %d characters", minLen)
	}
	if n > maxLen {
		return Invalid(field, "must be at most %d characters", maxLen)
	}
	return nil
}

func optionalObject(field string, raw json.RawMessage) (json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}
	if !isObject(raw) {
		return nil, Invalid(field, "must be an object")
	}
	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	return gjson.ValidBytes(raw) && gjson.ParseBytes(raw).IsObject()
}
