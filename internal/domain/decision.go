package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewDecisionID returns "dec_" followed by 12 lowercase hex characters.
func NewDecisionID() string {
	return "dec_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Decision is one recorded choice together with its trace.
type Decision struct {
	DecisionID  string          `json:"decision_id"`
	Timestamp   time.Time       `json:"timestamp"`
	InputData   json.RawMessage `json:"input_data"`
	SystemState json.RawMessage `json:"system_state"`
	Reasoning   string          `json:"reasoning"`
	Decision    string          `json:"decision"`
	Confidence  float64         `json:"confidence"`
	Source      Source          `json:"source"`
	Outcome     string          `json:"outcome"`
	OutcomeData json.RawMessage `json:"outcome_data"`
	Tags        []string        `json:"tags"`
	Steps       []Step          `json:"steps"`
}

// MarshalJSON writes an absent outcome as null.
func (d Decision) MarshalJSON() ([]byte, error) {
	type plain Decision
	return json.Marshal(struct {
		plain
		Outcome *string `json:"outcome"`
	}{plain(d), OptionalText(d.Outcome)})
}

// Step is one ordered entry in a decision trace.
type Step struct {
	StepOrder    int             `json:"step_order"`
	StepType     StepType        `json:"step_type"`
	Timestamp    time.Time       `json:"timestamp"`
	Content      string          `json:"content"`
	StepMetadata json.RawMessage `json:"step_metadata"`
}

// DecisionSummary is the reduced projection used by list views.
type DecisionSummary struct {
	DecisionID string    `json:"decision_id"`
	Timestamp  time.Time `json:"timestamp"`
	Decision   string    `json:"decision"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
	Outcome    string    `json:"outcome"`
	Tags       []string  `json:"tags"`
	StepCount  int       `json:"step_count"`
}

// MarshalJSON writes an absent outcome as null.
func (s DecisionSummary) MarshalJSON() ([]byte, error) {
	type plain DecisionSummary
	return json.Marshal(struct {
		plain
		Outcome *string `json:"outcome"`
	}{plain(s), OptionalText(s.Outcome)})
}

// OptionalText returns nil for an empty string and a pointer to s otherwise.
func OptionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DecisionPage is one page of a filtered decision listing.
type DecisionPage struct {
	Decisions []DecisionSummary `json:"decisions"`
	Total     int               `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
	HasMore   bool              `json:"has_more"`
}

// DecisionReplay is a decision prepared for step-by-step playback.
type DecisionReplay struct {
	Decision        *Decision `json:"decision"`
	TotalSteps      int       `json:"total_steps"`
	DurationSeconds *float64  `json:"duration_seconds"`
}
