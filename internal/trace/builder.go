// Package trace derives the ordered step sequence that narrates a decision.
package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

const (
	// StepSpacing separates the synthetic timestamps of derived steps.
	StepSpacing = 100 * time.Millisecond

	// LowConfidenceThreshold marks decisions that may require review.
	LowConfidenceThreshold = 0.7
	LowConfidenceNote      = " (Low confidence - may require review)"

	previewKeys = 3
)

// Fields are the decision fields a trace is derived from.
type Fields struct {
	InputData   json.RawMessage
	SystemState json.RawMessage
	Reasoning   string
	Decision    string
	Confidence  float64
	Source      domain.Source
	Outcome     string
	OutcomeData json.RawMessage
}

// FieldsFrom extracts builder input from a creation request.
func FieldsFrom(req *domain.CreateDecisionRequest) Fields {
	f := Fields{
		InputData:   req.InputData,
		SystemState: req.SystemState,
		Reasoning:   req.Reasoning,
		Decision:    req.Decision,
		Source:      req.Source,
		Outcome:     req.Outcome,
		OutcomeData: req.OutcomeData,
	}
	if req.Confidence != nil {
		f.Confidence = *req.Confidence
	}
	return f
}

var actionRules = []struct {
	keywords []string
	action   string
}{
	{[]string{"approve"}, "Executing approval workflow"},
	{[]string{"reject", "deny"}, "Executing rejection workflow"},
	{[]string{"escalate"}, "Escalating to human review"},
	{[]string{"route"}, "Routing to appropriate handler"},
}

const defaultAction = "Executing decision action"

// Build derives the trace of a decision created at the given instant:
// input, optional system state, reasoning, decision, action and optional
// outcome. Step timestamps are spaced by StepSpacing for display ordering.
func Build(f Fields, at time.Time) []domain.Step {
	var steps []domain.Step
	add := func(stepType domain.StepType, content string, metadata interface{}) {
		order := len(steps)
		steps = append(steps, domain.Step{
			StepOrder:    order,
			StepType:     stepType,
			Timestamp:    at.Add(time.Duration(order) * StepSpacing),
			Content:      content,
			StepMetadata: mustMarshal(metadata),
		})
	}

	add(domain.StepTypeInput, "Input received: "+SummarizeInput(f.InputData),
		map[string]interface{}{"input_data": rawOrEmpty(f.InputData)})

	if state := entries(f.SystemState); len(state) > 0 {
		add(domain.StepTypeReasoning, "System state: "+joinPreview(state),
			map[string]interface{}{"system_state": rawOrEmpty(f.SystemState)})
	}

	add(domain.StepTypeReasoning, f.Reasoning, map[string]interface{}{
		"source":     f.Source,
		"confidence": f.Confidence,
	})

	content := "Decision: " + f.Decision
	if f.Confidence < LowConfidenceThreshold {
		content += LowConfidenceNote
	}
	add(domain.StepTypeDecision, content, map[string]interface{}{
		"decision":   f.Decision,
		"confidence": f.Confidence,
		"source":     f.Source,
	})

	add(domain.StepTypeAction, Action(f.Decision), map[string]interface{}{"auto_generated": true})

	if f.Outcome != "" {
		add(domain.StepTypeOutcome, f.Outcome, rawOrEmpty(f.OutcomeData))
	}
	return steps
}

// Sequence turns explicitly supplied steps into a trace, keeping their order.
func Sequence(inputs []domain.StepInput, at time.Time) []domain.Step {
	steps := make([]domain.Step, len(inputs))
	for i, in := range inputs {
		steps[i] = domain.Step{
			StepOrder:    i,
			StepType:     in.StepType,
			Timestamp:    at,
			Content:      in.Content,
			StepMetadata: in.StepMetadata,
		}
	}
	return steps
}

// Action picks the follow-up action text for a decision.
func Action(decision string) string {
	folded := cases.Fold().String(decision)
	for _, rule := range actionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.action
			}
		}
	}
	return defaultAction
}

// SummarizeInput renders a short preview of the input data.
func SummarizeInput(raw json.RawMessage) string {
	pairs := entries(raw)
	switch len(pairs) {
	case 0:
		return "No input data"
	case 1:
		return fmt.Sprintf("%s = %s", pairs[0].key, pairs[0].value)
	}
	return joinPreview(pairs)
}

type entry struct {
	key   string
	value string
}

// entries lists the members of a JSON object in document order.
func entries(raw json.RawMessage) []entry {
	if len(raw) == 0 {
		return nil
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return nil
	}
	var out []entry
	obj.ForEach(func(key, value gjson.Result) bool {
		out = append(out, entry{key: key.String(), value: render(value)})
		return true
	})
	return out
}

func joinPreview(pairs []entry) string {
	n := len(pairs)
	if n > previewKeys {
		n = previewKeys
	}
	parts := make([]string, 0, n)
	for _, p := range pairs[:n] {
		parts = append(parts, p.key+"="+p.value)
	}
	out := strings.Join(parts, ", ")
	if len(pairs) > previewKeys {
		out += fmt.Sprintf(", +%d more", len(pairs)-previewKeys)
	}
	return out
}

func render(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(v.Raw)); err != nil {
		return v.Raw
	}
	return buf.String()
}

func rawOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

func mustMarshal(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Only reachable with malformed raw JSON, which validation rejects.
		return json.RawMessage(`{}`)
	}
	return b
}
