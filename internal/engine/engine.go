// Package engine makes decisions from request data with rules written in Rego.
package engine

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/tidwall/gjson"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// DefaultRules holds the built-in refund and support escalation rules.
//
//go:embed rules.rego
var DefaultRules string

const resultQuery = "data.decision_rules.result"

// Decider turns request data into a decision ready to be recorded.
type Decider interface {
	Decide(ctx context.Context, inputData, systemState json.RawMessage) (*domain.CreateDecisionRequest, error)
}

// RuleEngine evaluates a Rego module whose decision_rules.result rule yields
// an object with decision, source, confidence and reasoning.
type RuleEngine struct {
	query rego.PreparedEvalQuery
}

var _ Decider = (*RuleEngine)(nil)

// NewRuleEngine compiles the given Rego module.
func NewRuleEngine(ctx context.Context, module string) (*RuleEngine, error) {
	r := rego.New(
		rego.Query(resultQuery),
		rego.Module("decision_rules.rego", module),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &RuleEngine{query: query}, nil
}

type verdict struct {
	Decision   string        `json:"decision"`
	Source     domain.Source `json:"source"`
	Confidence float64       `json:"confidence"`
	Reasoning  string        `json:"reasoning"`
}

// Decide evaluates the rules against the input and system state. Both must be
// JSON objects; a nil system state is treated as empty.
func (e *RuleEngine) Decide(ctx context.Context, inputData, systemState json.RawMessage) (*domain.CreateDecisionRequest, error) {
	if len(inputData) == 0 || string(inputData) == "null" {
		return nil, domain.Invalid("input_data", "field required")
	}
	input, err := decodeObject("input_data", inputData)
	if err != nil {
		return nil, err
	}
	state, err := decodeObject("system_state", systemState)
	if err != nil {
		return nil, err
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"input_data":   input,
		"system_state": state,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate rules: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil, fmt.Errorf("rules produced no result")
	}

	// Values come back as generic JSON; numbers are json.Number.
	raw, err := json.Marshal(results[0].Expressions[0].Value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule result: %w", err)
	}
	var v verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unexpected rule result %s: %w", raw, err)
	}

	req := &domain.CreateDecisionRequest{
		InputData:   inputData,
		SystemState: systemState,
		Reasoning:   v.Reasoning,
		Decision:    v.Decision,
		Confidence:  domain.Float(v.Confidence),
		Source:      v.Source,
		Tags:        Tags(inputData),
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("rules produced an invalid decision: %w", err)
	}
	return req, nil
}

// Tags categorizes a request by its request_type and the band of its amount.
func Tags(inputData json.RawMessage) []string {
	tags := []string{}
	if rt := gjson.GetBytes(inputData, "request_type"); rt.Exists() {
		tags = append(tags, rt.String())
	}
	if amount := gjson.GetBytes(inputData, "amount"); amount.Type == gjson.Number {
		switch v := amount.Float(); {
		case v > 1000:
			tags = append(tags, "high_value")
		case v > 100:
			tags = append(tags, "medium_value")
		default:
			tags = append(tags, "low_value")
		}
	}
	return tags
}

func decodeObject(field string, raw json.RawMessage) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, domain.Invalid(field, "must be an object")
	}
	return out, nil
}
