package trace

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

var builtAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func refundFields() Fields {
	return Fields{
		InputData:  json.RawMessage(`{"request_type":"refund","amount":79.99}`),
		Reasoning:  "Amount within auto-approval limit",
		Decision:   "approve_refund",
		Confidence: 0.95,
		Source:     domain.SourceRule,
	}
}

func stepTypes(steps []domain.Step) []domain.StepType {
	out := make([]domain.StepType, len(steps))
	for i, s := range steps {
		out[i] = s.StepType
	}
	return out
}

func TestBuildMinimalDecision(t *testing.T) {
	steps := Build(refundFields(), builtAt)

	assert.Equal(t, []domain.StepType{
		domain.StepTypeInput,
		domain.StepTypeReasoning,
		domain.StepTypeDecision,
		domain.StepTypeAction,
	}, stepTypes(steps))
	assert.Equal(t, "Input received: request_type=refund, amount=79.99", steps[0].Content)
	assert.Equal(t, "Amount within auto-approval limit", steps[1].Content)
	assert.Equal(t, "Decision: approve_refund", steps[2].Content)
	assert.Equal(t, "Executing approval workflow", steps[3].Content)
}

func TestBuildGolden(t *testing.T) {
	out, err := json.MarshalIndent(Build(refundFields(), builtAt), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "refund_trace", out)
}

func TestBuildFullDecision(t *testing.T) {
	f := refundFields()
	f.SystemState = json.RawMessage(`{"user_tier":"premium","refund_count":1}`)
	f.Outcome = "Refund issued"
	f.OutcomeData = json.RawMessage(`{"transaction_id":"TXN-1"}`)

	steps := Build(f, builtAt)
	require.Len(t, steps, 6)

	assert.Equal(t, domain.StepTypeReasoning, steps[1].StepType)
	assert.Equal(t, "System state: user_tier=premium, refund_count=1", steps[1].Content)
	assert.JSONEq(t, `{"system_state":{"user_tier":"premium","refund_count":1}}`, string(steps[1].StepMetadata))

	last := steps[len(steps)-1]
	assert.Equal(t, domain.StepTypeOutcome, last.StepType)
	assert.Equal(t, "Refund issued", last.Content)
	assert.JSONEq(t, `{"transaction_id":"TXN-1"}`, string(last.StepMetadata))

	for i, s := range steps {
		assert.Equal(t, i, s.StepOrder)
		assert.Equal(t, builtAt.Add(time.Duration(i)*StepSpacing), s.Timestamp)
	}
}

func TestBuildOutcomeWithoutData(t *testing.T) {
	f := refundFields()
	f.Outcome = "done"

	steps := Build(f, builtAt)
	last := steps[len(steps)-1]
	assert.Equal(t, domain.StepTypeOutcome, last.StepType)
	assert.JSONEq(t, `{}`, string(last.StepMetadata))
}

func TestBuildEmptySystemStateIsSkipped(t *testing.T) {
	f := refundFields()
	f.SystemState = json.RawMessage(`{}`)

	assert.Len(t, Build(f, builtAt), 4)
}

func TestBuildLowConfidenceNote(t *testing.T) {
	tests := []struct {
		confidence float64
		flagged    bool
	}{
		{0.65, true},
		{0.69, true},
		{0.7, false},
		{0.75, false},
	}
	for _, tt := range tests {
		f := refundFields()
		f.Confidence = tt.confidence
		content := Build(f, builtAt)[2].Content
		if tt.flagged {
			assert.Equal(t, "Decision: approve_refund"+LowConfidenceNote, content, "confidence %v", tt.confidence)
		} else {
			assert.Equal(t, "Decision: approve_refund", content, "confidence %v", tt.confidence)
		}
	}
}

func TestBuildEmptyInput(t *testing.T) {
	f := refundFields()
	f.InputData = json.RawMessage(`{}`)

	steps := Build(f, builtAt)
	assert.Equal(t, "Input received: No input data", steps[0].Content)
	assert.JSONEq(t, `{"input_data":{}}`, string(steps[0].StepMetadata))
}

func TestBuildKeepsTextVerbatim(t *testing.T) {
	f := refundFields()
	f.Reasoning = "<b>unsafe</b> & \"quoted\""

	steps := Build(f, builtAt)
	assert.Equal(t, f.Reasoning, steps[1].Content)
}

func TestSummarizeInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", `{}`, "No input data"},
		{"missing", ``, "No input data"},
		{"single key", `{"key":"value"}`, "key = value"},
		{"two keys", `{"a":1,"b":true}`, "a=1, b=true"},
		{"three keys", `{"a":1,"b":2,"c":3}`, "a=1, b=2, c=3"},
		{"five keys", `{"k0":"v0","k1":"v1","k2":"v2","k3":"v3","k4":"v4"}`, "k0=v0, k1=v1, k2=v2, +2 more"},
		{"nested", `{"a": {"x": [1, 2]}, "b": null}`, `a={"x":[1,2]}, b=null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeInput(json.RawMessage(tt.in)))
		})
	}
}

func TestAction(t *testing.T) {
	tests := []struct {
		decision string
		want     string
	}{
		{"approve_refund", "Executing approval workflow"},
		{"AUTO-APPROVE", "Executing approval workflow"},
		{"reject_claim", "Executing rejection workflow"},
		{"Deny access", "Executing rejection workflow"},
		{"escalate_to_human", "Escalating to human review"},
		{"route_ticket", "Routing to appropriate handler"},
		{"approve then reject", "Executing approval workflow"},
		{"remove_content", "Executing decision action"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Action(tt.decision), tt.decision)
	}
}

func TestSequence(t *testing.T) {
	inputs := []domain.StepInput{
		{StepType: domain.StepTypeOutcome, Content: "first"},
		{StepType: domain.StepTypeInput, Content: "second", StepMetadata: json.RawMessage(`{"k":1}`)},
	}

	steps := Sequence(inputs, builtAt)
	require.Len(t, steps, 2)
	assert.Equal(t, 0, steps[0].StepOrder)
	assert.Equal(t, domain.StepTypeOutcome, steps[0].StepType)
	assert.Equal(t, 1, steps[1].StepOrder)
	assert.Equal(t, builtAt, steps[1].Timestamp)
	assert.JSONEq(t, `{"k":1}`, string(steps[1].StepMetadata))
}
