// Package domain defines the core domain models for the decision timeline.
package domain

// Source is the mechanism that produced a decision.
type Source string

const (
	SourceRule   Source = "rule"
	SourceLLM    Source = "llm"
	SourceHybrid Source = "hybrid"
	SourceManual Source = "manual"
)

// Sources lists every Source in reporting order.
var Sources = []Source{SourceRule, SourceLLM, SourceHybrid, SourceManual}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceRule, SourceLLM, SourceHybrid, SourceManual:
		return true
	}
	return false
}

// ParseSource converts a raw string into a Source.
func ParseSource(raw string) (Source, bool) {
	s := Source(raw)
	return s, s.Valid()
}

// StepType is the kind of an entry in a decision trace.
type StepType string

const (
	StepTypeInput     StepType = "input"
	StepTypeReasoning StepType = "reasoning"
	StepTypeDecision  StepType = "decision"
	StepTypeAction    StepType = "action"
	StepTypeOutcome   StepType = "outcome"
)

// Valid reports whether t is one of the known step types.
func (t StepType) Valid() bool {
	switch t {
	case StepTypeInput, StepTypeReasoning, StepTypeDecision, StepTypeAction, StepTypeOutcome:
		return true
	}
	return false
}

// SortOrder is the direction of a timestamp sort.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder converts a raw query value into a SortOrder. Empty means desc.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch SortOrder(raw) {
	case "", SortDesc:
		return SortDesc, true
	case SortAsc:
		return SortAsc, true
	}
	return "", false
}

// AggregateMetric selects the confidence aggregate computed by the store.
type AggregateMetric string

const (
	MetricAvgConfidence AggregateMetric = "avg"
	MetricMinConfidence AggregateMetric = "min"
)
