package domain

import "time"

// Pagination bounds for decision listings.
const (
	DefaultLimit = 50
	MaxLimit     = 500

	DefaultSearchLimit = 20
	MaxSearchLimit     = 100

	MaxWindowDays = 365
)

// Confidence thresholds used by statistics.
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.5
	// LowConfidence flags decisions that may require review.
	LowConfidence = 0.7
)

// SearchScope selects which text columns a search term is matched against.
type SearchScope int

const (
	// SearchAll matches reasoning, decision and outcome.
	SearchAll SearchScope = iota
	// SearchText matches reasoning and decision only.
	SearchText
)

// DecisionFilter holds the conjunctive predicates applied to decisions.
// Zero values disable a predicate.
type DecisionFilter struct {
	Source        Source
	MinConfidence *float64
	MaxConfidence *float64
	// ConfidenceBelow is an exclusive upper bound.
	ConfidenceBelow *float64
	Tag             string
	Search          string
	SearchScope     SearchScope
	// Since is inclusive, Until is exclusive.
	Since *time.Time
	Until *time.Time
}

// ListQuery is a validated decision listing request.
type ListQuery struct {
	Filter DecisionFilter
	Sort   SortOrder
	Limit  int
	Offset int
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Time returns a pointer to t.
func Time(t time.Time) *time.Time {
	return &t
}
