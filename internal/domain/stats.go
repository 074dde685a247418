package domain

import (
	"encoding/json"
	"time"
)

// SourceShare is one entry of a source distribution.
type SourceShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ConfidenceRanges partitions decisions by confidence band.
type ConfidenceRanges struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// DailyCount is the number of decisions made on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayBucket is a per-day aggregate returned by the store.
type DayBucket struct {
	Date          string
	Count         int
	AvgConfidence float64
}

// StatsOverview is the dashboard summary over a trailing window.
type StatsOverview struct {
	PeriodDays         int                    `json:"period_days"`
	TotalDecisions     int                    `json:"total_decisions"`
	AverageConfidence  float64                `json:"average_confidence"`
	LowestConfidence   float64                `json:"lowest_confidence"`
	SourceDistribution map[Source]SourceShare `json:"source_distribution"`
	ConfidenceRanges   ConfidenceRanges       `json:"confidence_ranges"`
	DailyTrend         []DailyCount           `json:"daily_trend"`
}

// TimelinePoint is one day of the stats timeline.
type TimelinePoint struct {
	Date              string  `json:"date"`
	Count             int     `json:"count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// StatsTimeline is a daily series over a trailing window.
type StatsTimeline struct {
	PeriodDays int             `json:"period_days"`
	Data       []TimelinePoint `json:"data"`
}

// TraceStats summarizes traces over a trailing window.
type TraceStats struct {
	PeriodDays              int            `json:"period_days"`
	TotalDecisions          int            `json:"total_decisions"`
	DecisionsBySource       map[Source]int `json:"decisions_by_source"`
	AverageConfidence       float64        `json:"average_confidence"`
	LowConfidenceCount      int            `json:"low_confidence_count"`
	LowConfidencePercentage float64        `json:"low_confidence_percentage"`
}

// TraceTimeline lists the days of a window that had decisions.
type TraceTimeline struct {
	Timeline []DailyCount `json:"timeline"`
}

// SearchResult is one match of a trace search.
type SearchResult struct {
	DecisionID string    `json:"decision_id"`
	Timestamp  time.Time `json:"timestamp"`
	Decision   string    `json:"decision"`
	Reasoning  string    `json:"reasoning"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
}

// SearchResults is the response of a trace search.
type SearchResults struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// TagList is the set of distinct tags in use.
type TagList struct {
	Tags            []string `json:"tags"`
	TotalUniqueTags int      `json:"total_unique_tags"`
}

// ExportStep is a step as written to a structured export.
type ExportStep struct {
	StepOrder int             `json:"step_order"`
	StepType  StepType        `json:"step_type"`
	Content   string          `json:"content"`
	Timestamp string          `json:"timestamp"`
	Metadata  json.RawMessage `json:"metadata"`
}

// ExportDecision is a decision as written to a structured export.
type ExportDecision struct {
	DecisionID  string          `json:"decision_id"`
	Timestamp   string          `json:"timestamp"`
	InputData   json.RawMessage `json:"input_data"`
	SystemState json.RawMessage `json:"system_state"`
	Reasoning   string          `json:"reasoning"`
	Decision    string          `json:"decision"`
	Confidence  float64         `json:"confidence"`
	Source      Source          `json:"source"`
	Outcome     *string         `json:"outcome"`
	OutcomeData json.RawMessage `json:"outcome_data"`
	Tags        []string        `json:"tags"`
	Steps       []ExportStep    `json:"steps"`
}

// ExportDocument is the structured export of a set of decisions.
type ExportDocument struct {
	ExportDate     string           `json:"export_date"`
	TotalDecisions int              `json:"total_decisions"`
	Decisions      []ExportDecision `json:"decisions"`
}
