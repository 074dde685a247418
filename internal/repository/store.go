// Package repository defines the decision store interface and its SQL implementations.
package repository

import (
	"context"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// Store defines the interface for decision persistence.
type Store interface {
	// Decision operations
	CreateDecision(ctx context.Context, decision *domain.Decision) error
	GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error)
	DeleteDecision(ctx context.Context, decisionID string) (bool, error)
	DeleteAll(ctx context.Context) error

	// Query operations
	QueryDecisions(ctx context.Context, filter domain.DecisionFilter, sort domain.SortOrder, offset, limit int) ([]domain.DecisionSummary, int, error)
	ListDecisions(ctx context.Context, filter domain.DecisionFilter, sort domain.SortOrder) ([]domain.Decision, error)
	SearchDecisions(ctx context.Context, filter domain.DecisionFilter, limit int) ([]domain.Decision, error)
	ListTags(ctx context.Context) ([]string, error)

	// Aggregate operations
	CountDecisions(ctx context.Context, filter domain.DecisionFilter) (int, error)
	AggregateConfidence(ctx context.Context, filter domain.DecisionFilter, metric domain.AggregateMetric) (float64, error)
	CountByConfidenceBand(ctx context.Context, filter domain.DecisionFilter) (domain.ConfidenceRanges, error)
	CountBySource(ctx context.Context, filter domain.DecisionFilter) (map[domain.Source]int, error)
	GroupByDay(ctx context.Context, filter domain.DecisionFilter) ([]domain.DayBucket, error)

	// Lifecycle
	Close() error
}
