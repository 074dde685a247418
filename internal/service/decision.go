package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/trace"
)

// CreateDecision validates the request, derives its trace when no steps are
// supplied, and stores the decision with all of its steps atomically.
func (s *Service) CreateDecision(ctx context.Context, req *domain.CreateDecisionRequest) (*domain.Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	confidence := domain.RoundConfidence(*req.Confidence)
	decision := &domain.Decision{
		DecisionID:  s.newID(),
		Timestamp:   now,
		InputData:   req.InputData,
		SystemState: req.SystemState,
		Reasoning:   req.Reasoning,
		Decision:    req.Decision,
		Confidence:  confidence,
		Source:      req.Source,
		Outcome:     req.Outcome,
		OutcomeData: req.OutcomeData,
		Tags:        req.Tags,
	}

	if len(req.Steps) == 0 {
		fields := trace.FieldsFrom(req)
		fields.Confidence = confidence
		decision.Steps = trace.Build(fields, now)
	} else {
		decision.Steps = trace.Sequence(req.Steps, now)
	}

	if err := s.store.CreateDecision(ctx, decision); err != nil {
		s.logger.ErrorContext(ctx, "failed to store decision", "decision_id", decision.DecisionID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCreateFailed, err)
	}

	s.metrics.DecisionCreated(decision.Source)
	s.logger.InfoContext(ctx, "decision created",
		"decision_id", decision.DecisionID,
		"source", decision.Source,
		"confidence", decision.Confidence,
		"steps", len(decision.Steps),
	)
	return decision, nil
}

// GetDecision returns a decision with its ordered steps.
func (s *Service) GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error) {
	decision, err := s.store.GetDecision(ctx, decisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	if decision == nil {
		return nil, domain.ErrNotFound
	}
	return decision, nil
}

// ReplayDecision returns a decision prepared for playback. The duration spans
// the earliest to the latest step timestamp and is nil when there are no steps.
func (s *Service) ReplayDecision(ctx context.Context, decisionID string) (*domain.DecisionReplay, error) {
	decision, err := s.GetDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}

	replay := &domain.DecisionReplay{
		Decision:   decision,
		TotalSteps: len(decision.Steps),
	}
	if len(decision.Steps) > 0 {
		first, last := decision.Steps[0].Timestamp, decision.Steps[0].Timestamp
		for _, st := range decision.Steps[1:] {
			if st.Timestamp.Before(first) {
				first = st.Timestamp
			}
			if st.Timestamp.After(last) {
				last = st.Timestamp
			}
		}
		seconds := last.Sub(first).Seconds()
		replay.DurationSeconds = &seconds
	}
	return replay, nil
}

// DeleteDecision removes a decision and its steps.
func (s *Service) DeleteDecision(ctx context.Context, decisionID string) error {
	deleted, err := s.store.DeleteDecision(ctx, decisionID)
	if err != nil {
		return fmt.Errorf("failed to delete decision: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.metrics.DecisionDeleted()
	s.logger.InfoContext(ctx, "decision deleted", "decision_id", decisionID)
	return nil
}

// ListDecisions returns one page of decision summaries.
func (s *Service) ListDecisions(ctx context.Context, q domain.ListQuery) (*domain.DecisionPage, error) {
	summaries, total, err := s.store.QueryDecisions(ctx, q.Filter, q.Sort, q.Offset, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return &domain.DecisionPage{
		Decisions: summaries,
		Total:     total,
		Limit:     q.Limit,
		Offset:    q.Offset,
		HasMore:   q.Offset < total-q.Limit,
	}, nil
}
