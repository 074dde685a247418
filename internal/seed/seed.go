// Package seed loads demo decisions covering the common decision scenarios.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/repository"
)

// Options controls a demo load.
type Options struct {
	// Clear removes every existing decision first.
	Clear  bool
	Logger *slog.Logger
	// NewID overrides identifier generation, mainly for tests.
	NewID func() string
}

type placement struct {
	scenario scenario
	ago      time.Duration
}

// historyCount older decisions are spread between three hours and two days
// before now, alternating refund approvals and support escalations.
const historyCount = 10

var (
	historyStart = 3 * time.Hour
	historyEnd   = 48 * time.Hour
)

func placements() []placement {
	out := []placement{
		{refundApproval, 10 * time.Minute},
		{refundRejection, 25 * time.Minute},
		{supportEscalation, 45 * time.Minute},
		{manualReview, 60 * time.Minute},
		{contentModeration, 90 * time.Minute},
		{loanApproval, 120 * time.Minute},
	}
	step := (historyEnd - historyStart) / (historyCount - 1)
	for i := 0; i < historyCount; i++ {
		s := refundApproval
		if i%2 == 1 {
			s = supportEscalation
		}
		out = append(out, placement{s, historyStart + time.Duration(i)*step})
	}
	return out
}

// Load stores the demo decisions relative to now and returns how many were created.
func Load(ctx context.Context, store repository.Store, now time.Time, opts Options) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	newID := opts.NewID
	if newID == nil {
		newID = domain.NewDecisionID
	}

	if opts.Clear {
		if err := store.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear decisions: %w", err)
		}
		logger.InfoContext(ctx, "existing decisions cleared")
	}

	now = now.UTC().Truncate(time.Microsecond)
	created := 0
	for _, p := range placements() {
		d := p.scenario.build(newID(), now.Add(-p.ago))
		if err := store.CreateDecision(ctx, d); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", p.scenario.label, err)
		}
		created++
		logger.DebugContext(ctx, "demo decision created", "scenario", p.scenario.label, "decision_id", d.DecisionID)
	}

	logger.InfoContext(ctx, "demo data loaded", "decisions", created)
	return created, nil
}

func (s scenario) build(id string, at time.Time) *domain.Decision {
	d := &domain.Decision{
		DecisionID:  id,
		Timestamp:   at,
		InputData:   json.RawMessage(s.inputData),
		SystemState: rawOrNil(s.systemState),
		Reasoning:   s.reasoning,
		Decision:    s.decision,
		Confidence:  s.confidence,
		Source:      s.source,
		Outcome:     s.outcome,
		OutcomeData: rawOrNil(s.outcomeData),
		Tags:        append([]string(nil), s.tags...),
		Steps:       make([]domain.Step, len(s.steps)),
	}
	for i, st := range s.steps {
		d.Steps[i] = domain.Step{
			StepOrder:    i,
			StepType:     st.stepType,
			Timestamp:    at.Add(time.Duration(i) * s.spacing),
			Content:      st.content,
			StepMetadata: rawOrNil(st.metadata),
		}
	}
	return d
}

func rawOrNil(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
