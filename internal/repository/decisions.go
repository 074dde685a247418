package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// CreateDecision stores a decision and all of its steps in one transaction.
func (s *SQLStore) CreateDecision(ctx context.Context, decision *domain.Decision) error {
	tags, err := encodeTags(decision.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := s.exec(ctx, tx,
			`INSERT INTO decisions (decision_id, timestamp, input_data, system_state, reasoning, decision, confidence, source, outcome, outcome_data, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			decision.DecisionID, decision.Timestamp.UTC(), string(decision.InputData), nullStringBytes(decision.SystemState),
			decision.Reasoning, decision.Decision, decision.Confidence, string(decision.Source),
			nullString(decision.Outcome), nullStringBytes(decision.OutcomeData), tags)
		if err != nil {
			return fmt.Errorf("insert decision: %w", err)
		}

		for _, st := range decision.Steps {
			_, err := s.exec(ctx, tx,
				`INSERT INTO decision_steps (decision_id, step_order, step_type, timestamp, content, step_metadata) VALUES (?, ?, ?, ?, ?, ?)`,
				decision.DecisionID, st.StepOrder, string(st.StepType), st.Timestamp.UTC(), st.Content, nullStringBytes(st.StepMetadata))
			if err != nil {
				return fmt.Errorf("insert step %d: %w", st.StepOrder, err)
			}
		}
		return nil
	})
}

// GetDecision retrieves a decision and its ordered steps. It returns nil when
// no decision has the identifier.
func (s *SQLStore) GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error) {
	row := s.queryRow(ctx, `SELECT `+decisionColumns+` FROM decisions d WHERE d.decision_id = ?`, decisionID)
	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `SELECT `+stepColumns+` FROM decision_steps s WHERE s.decision_id = ? ORDER BY s.step_order ASC`, decisionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Steps = []domain.Step{}
	for rows.Next() {
		_, st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		d.Steps = append(d.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDecision removes a decision's steps and then the decision itself.
// It reports false when no decision has the identifier.
func (s *SQLStore) DeleteDecision(ctx context.Context, decisionID string) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM decision_steps WHERE decision_id = ?`, decisionID); err != nil {
			return fmt.Errorf("delete steps: %w", err)
		}
		res, err := s.exec(ctx, tx, `DELETE FROM decisions WHERE decision_id = ?`, decisionID)
		if err != nil {
			return fmt.Errorf("delete decision: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteAll removes every decision and step.
func (s *SQLStore) DeleteAll(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM decision_steps`); err != nil {
			return err
		}
		_, err := s.exec(ctx, tx, `DELETE FROM decisions`)
		return err
	})
}

// QueryDecisions returns one page of decision summaries and the number of
// decisions matching the filter.
func (s *SQLStore) QueryDecisions(ctx context.Context, filter domain.DecisionFilter, order domain.SortOrder, offset, limit int) ([]domain.DecisionSummary, int, error) {
	total, err := s.CountDecisions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	where, args := s.where(filter)
	query := `SELECT d.decision_id, d.timestamp, d.decision, d.confidence, d.source, d.outcome, d.tags,
		(SELECT COUNT(*) FROM decision_steps s WHERE s.decision_id = d.decision_id) AS step_count
		FROM decisions d` + where + orderBy(order) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := []domain.DecisionSummary{}
	for rows.Next() {
		var sum domain.DecisionSummary
		var source string
		var outcome, tags sql.NullString
		if err := rows.Scan(&sum.DecisionID, &sum.Timestamp, &sum.Decision, &sum.Confidence, &source, &outcome, &tags, &sum.StepCount); err != nil {
			return nil, 0, err
		}
		sum.Timestamp = sum.Timestamp.UTC()
		sum.Source = domain.Source(source)
		if outcome.Valid {
			sum.Outcome = outcome.String
		}
		if tags.Valid {
			if sum.Tags, err = decodeTags(tags.String); err != nil {
				return nil, 0, err
			}
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// ListDecisions returns every matching decision with its steps, unpaginated.
func (s *SQLStore) ListDecisions(ctx context.Context, filter domain.DecisionFilter, order domain.SortOrder) ([]domain.Decision, error) {
	decisions, err := s.selectDecisions(ctx, filter, order, 0)
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return decisions, nil
	}

	index := make(map[string]int, len(decisions))
	for i := range decisions {
		decisions[i].Steps = []domain.Step{}
		index[decisions[i].DecisionID] = i
	}

	where, args := s.where(filter)
	rows, err := s.query(ctx, `SELECT `+stepColumns+` FROM decision_steps s
		JOIN decisions d ON d.decision_id = s.decision_id`+where+`
		ORDER BY s.decision_id, s.step_order ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		decisionID, st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		// Decisions inserted between the two queries are skipped.
		if i, ok := index[decisionID]; ok {
			decisions[i].Steps = append(decisions[i].Steps, st)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// SearchDecisions returns up to limit matching decisions, newest first,
// without their steps.
func (s *SQLStore) SearchDecisions(ctx context.Context, filter domain.DecisionFilter, limit int) ([]domain.Decision, error) {
	return s.selectDecisions(ctx, filter, domain.SortDesc, limit)
}

func (s *SQLStore) selectDecisions(ctx context.Context, filter domain.DecisionFilter, order domain.SortOrder, limit int) ([]domain.Decision, error) {
	where, args := s.where(filter)
	query := `SELECT ` + decisionColumns + ` FROM decisions d` + where + orderBy(order)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decisions := []domain.Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// ListTags returns the distinct tags of all decisions, sorted ascending.
func (s *SQLStore) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, `SELECT d.tags FROM decisions d WHERE d.tags IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		tags, err := decodeTags(raw)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			seen[tag] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out, nil
}
