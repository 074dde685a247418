package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// CountDecisions counts decisions matching the filter.
func (s *SQLStore) CountDecisions(ctx context.Context, filter domain.DecisionFilter) (int, error) {
	where, args := s.where(filter)
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM decisions d`+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// AggregateConfidence computes the average or minimum confidence of the
// matching decisions, or 0 when none match.
func (s *SQLStore) AggregateConfidence(ctx context.Context, filter domain.DecisionFilter, metric domain.AggregateMetric) (float64, error) {
	var fn string
	switch metric {
	case domain.MetricAvgConfidence:
		fn = "AVG"
	case domain.MetricMinConfidence:
		fn = "MIN"
	default:
		return 0, fmt.Errorf("unknown aggregate metric %q", metric)
	}

	where, args := s.where(filter)
	var v sql.NullFloat64
	if err := s.queryRow(ctx, `SELECT `+fn+`(d.confidence) FROM decisions d`+where, args...).Scan(&v); err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return v.Float64, nil
}

// CountByConfidenceBand partitions the matching decisions into the high,
// medium and low confidence bands in a single pass.
func (s *SQLStore) CountByConfidenceBand(ctx context.Context, filter domain.DecisionFilter) (domain.ConfidenceRanges, error) {
	where, args := s.where(filter)
	query := `SELECT
		COALESCE(SUM(CASE WHEN d.confidence >= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN d.confidence >= ? AND d.confidence < ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN d.confidence < ? THEN 1 ELSE 0 END), 0)
		FROM decisions d` + where
	args = append([]interface{}{
		domain.HighConfidence,
		domain.MediumConfidence, domain.HighConfidence,
		domain.MediumConfidence,
	}, args...)

	var r domain.ConfidenceRanges
	if err := s.queryRow(ctx, query, args...).Scan(&r.High, &r.Medium, &r.Low); err != nil {
		return domain.ConfidenceRanges{}, err
	}
	return r, nil
}

// CountBySource groups the matching decisions by source. Sources without
// decisions are absent from the result.
func (s *SQLStore) CountBySource(ctx context.Context, filter domain.DecisionFilter) (map[domain.Source]int, error) {
	where, args := s.where(filter)
	rows, err := s.query(ctx, `SELECT d.source, COUNT(*) FROM decisions d`+where+` GROUP BY d.source`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Source]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		out[domain.Source(source)] = n
	}
	return out, rows.Err()
}

// GroupByDay buckets the matching decisions by UTC calendar day, ascending.
// Days without decisions are absent from the result.
func (s *SQLStore) GroupByDay(ctx context.Context, filter domain.DecisionFilter) ([]domain.DayBucket, error) {
	where, args := s.where(filter)
	day := s.dialect.dayExpr("d.timestamp")
	rows, err := s.query(ctx, `SELECT `+day+` AS day, COUNT(*), AVG(d.confidence) FROM decisions d`+where+
		` GROUP BY `+day+` ORDER BY day ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DayBucket
	for rows.Next() {
		var b domain.DayBucket
		var avg sql.NullFloat64
		if err := rows.Scan(&b.Date, &b.Count, &avg); err != nil {
			return nil, err
		}
		b.AvgConfidence = avg.Float64
		out = append(out, b)
	}
	return out, rows.Err()
}
