package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

const (
	day        = 24 * time.Hour
	dateLayout = "2006-01-02"
	trendDays  = 7
)

// StatsOverview summarizes the decisions of the trailing window of days.
// The daily trend always covers the last seven calendar days.
func (s *Service) StatsOverview(ctx context.Context, days int) (*domain.StatsOverview, error) {
	now := s.clock()
	window := domain.DecisionFilter{Since: domain.Time(now.Add(-time.Duration(days) * day))}

	bands, err := s.store.CountByConfidenceBand(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to count confidence bands: %w", err)
	}
	total := bands.High + bands.Medium + bands.Low

	avg, err := s.store.AggregateConfidence(ctx, window, domain.MetricAvgConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate confidence: %w", err)
	}
	lowest, err := s.store.AggregateConfidence(ctx, window, domain.MetricMinConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate confidence: %w", err)
	}
	bySource, err := s.store.CountBySource(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}

	distribution := make(map[domain.Source]domain.SourceShare)
	for _, source := range domain.Sources {
		count := bySource[source]
		if count == 0 {
			continue
		}
		distribution[source] = domain.SourceShare{
			Count:      count,
			Percentage: round(percentage(count, total), 2),
		}
	}

	trend, err := s.dailySeries(ctx, now, trendDays)
	if err != nil {
		return nil, err
	}
	daily := make([]domain.DailyCount, len(trend))
	for i, p := range trend {
		daily[i] = domain.DailyCount{Date: p.Date, Count: p.Count}
	}

	return &domain.StatsOverview{
		PeriodDays:         days,
		TotalDecisions:     total,
		AverageConfidence:  round(avg, 3),
		LowestConfidence:   round(lowest, 3),
		SourceDistribution: distribution,
		ConfidenceRanges:   bands,
		DailyTrend:         daily,
	}, nil
}

// StatsTimeline returns one point per calendar day for the last days days,
// oldest first, including days without decisions.
func (s *Service) StatsTimeline(ctx context.Context, days int) (*domain.StatsTimeline, error) {
	points, err := s.dailySeries(ctx, s.clock(), days)
	if err != nil {
		return nil, err
	}
	return &domain.StatsTimeline{PeriodDays: days, Data: points}, nil
}

// TraceStats summarizes sources and low-confidence decisions over the
// trailing window of days.
func (s *Service) TraceStats(ctx context.Context, days int) (*domain.TraceStats, error) {
	window := domain.DecisionFilter{Since: domain.Time(s.clock().Add(-time.Duration(days) * day))}

	total, err := s.store.CountDecisions(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	bySource, err := s.store.CountBySource(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}
	avg, err := s.store.AggregateConfidence(ctx, window, domain.MetricAvgConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate confidence: %w", err)
	}

	low := window
	low.ConfidenceBelow = domain.Float(domain.LowConfidence)
	lowCount, err := s.store.CountDecisions(ctx, low)
	if err != nil {
		return nil, fmt.Errorf("failed to count low confidence decisions: %w", err)
	}

	return &domain.TraceStats{
		PeriodDays:              days,
		TotalDecisions:          total,
		DecisionsBySource:       bySource,
		AverageConfidence:       round(avg, 4),
		LowConfidenceCount:      lowCount,
		LowConfidencePercentage: round(float64(lowCount)/float64(max(total, 1))*100, 2),
	}, nil
}

// TraceTimeline returns per-day counts over the trailing window of days,
// listing only days that have decisions.
func (s *Service) TraceTimeline(ctx context.Context, days int) (*domain.TraceTimeline, error) {
	window := domain.DecisionFilter{Since: domain.Time(s.clock().Add(-time.Duration(days) * day))}

	buckets, err := s.store.GroupByDay(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to group decisions by day: %w", err)
	}
	timeline := make([]domain.DailyCount, 0, len(buckets))
	for _, b := range buckets {
		timeline = append(timeline, domain.DailyCount{Date: b.Date, Count: b.Count})
	}
	return &domain.TraceTimeline{Timeline: timeline}, nil
}

// dailySeries aggregates the n UTC calendar days ending today, zero-filling
// days without decisions.
func (s *Service) dailySeries(ctx context.Context, now time.Time, n int) ([]domain.TimelinePoint, error) {
	today := now.Truncate(day)
	start := today.AddDate(0, 0, -(n - 1))

	buckets, err := s.store.GroupByDay(ctx, domain.DecisionFilter{
		Since: domain.Time(start),
		Until: domain.Time(today.AddDate(0, 0, 1)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to group decisions by day: %w", err)
	}
	byDate := make(map[string]domain.DayBucket, len(buckets))
	for _, b := range buckets {
		byDate[b.Date] = b
	}

	points := make([]domain.TimelinePoint, n)
	for i := range points {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		b := byDate[date]
		points[i] = domain.TimelinePoint{
			Date:              date,
			Count:             b.Count,
			AverageConfidence: round(b.AvgConfidence, 3),
		}
	}
	return points, nil
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
