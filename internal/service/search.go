package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

const reasoningPreviewLength = 200

// Search matches query against decision reasoning and decision text, newest
// first, returning at most limit results.
func (s *Service) Search(ctx context.Context, query string, limit int) (*domain.SearchResults, error) {
	decisions, err := s.store.SearchDecisions(ctx, domain.DecisionFilter{
		Search:      query,
		SearchScope: domain.SearchText,
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search decisions: %w", err)
	}

	results := make([]domain.SearchResult, len(decisions))
	for i, d := range decisions {
		results[i] = domain.SearchResult{
			DecisionID: d.DecisionID,
			Timestamp:  d.Timestamp,
			Decision:   d.Decision,
			Reasoning:  preview(d.Reasoning, reasoningPreviewLength),
			Confidence: d.Confidence,
			Source:     d.Source,
		}
	}
	return &domain.SearchResults{
		Query:        query,
		TotalResults: len(results),
		Results:      results,
	}, nil
}

// ListTags returns the distinct tags in use, sorted.
func (s *Service) ListTags(ctx context.Context) (*domain.TagList, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return &domain.TagList{Tags: tags, TotalUniqueTags: len(tags)}, nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
