// Package service implements decision creation, querying, statistics and export
// on top of a repository.Store.
package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/metrics"
	"github.com/xiaot623/decision-timeline/internal/repository"
)

type Service struct {
	store   repository.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Options configures optional collaborators of a Service.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

func New(store repository.Store, opts Options) *Service {
	s := &Service{
		store:   store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		newID:   domain.NewDecisionID,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// clock returns the current instant in UTC at the precision the store keeps.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
