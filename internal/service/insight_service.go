package service

import (
	"context"
	"fmt"

	"github.com/markuplens/markuplens/internal/analysis"
	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/port"
)

// trendSessionWindow is how many recent sessions feed trend classification.
const trendSessionWindow = 5

// defaultSessionLimit bounds session listings when the caller does not ask
// for a specific limit.
const defaultSessionLimit = 10

const maxSessionLimit = 50

// InsightService computes read-time portfolio views over stored history.
type InsightService struct {
	store port.Store
}

// NewInsightService creates an insight service.
func NewInsightService(store port.Store) *InsightService {
	return &InsightService{store: store}
}

// Portfolio aggregates the user's latest session into portfolio insights,
// with trends computed against up to the last five sessions.
func (s *InsightService) Portfolio(ctx context.Context, username string) (*domain.PortfolioInsights, error) {
	sessions, err := s.store.RecentSessions(ctx, username, trendSessionWindow)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	return analysis.BuildPortfolio(username, sessions), nil
}

// Sessions returns up to limit recent sessions for a username, newest first,
// with nested repository analyses and file records.
func (s *InsightService) Sessions(ctx context.Context, username string, limit int) ([]domain.SessionSnapshot, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}
	return s.store.RecentSessions(ctx, username, limit)
}
