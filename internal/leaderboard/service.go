package leaderboard

import (
	"context"
	"fmt"

	"github.com/mealtrace/mealtrace-bot/internal/goals"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
)

// Service assembles the ranked board for a date by fanning out over every
// scope with entries on that date.
type Service struct {
	ledger *ledger.Ledger
	goals  *goals.Service
	names  NameResolver
}

// NewService creates a leaderboard Service.
func NewService(l *ledger.Ledger, g *goals.Service, names NameResolver) *Service {
	return &Service{ledger: l, goals: g, names: names}
}

// Standings computes the ranked leaderboard for the given date.
func (s *Service) Standings(ctx context.Context, date string) ([]Standing, error) {
	scopes, err := s.ledger.ScopesWithEntriesOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("listing active scopes: %w", err)
	}

	contenders := make([]Contender, 0, len(scopes))
	for _, scope := range scopes {
		totals, err := s.ledger.Aggregate(ctx, scope, date)
		if err != nil {
			return nil, fmt.Errorf("aggregating scope %s: %w", scope, err)
		}
		contenders = append(contenders, Contender{
			ScopeID:     scope,
			DisplayName: s.names.DisplayName(ctx, scope),
			Totals:      totals,
			Goals:       s.goals.Get(ctx, scope),
		})
	}
	return Rank(contenders), nil
}
