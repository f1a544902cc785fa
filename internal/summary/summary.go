// Package summary produces the end-of-day nutrition recap for every active
// scope.
package summary

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mealtrace/mealtrace-bot/internal/bot"
	"github.com/mealtrace/mealtrace-bot/internal/goals"
	"github.com/mealtrace/mealtrace-bot/internal/leaderboard"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/models"
)

// Service renders and sends daily summaries.
type Service struct {
	ledger    *ledger.Ledger
	goals     *goals.Service
	transport bot.Transport
}

// New creates a summary Service.
func New(l *ledger.Ledger, g *goals.Service, t bot.Transport) *Service {
	return &Service{ledger: l, goals: g, transport: t}
}

// DispatchDailySummaries sends a recap to every scope with entries today.
// One scope's failure is logged and does not stop the fan-out.
func (s *Service) DispatchDailySummaries(ctx context.Context) error {
	date := models.LedgerDate(time.Now())
	scopes, err := s.ledger.ScopesWithEntriesOn(ctx, date)
	if err != nil {
		return fmt.Errorf("listing active scopes: %w", err)
	}

	for _, scope := range scopes {
		totals, err := s.ledger.Aggregate(ctx, scope, date)
		if err != nil {
			log.Printf("summary aggregate failed for scope %s: %v", scope, err)
			continue
		}
		text := Render(totals, s.goals.Get(ctx, scope))
		if _, err := s.transport.Send(ctx, scope, text, ""); err != nil {
			log.Printf("summary send failed for scope %s: %v", scope, err)
		}
	}

	log.Printf("Dispatched daily summaries to %d scopes", len(scopes))
	return nil
}

// Render builds the summary text for one scope's day.
func Render(t models.NutrientTotals, g models.Goals) string {
	score := leaderboard.Score(t, g)

	var b strings.Builder
	b.WriteString("🌙 Daily summary\n")
	fmt.Fprintf(&b, "Calories: %.0f of %.0f kcal\n", t.Calories, g.Calories)
	fmt.Fprintf(&b, "Protein: %.1f of %.0fg\n", t.Protein, g.Protein)
	fmt.Fprintf(&b, "Carbs: %.1f of %.0fg\n", t.Carbs, g.Carbs)
	fmt.Fprintf(&b, "Fat: %.1f of %.0fg\n", t.Fat, g.Fat)
	fmt.Fprintf(&b, "Fiber: %.1f of %.0fg\n", t.Fiber, g.Fiber)
	fmt.Fprintf(&b, "Hydration: %.0f of %.0fml\n", t.Hydration, g.Hydration)
	fmt.Fprintf(&b, "Score: %d/1000", score)
	return b.String()
}

// RunDaily invokes the service once per day at the given local hour until
// the context is cancelled. The trigger is wall-clock based, so a restart
// mid-day simply waits for the next occurrence.
func (s *Service) RunDaily(ctx context.Context, hour int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.DispatchDailySummaries(ctx); err != nil {
				log.Printf("daily summary dispatch failed: %v", err)
			}
		}
	}
}
