// Package leaderboard turns heterogeneous nutrient deviations into a
// bounded competitive score and a ranked, privacy-masked standing list.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mealtrace/mealtrace-bot/internal/models"
)

// Contender is one scope's input to the ranking: today's totals and the
// goals they are measured against.
type Contender struct {
	ScopeID     string
	DisplayName string
	Totals      models.NutrientTotals
	Goals       models.Goals
}

// Standing is one ranked leaderboard row. DisplayName is already masked.
type Standing struct {
	Rank        int    `json:"rank"`
	ScopeID     string `json:"scope_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Breakdown   string `json:"breakdown"`
	Percentages [6]int `json:"percentages"`
}

var categoryLabels = [6]string{"cal", "protein", "carbs", "fat", "fiber", "water"}

// percentages returns total/goal for each of the six categories. A zero goal
// yields 1 when the total is also zero and +Inf otherwise; the degenerate
// math is tolerated, not rejected, and an infinite deviation simply drops
// the scope from the visible board through the score>0 filter.
func percentages(t models.NutrientTotals, g models.Goals) [6]float64 {
	pairs := [6][2]float64{
		{t.Calories, g.Calories},
		{t.Protein, g.Protein},
		{t.Carbs, g.Carbs},
		{t.Fat, g.Fat},
		{t.Fiber, g.Fiber},
		{t.Hydration, g.Hydration},
	}
	var out [6]float64
	for i, p := range pairs {
		switch {
		case p[1] != 0:
			out[i] = p[0] / p[1]
		case p[0] == 0:
			out[i] = 1
		default:
			out[i] = math.Inf(1)
		}
	}
	return out
}

// Score computes the bounded 0-1000 competitive score: 1000 minus the mean
// absolute deviation from 100% across all six categories, floored at 0.
func Score(t models.NutrientTotals, g models.Goals) int {
	var sum float64
	for _, p := range percentages(t, g) {
		sum += math.Abs(p - 1)
	}
	avg := sum / 6
	score := math.Round(1000 - avg*1000)
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return int(score)
}

// Rank orders contenders by score descending and assigns ranks. Scopes
// scoring 0 (average deviation at or past 100%) are dropped entirely. Ties
// keep the input order.
func Rank(contenders []Contender) []Standing {
	var standings []Standing
	for _, c := range contenders {
		score := Score(c.Totals, c.Goals)
		if score <= 0 {
			continue
		}
		pcts := percentages(c.Totals, c.Goals)
		standings = append(standings, Standing{
			ScopeID:     c.ScopeID,
			DisplayName: MaskName(c.DisplayName),
			Score:       score,
			Breakdown:   breakdown(pcts),
			Percentages: roundPercentages(pcts),
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func roundPercentages(pcts [6]float64) [6]int {
	var out [6]int
	for i, p := range pcts {
		if math.IsInf(p, 1) {
			out[i] = math.MaxInt32
			continue
		}
		out[i] = int(math.Round(p * 100))
	}
	return out
}

// breakdown renders a per-category percentage summary line.
func breakdown(pcts [6]float64) string {
	parts := make([]string, 0, len(pcts))
	for i, p := range pcts {
		if math.IsInf(p, 1) {
			parts = append(parts, categoryLabels[i]+" ∞")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d%%", categoryLabels[i], int(math.Round(p*100))))
	}
	return strings.Join(parts, " | ")
}

// MaskName hides the interior of a display name for the public board. Names
// of three characters or fewer are shown as-is; an empty name becomes
// "Anonymous".
func MaskName(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) == 0 {
		return "Anonymous"
	}
	if len(runes) <= 3 {
		return string(runes)
	}
	masked := make([]rune, len(runes))
	masked[0] = runes[0]
	masked[len(runes)-1] = runes[len(runes)-1]
	for i := 1; i < len(runes)-1; i++ {
		masked[i] = '*'
	}
	return string(masked)
}

// NameResolver maps a scope id to its human display name. The bot layer
// backs this with the names it observes on inbound events.
type NameResolver interface {
	DisplayName(ctx context.Context, scope string) string
}
