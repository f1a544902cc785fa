package bot

import (
	"fmt"
	"strings"

	"github.com/mealtrace/mealtrace-bot/internal/leaderboard"
	"github.com/mealtrace/mealtrace-bot/internal/models"
)

// formatAnalysis renders one analyzed entry plus the day so far.
func formatAnalysis(e models.FoodEntry, totals models.NutrientTotals, g models.Goals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍽 %s (%s)\n", e.FoodName, e.ServingSize)
	fmt.Fprintf(&b, "Calories: %.0f kcal\n", e.Calories)
	fmt.Fprintf(&b, "Protein: %.1fg | Carbs: %.1fg | Fat: %.1fg\n", e.Protein, e.Carbs, e.Fat)
	if e.Fiber > 0 || e.Hydration > 0 {
		fmt.Fprintf(&b, "Fiber: %.1fg | Hydration: %.0fml\n", e.Fiber, e.Hydration)
	}
	fmt.Fprintf(&b, "Confidence: %s\n\n", e.Confidence)
	b.WriteString(formatTotals(totals, g))
	b.WriteString("\nReply with a correction (e.g. \"500ml coke\") or \"remove\".")
	return b.String()
}

// formatTotals renders today's totals with percentage-of-goal per category.
func formatTotals(t models.NutrientTotals, g models.Goals) string {
	var b strings.Builder
	b.WriteString("Today so far:\n")
	fmt.Fprintf(&b, "Calories: %.0f/%.0f kcal (%s)\n", t.Calories, g.Calories, pct(t.Calories, g.Calories))
	fmt.Fprintf(&b, "Protein: %.1f/%.0fg (%s)\n", t.Protein, g.Protein, pct(t.Protein, g.Protein))
	fmt.Fprintf(&b, "Carbs: %.1f/%.0fg (%s)\n", t.Carbs, g.Carbs, pct(t.Carbs, g.Carbs))
	fmt.Fprintf(&b, "Fat: %.1f/%.0fg (%s)\n", t.Fat, g.Fat, pct(t.Fat, g.Fat))
	fmt.Fprintf(&b, "Fiber: %.1f/%.0fg (%s)\n", t.Fiber, g.Fiber, pct(t.Fiber, g.Fiber))
	fmt.Fprintf(&b, "Hydration: %.0f/%.0fml (%s)", t.Hydration, g.Hydration, pct(t.Hydration, g.Hydration))
	return b.String()
}

// pct renders a percentage-of-goal, tolerating zero goals.
func pct(total, goal float64) string {
	if goal == 0 {
		if total == 0 {
			return "100%"
		}
		return "∞"
	}
	return fmt.Sprintf("%.0f%%", total/goal*100)
}

func formatCorrection(e models.FoodEntry, totals models.NutrientTotals, g models.Goals) string {
	return fmt.Sprintf("✏️ Updated to %s (%s): %.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fat.\n\n%s",
		e.FoodName, e.ServingSize, e.Calories, e.Protein, e.Carbs, e.Fat, formatTotals(totals, g))
}

func formatRemoval(e models.FoodEntry, totals models.NutrientTotals, g models.Goals) string {
	return fmt.Sprintf("🗑 Removed %s (%.0f kcal).\n\n%s", e.FoodName, e.Calories, formatTotals(totals, g))
}

// formatDay lists today's entries with the 1-based numbers /remove uses.
func formatDay(entries []models.FoodEntry, totals models.NutrientTotals, g models.Goals) string {
	if len(entries) == 0 {
		return "Nothing logged today yet. Send me a food photo!"
	}
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (%s) — %.0f kcal\n", i+1, e.FoodName, e.ServingSize, e.Calories)
	}
	b.WriteString("\n")
	b.WriteString(formatTotals(totals, g))
	return b.String()
}

func formatGoals(g models.Goals) string {
	return fmt.Sprintf(
		"Daily goals:\nCalories: %.0f kcal\nProtein: %.0fg\nCarbs: %.0fg\nFat: %.0fg\nFiber: %.0fg\nHydration: %.0fml",
		g.Calories, g.Protein, g.Carbs, g.Fat, g.Fiber, g.Hydration)
}

func formatStandings(standings []leaderboard.Standing) string {
	if len(standings) == 0 {
		return "No one is on the board yet today."
	}
	var b strings.Builder
	b.WriteString("🏆 Today's leaderboard:\n")
	for _, s := range standings {
		fmt.Fprintf(&b, "%d. %s — %d\n", s.Rank, s.DisplayName, s.Score)
		if s.Rank <= 3 {
			fmt.Fprintf(&b, "   %s\n", s.Breakdown)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
