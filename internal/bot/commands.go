package bot

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mealtrace/mealtrace-bot/internal/convstate"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/models"
)

const helpText = `Send me a food photo and I'll estimate its nutrition.
Reply to an analysis with a correction like "500ml coke", or with "remove" to delete it.

/today - today's totals vs your goals
/goals - show your current goals
/setup - answer a few questions to set personal goals
/remove N - remove today's entry number N
/leaderboard - today's standings`

// handleCommand dispatches slash commands.
func (h *Handler) handleCommand(ctx context.Context, ev TextEvent) {
	fields := strings.Fields(ev.Text)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/start", "/help":
		h.send(ctx, ev.Scope, helpText, "")
	case "/today":
		h.cmdToday(ctx, ev)
	case "/goals":
		g := h.goals.Get(ctx, ev.Scope)
		h.send(ctx, ev.Scope, formatGoals(g), "")
	case "/setup":
		h.startQuestionnaire(ctx, ev)
	case "/remove":
		h.cmdRemove(ctx, ev, fields)
	case "/leaderboard":
		h.cmdLeaderboard(ctx, ev)
	default:
		h.send(ctx, ev.Scope, "Unknown command. Try /help.", "")
	}
}

func (h *Handler) cmdToday(ctx context.Context, ev TextEvent) {
	date := models.LedgerDate(time.Now())
	entries, err := h.ledger.Entries(ctx, ev.Scope, date)
	if err != nil {
		log.Printf("listing entries failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't read today's log. Please try again.", "")
		return
	}
	totals, err := h.ledger.Aggregate(ctx, ev.Scope, date)
	if err != nil {
		log.Printf("aggregate failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't read today's log. Please try again.", "")
		return
	}
	h.send(ctx, ev.Scope, formatDay(entries, totals, h.goals.Get(ctx, ev.Scope)), "")
}

// cmdRemove deletes today's entry by its 1-based position as shown by
// /today.
func (h *Handler) cmdRemove(ctx context.Context, ev TextEvent, fields []string) {
	if len(fields) < 2 {
		h.send(ctx, ev.Scope, "Usage: /remove N (see /today for numbers)", "")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		h.send(ctx, ev.Scope, "That doesn't look like an entry number. See /today.", "")
		return
	}

	date := models.LedgerDate(time.Now())
	removed, err := h.ledger.RemoveByIndex(ctx, ev.Scope, date, n-1)
	if err != nil {
		if err == ledger.ErrNotFound {
			h.send(ctx, ev.Scope, fmt.Sprintf("There's no entry number %d today.", n), "")
			return
		}
		log.Printf("remove by index failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't remove that entry. Please try again.", "")
		return
	}

	totals, err := h.ledger.Aggregate(ctx, ev.Scope, date)
	if err != nil {
		log.Printf("aggregate failed for scope %s: %v", ev.Scope, err)
	}
	h.send(ctx, ev.Scope, formatRemoval(removed, totals, h.goals.Get(ctx, ev.Scope)), "")
}

func (h *Handler) cmdLeaderboard(ctx context.Context, ev TextEvent) {
	standings, err := h.board.Standings(ctx, models.LedgerDate(time.Now()))
	if err != nil {
		log.Printf("leaderboard failed: %v", err)
		h.send(ctx, ev.Scope, "The leaderboard is unavailable right now.", "")
		return
	}
	h.send(ctx, ev.Scope, formatStandings(standings), "")
}

// startQuestionnaire begins the goal-setup dialog. The session expires on
// its own if the user walks away mid-dialog.
func (h *Handler) startQuestionnaire(ctx context.Context, ev TextEvent) {
	sess := convstate.Session{State: convstate.StateAwaitingAge, Data: map[string]string{}}
	if err := h.dialogs.Put(ctx, ev.Scope, sess); err != nil {
		log.Printf("dialog start failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't start goal setup. Please try again.", "")
		return
	}
	h.send(ctx, ev.Scope, "Let's set your goals. How old are you?", "")
}

// handleDialog advances the goal-setup state machine by one answer.
func (h *Handler) handleDialog(ctx context.Context, ev TextEvent) {
	sess, err := h.dialogs.Get(ctx, ev.Scope)
	if err != nil {
		log.Printf("dialog lookup failed for scope %s: %v", ev.Scope, err)
		return
	}

	switch sess.State {
	case convstate.StateAwaitingAge:
		h.dialogNumber(ctx, ev, sess, "age", 10, 120, convstate.StateAwaitingHeight,
			"Got it. How tall are you, in cm?")
	case convstate.StateAwaitingHeight:
		h.dialogNumber(ctx, ev, sess, "height", 50, 250, convstate.StateAwaitingWeight,
			"Thanks. What's your weight, in kg?")
	case convstate.StateAwaitingWeight:
		h.dialogNumber(ctx, ev, sess, "weight", 10, 400, convstate.StateAwaitingActivity,
			"Almost done. How active are you? (sedentary, light, moderate, active)")
	case convstate.StateAwaitingActivity:
		h.finishQuestionnaire(ctx, ev, sess)
	default:
		h.send(ctx, ev.Scope, "Send me a food photo, or /help for commands.", "")
	}
}

// dialogNumber validates one numeric answer and advances the dialog.
func (h *Handler) dialogNumber(ctx context.Context, ev TextEvent, sess convstate.Session, field string, min, max float64, next convstate.State, prompt string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(ev.Text), 64)
	if err != nil || v < min || v > max {
		h.send(ctx, ev.Scope, fmt.Sprintf("Please send a number between %.0f and %.0f.", min, max), "")
		return
	}

	sess.Data[field] = strconv.FormatFloat(v, 'f', -1, 64)
	sess.State = next
	if err := h.dialogs.Put(ctx, ev.Scope, sess); err != nil {
		log.Printf("dialog save failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I lost track of the setup. Please /setup again.", "")
		return
	}
	h.send(ctx, ev.Scope, prompt, "")
}

var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// finishQuestionnaire computes and stores personal goals from the collected
// answers.
func (h *Handler) finishQuestionnaire(ctx context.Context, ev TextEvent, sess convstate.Session) {
	factor, ok := activityFactors[strings.ToLower(strings.TrimSpace(ev.Text))]
	if !ok {
		h.send(ctx, ev.Scope, "Please answer sedentary, light, moderate or active.", "")
		return
	}

	age, _ := strconv.ParseFloat(sess.Data["age"], 64)
	height, _ := strconv.ParseFloat(sess.Data["height"], 64)
	weight, _ := strconv.ParseFloat(sess.Data["weight"], 64)

	g := computeGoals(age, height, weight, factor)
	if err := h.goals.Set(ctx, ev.Scope, g); err != nil {
		log.Printf("goal save failed for scope %s: %v", ev.Scope, err)
		h.send(ctx, ev.Scope, "I couldn't save your goals. Please try again.", "")
		return
	}
	if err := h.dialogs.Clear(ctx, ev.Scope); err != nil {
		log.Printf("dialog clear failed for scope %s: %v", ev.Scope, err)
	}

	h.send(ctx, ev.Scope, "Your goals are set!\n"+formatGoals(g), "")
}

// computeGoals derives daily targets from a Mifflin-St Jeor energy estimate
// scaled by the activity factor. Protein and fat follow bodyweight, carbs
// fill the remaining energy, fiber tracks total energy, hydration tracks
// bodyweight.
func computeGoals(age, heightCm, weightKg, activity float64) models.Goals {
	bmr := 10*weightKg + 6.25*heightCm - 5*age
	calories := math.Round(bmr * activity)

	protein := math.Round(1.6 * weightKg)
	fat := math.Round(calories * 0.25 / 9)
	carbs := math.Round((calories - protein*4 - fat*9) / 4)
	if carbs < 0 {
		carbs = 0
	}

	return models.Goals{
		Calories:  calories,
		Protein:   protein,
		Carbs:     carbs,
		Fat:       fat,
		Fiber:     math.Round(14 * calories / 1000),
		Hydration: math.Round(35 * weightKg),
	}
}
