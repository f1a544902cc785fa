package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrace/mealtrace-bot/internal/goals"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

type fakeTransport struct {
	sent      map[string]string
	failScope string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: map[string]string{}}
}

func (f *fakeTransport) Send(_ context.Context, scope, text, _ string) (string, error) {
	if scope == f.failScope {
		return "", errors.New("transport down")
	}
	f.sent[scope] = text
	return "out-1", nil
}

func (f *fakeTransport) Edit(context.Context, string, string, string) error {
	return nil
}

func newSummaryFixture(t *testing.T) (*Service, *ledger.Ledger, *fakeTransport) {
	t.Helper()
	dsn := fmt.Sprintf("file:summary_%s?mode=memory&cache=shared", t.Name())
	s, err := store.Open("sqlite", dsn)
	require.NoError(t, err)
	l := ledger.New(s)
	transport := newFakeTransport()
	return New(l, goals.New(s), transport), l, transport
}

func TestRender(t *testing.T) {
	totals := models.NutrientTotals{
		Calories:  1800,
		Protein:   135,
		Carbs:     225,
		Fat:       63,
		Fiber:     22.5,
		Hydration: 1800,
	}
	text := Render(totals, models.DefaultGoals())

	assert.Contains(t, text, "Daily summary")
	assert.Contains(t, text, "Calories: 1800 of 2000 kcal")
	assert.Contains(t, text, "Hydration: 1800 of 2000ml")
	assert.Contains(t, text, "Score: 900/1000")
}

func TestDispatchFansOutToActiveScopes(t *testing.T) {
	svc, l, transport := newSummaryFixture(t)
	ctx := context.Background()
	today := models.LedgerDate(time.Now())

	for _, scope := range []string{"chatA", "chatB"} {
		_, err := l.Append(ctx, scope, today, models.FoodEntry{FoodName: "Pizza", Calories: 285})
		require.NoError(t, err)
	}
	// yesterday's entries must not trigger a summary today
	_, err := l.Append(ctx, "chatC", "2020-01-01", models.FoodEntry{FoodName: "Salad", Calories: 33})
	require.NoError(t, err)

	require.NoError(t, svc.DispatchDailySummaries(ctx))

	assert.Len(t, transport.sent, 2)
	assert.Contains(t, transport.sent["chatA"], "Daily summary")
	assert.Contains(t, transport.sent["chatB"], "Daily summary")
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	svc, l, transport := newSummaryFixture(t)
	ctx := context.Background()
	today := models.LedgerDate(time.Now())

	for _, scope := range []string{"chatA", "chatB"} {
		_, err := l.Append(ctx, scope, today, models.FoodEntry{FoodName: "Pizza", Calories: 285})
		require.NoError(t, err)
	}
	transport.failScope = "chatA"

	require.NoError(t, svc.DispatchDailySummaries(ctx))
	assert.Contains(t, transport.sent, "chatB")
}
