package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_%s?mode=memory&cache=shared", t.Name())
	s, err := store.Open("sqlite", dsn)
	require.NoError(t, err)
	return New(s)
}

func entry(name string, calories, protein float64) models.FoodEntry {
	return models.FoodEntry{
		FoodName:    name,
		Calories:    calories,
		Protein:     protein,
		ServingSize: "Standard serving",
		Confidence:  models.ConfidenceMedium,
	}
}

func TestAppendAssignsIdentity(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	appended, err := l.Append(ctx, "chat1", "2025-06-01", entry("Pizza", 285, 12))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, appended.ID)
	assert.False(t, appended.CreatedAt.IsZero())
}

func TestAppendPreservesOrder(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	for i, name := range []string{"Coffee", "Pizza", "Salad"} {
		_, err := l.Append(ctx, "chat1", "2025-06-01", entry(name, float64(i*100), 0))
		require.NoError(t, err)
	}

	entries, err := l.Entries(ctx, "chat1", "2025-06-01")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Coffee", entries[0].FoodName)
	assert.Equal(t, "Pizza", entries[1].FoodName)
	assert.Equal(t, "Salad", entries[2].FoodName)
}

func TestAggregateSumsAllFields(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	e1 := entry("Pizza", 285, 12)
	e1.Fiber = 2
	e1.Hydration = 0
	e2 := entry("Juice", 110, 0.5)
	e2.Hydration = 250

	_, err := l.Append(ctx, "chat1", "2025-06-01", e1)
	require.NoError(t, err)
	_, err = l.Append(ctx, "chat1", "2025-06-01", e2)
	require.NoError(t, err)

	totals, err := l.Aggregate(ctx, "chat1", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, 395.0, totals.Calories)
	assert.Equal(t, 12.5, totals.Protein)
	assert.Equal(t, 2.0, totals.Fiber)
	assert.Equal(t, 250.0, totals.Hydration)
}

func TestAggregateEmptyDayIsZero(t *testing.T) {
	l := newTestLedger(t)

	totals, err := l.Aggregate(context.Background(), "nobody", "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, models.NutrientTotals{}, totals)
}

func TestRemoveByIndex(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Append(ctx, "chat1", "2025-06-01", entry("Coffee", 5, 0.3))
	require.NoError(t, err)
	_, err = l.Append(ctx, "chat1", "2025-06-01", entry("Pizza", 285, 12))
	require.NoError(t, err)

	t.Run("valid index removes and shifts", func(t *testing.T) {
		removed, err := l.RemoveByIndex(ctx, "chat1", "2025-06-01", 0)
		require.NoError(t, err)
		assert.Equal(t, "Coffee", removed.FoodName)

		totals, err := l.Aggregate(ctx, "chat1", "2025-06-01")
		require.NoError(t, err)
		assert.Equal(t, 285.0, totals.Calories)
	})

	t.Run("out of range reports not found and changes nothing", func(t *testing.T) {
		_, err := l.RemoveByIndex(ctx, "chat1", "2025-06-01", 5)
		assert.ErrorIs(t, err, ErrNotFound)

		totals, err := l.Aggregate(ctx, "chat1", "2025-06-01")
		require.NoError(t, err)
		assert.Equal(t, 285.0, totals.Calories)
	})

	t.Run("negative index reports not found", func(t *testing.T) {
		_, err := l.RemoveByIndex(ctx, "chat1", "2025-06-01", -1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRemoveByMatch(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	first, err := l.Append(ctx, "chat1", "2025-06-01", entry("Pizza", 285, 12))
	require.NoError(t, err)
	_, err = l.Append(ctx, "chat1", "2025-06-01", entry("Pizza", 285, 12))
	require.NoError(t, err)

	removed, err := l.RemoveByMatch(ctx, "chat1", "2025-06-01", func(e models.FoodEntry) bool {
		return e.ID == first.ID
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, removed.ID)

	entries, err := l.Entries(ctx, "chat1", "2025-06-01")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = l.RemoveByMatch(ctx, "chat1", "2025-06-01", func(e models.FoodEntry) bool {
		return e.ID == first.ID
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceByMatch(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	original := entry("Mystery dish", 500, 20)
	original.Fiber = 4
	original.Hydration = 100
	appended, err := l.Append(ctx, "chat1", "2025-06-01", original)
	require.NoError(t, err)

	patch := Patch{
		FoodName:    "Coke",
		Calories:    280,
		Carbs:       78,
		ServingSize: "500ml",
	}
	updated, err := l.ReplaceByMatch(ctx, "chat1", "2025-06-01", func(e models.FoodEntry) bool {
		return e.ID == appended.ID
	}, patch)
	require.NoError(t, err)

	assert.Equal(t, "Coke", updated.FoodName)
	assert.Equal(t, 280.0, updated.Calories)
	assert.Equal(t, models.ConfidenceCorrected, updated.Confidence)
	// identity and AI-only fields survive the correction
	assert.Equal(t, appended.ID, updated.ID)
	assert.True(t, appended.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, 4.0, updated.Fiber)
	assert.Equal(t, 100.0, updated.Hydration)
}

func TestReplaceByMatchNotFound(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.ReplaceByMatch(context.Background(), "chat1", "2025-06-01", func(models.FoodEntry) bool {
		return true
	}, Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScopesWithEntriesOn(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Append(ctx, "chatA", "2025-06-01", entry("Pizza", 285, 12))
	require.NoError(t, err)
	_, err = l.Append(ctx, "chatB", "2025-06-01", entry("Salad", 33, 2.5))
	require.NoError(t, err)
	_, err = l.Append(ctx, "chatC", "2025-06-02", entry("Coffee", 5, 0.3))
	require.NoError(t, err)

	scopes, err := l.ScopesWithEntriesOn(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"chatA", "chatB"}, scopes)
}

func TestEmptiedDayDisappears(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	appended, err := l.Append(ctx, "chatA", "2025-06-01", entry("Pizza", 285, 12))
	require.NoError(t, err)
	_, err = l.RemoveByMatch(ctx, "chatA", "2025-06-01", func(e models.FoodEntry) bool {
		return e.ID == appended.ID
	})
	require.NoError(t, err)

	scopes, err := l.ScopesWithEntriesOn(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Empty(t, scopes)
}

func TestConcurrentAppendsAllLand(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := entry(fmt.Sprintf("Dish %d", i), 100, 5)
			e.CreatedAt = time.Now()
			_, err := l.Append(ctx, "busy", "2025-06-01", e)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := l.Entries(ctx, "busy", "2025-06-01")
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
