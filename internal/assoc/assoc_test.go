package assoc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	dsn := fmt.Sprintf("file:assoc_%s?mode=memory&cache=shared", t.Name())
	s, err := store.Open("sqlite", dsn)
	require.NoError(t, err)
	return New(s)
}

func TestRecordResolveRoundTrip(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	entry := models.FoodEntry{
		ID:          uuid.New(),
		FoodName:    "Pizza",
		Calories:    285,
		Protein:     12,
		Carbs:       36,
		Fat:         10,
		ServingSize: "1 slice",
		Confidence:  models.ConfidenceHigh,
		CreatedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, idx.Record(ctx, "msg-42", "chat1", entry))

	a, err := idx.Resolve(ctx, "msg-42")
	require.NoError(t, err)
	assert.Equal(t, "msg-42", a.MessageID)
	assert.Equal(t, "chat1", a.ScopeID)
	assert.Equal(t, entry.ID, a.EntryID)
	assert.Equal(t, entry.FoodName, a.Snapshot.FoodName)
	assert.Equal(t, entry.Calories, a.Snapshot.Calories)
	assert.True(t, entry.CreatedAt.Equal(a.Snapshot.CreatedAt))
}

func TestRecordLastWriteWins(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	first := models.FoodEntry{ID: uuid.New(), FoodName: "Pizza"}
	second := models.FoodEntry{ID: uuid.New(), FoodName: "Salad"}
	require.NoError(t, idx.Record(ctx, "msg-1", "chat1", first))
	require.NoError(t, idx.Record(ctx, "msg-1", "chat1", second))

	a, err := idx.Resolve(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, a.EntryID)
	assert.Equal(t, "Salad", a.Snapshot.FoodName)
}

func TestResolveUnknownMessage(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Resolve(context.Background(), "never-sent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidate(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	entry := models.FoodEntry{ID: uuid.New(), FoodName: "Pizza"}
	require.NoError(t, idx.Record(ctx, "msg-7", "chat1", entry))

	require.NoError(t, idx.Invalidate(ctx, "msg-7"))
	_, err := idx.Resolve(ctx, "msg-7")
	assert.ErrorIs(t, err, ErrNotFound)

	// idempotent when already gone
	assert.NoError(t, idx.Invalidate(ctx, "msg-7"))
}
