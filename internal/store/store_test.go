package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:store_%s?mode=memory&cache=shared", t.Name())
	s, err := Open("sqlite", dsn)
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, s.Put(ctx, "docs:1", doc{Name: "first", Count: 3}))

	var got doc
	require.NoError(t, s.Get(ctx, "docs:1", &got))
	assert.Equal(t, doc{Name: "first", Count: 3}, got)
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", "old"))
	require.NoError(t, s.Put(ctx, "k", "new"))

	var got string
	require.NoError(t, s.Get(ctx, "k", &got))
	assert.Equal(t, "new", got)
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	var got string
	err := s.Get(context.Background(), "nope", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", 1))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	var got int
	assert.ErrorIs(t, s.Get(ctx, "k", &got), ErrNotFound)
}

func TestKeysByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ledger:a:2025-01-01", 1))
	require.NoError(t, s.Put(ctx, "ledger:b:2025-01-01", 2))
	require.NoError(t, s.Put(ctx, "goals:a", 3))

	keys, err := s.Keys(ctx, "ledger:")
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger:a:2025-01-01", "ledger:b:2025-01-01"}, keys)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)
}

func TestKeyedLocksSerialize(t *testing.T) {
	locks := NewKeyedLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("scope")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
