package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

// ErrNotFound means the requested entry does not exist in the ledger. A bad
// index or an already-removed entry is user error, not a system fault.
var ErrNotFound = errors.New("ledger entry not found")

const keyPrefix = "ledger:"

// Patch carries the fields a correction replaces on an existing entry.
// Fiber and hydration are deliberately absent: manual corrections never
// produce them, and the original AI-sourced values are preserved.
type Patch struct {
	FoodName    string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	ServingSize string
}

// Ledger owns the per-scope, per-date entry sequences. All mutations go
// through a per-scope keyed lock so concurrent events on the same scope
// serialize instead of losing updates.
type Ledger struct {
	store *store.Store
	locks *store.KeyedLocks
}

// New creates a Ledger over the given store.
func New(s *store.Store) *Ledger {
	return &Ledger{store: s, locks: store.NewKeyedLocks()}
}

func dayKey(scope, date string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, scope, date)
}

// load reads one day's entries, treating a missing record as an empty day.
func (l *Ledger) load(ctx context.Context, scope, date string) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := l.store.Get(ctx, dayKey(scope, date), &entries)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// Append adds an entry to the end of the scope's sequence for the given
// date. A zero ID or CreatedAt is filled in; both are immutable afterwards.
func (l *Ledger) Append(ctx context.Context, scope, date string, entry models.FoodEntry) (models.FoodEntry, error) {
	unlock := l.locks.Lock(scope)
	defer unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	entries, err := l.load(ctx, scope, date)
	if err != nil {
		return models.FoodEntry{}, err
	}
	entries = append(entries, entry)
	if err := l.store.Put(ctx, dayKey(scope, date), entries); err != nil {
		return models.FoodEntry{}, err
	}
	return entry, nil
}

// Entries returns the day's sequence in append order.
func (l *Ledger) Entries(ctx context.Context, scope, date string) ([]models.FoodEntry, error) {
	return l.load(ctx, scope, date)
}

// RemoveByIndex removes the entry at the 0-based position in append order.
// An out-of-range index returns ErrNotFound and leaves the day unchanged.
func (l *Ledger) RemoveByIndex(ctx context.Context, scope, date string, index int) (models.FoodEntry, error) {
	unlock := l.locks.Lock(scope)
	defer unlock()

	entries, err := l.load(ctx, scope, date)
	if err != nil {
		return models.FoodEntry{}, err
	}
	if index < 0 || index >= len(entries) {
		return models.FoodEntry{}, ErrNotFound
	}
	removed := entries[index]
	entries = append(entries[:index], entries[index+1:]...)
	if err := l.put(ctx, scope, date, entries); err != nil {
		return models.FoodEntry{}, err
	}
	return removed, nil
}

// RemoveByMatch scans in order and removes the first entry satisfying the
// predicate.
func (l *Ledger) RemoveByMatch(ctx context.Context, scope, date string, match func(models.FoodEntry) bool) (models.FoodEntry, error) {
	unlock := l.locks.Lock(scope)
	defer unlock()

	entries, err := l.load(ctx, scope, date)
	if err != nil {
		return models.FoodEntry{}, err
	}
	for i, e := range entries {
		if match(e) {
			entries = append(entries[:i], entries[i+1:]...)
			if err := l.put(ctx, scope, date, entries); err != nil {
				return models.FoodEntry{}, err
			}
			return e, nil
		}
	}
	return models.FoodEntry{}, ErrNotFound
}

// ReplaceByMatch locates the first entry satisfying the predicate and merges
// the patch into it in place. ID, CreatedAt, fiber and hydration are
// preserved; confidence becomes "manually corrected".
func (l *Ledger) ReplaceByMatch(ctx context.Context, scope, date string, match func(models.FoodEntry) bool, patch Patch) (models.FoodEntry, error) {
	unlock := l.locks.Lock(scope)
	defer unlock()

	entries, err := l.load(ctx, scope, date)
	if err != nil {
		return models.FoodEntry{}, err
	}
	for i := range entries {
		if match(entries[i]) {
			entries[i].FoodName = patch.FoodName
			entries[i].Calories = patch.Calories
			entries[i].Protein = patch.Protein
			entries[i].Carbs = patch.Carbs
			entries[i].Fat = patch.Fat
			entries[i].ServingSize = patch.ServingSize
			entries[i].Confidence = models.ConfidenceCorrected
			if err := l.put(ctx, scope, date, entries); err != nil {
				return models.FoodEntry{}, err
			}
			return entries[i], nil
		}
	}
	return models.FoodEntry{}, ErrNotFound
}

// put writes the day back, dropping the record entirely once empty so that
// ScopesWithEntriesOn does not report emptied days.
func (l *Ledger) put(ctx context.Context, scope, date string, entries []models.FoodEntry) error {
	if len(entries) == 0 {
		return l.store.Delete(ctx, dayKey(scope, date))
	}
	return l.store.Put(ctx, dayKey(scope, date), entries)
}

// Aggregate sums each nutrient field across the day's entries. A day with no
// entries yields all-zero totals, never an error.
func (l *Ledger) Aggregate(ctx context.Context, scope, date string) (models.NutrientTotals, error) {
	entries, err := l.load(ctx, scope, date)
	if err != nil {
		return models.NutrientTotals{}, err
	}
	var totals models.NutrientTotals
	for _, e := range entries {
		totals.Add(e)
	}
	return totals, nil
}

// ScopesWithEntriesOn returns every scope that has at least one entry on the
// given date. Supports the daily-summary and leaderboard fan-outs.
func (l *Ledger) ScopesWithEntriesOn(ctx context.Context, date string) ([]string, error) {
	keys, err := l.store.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	suffix := ":" + date
	var scopes []string
	for _, k := range keys {
		if !strings.HasSuffix(k, suffix) {
			continue
		}
		scope := strings.TrimSuffix(strings.TrimPrefix(k, keyPrefix), suffix)
		scopes = append(scopes, scope)
	}
	return scopes, nil
}
