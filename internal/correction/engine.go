// Package correction maps inbound replies on prior analysis messages back
// onto the ledger rows those messages reported.
package correction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mealtrace/mealtrace-bot/internal/assoc"
	"github.com/mealtrace/mealtrace-bot/internal/interpreter"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/models"
)

// Status is the user-facing outcome class of a reply.
type Status int

const (
	// StatusUpdated means the correction replaced the entry in place.
	StatusUpdated Status = iota
	// StatusRemoved means the removal path deleted the entry.
	StatusRemoved
	// StatusNoAssociation means the replied-to message carries no analysis.
	StatusNoAssociation
	// StatusEntryMissing means the association resolved but the entry could
	// not be located, typically because it was already removed.
	StatusEntryMissing
	// StatusFailed means a storage failure prevented the operation.
	StatusFailed
)

// Result reports what a reply did. Entry and Totals are only meaningful for
// StatusUpdated and StatusRemoved.
type Result struct {
	Status Status
	Entry  models.FoodEntry
	Totals models.NutrientTotals
}

var removalKeywords = []string{"remove", "delete", "erase", "cancel"}

// IsRemoval reports whether the text asks for the entry to be deleted.
// Matching is case-insensitive substring, so "please delete this" counts.
func IsRemoval(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range removalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Engine resolves reply-target message ids through the association index and
// applies the requested mutation to the ledger. It keeps no state of its
// own; every outcome is reported through the Result, never raised into the
// caller's event loop.
type Engine struct {
	ledger *ledger.Ledger
	assoc  *assoc.Index
	interp *interpreter.Interpreter
}

// New creates a correction Engine.
func New(l *ledger.Ledger, idx *assoc.Index, interp *interpreter.Interpreter) *Engine {
	return &Engine{ledger: l, assoc: idx, interp: interp}
}

// HandleReply runs the removal or correction path for one inbound reply.
func (e *Engine) HandleReply(ctx context.Context, scope, targetMessageID, text string) (Result, error) {
	if IsRemoval(text) {
		return e.remove(ctx, scope, targetMessageID)
	}
	return e.correct(ctx, scope, targetMessageID, text)
}

// remove deletes the entry the replied-to message reported. Running it twice
// succeeds once; the second call finds no association and reports
// StatusNoAssociation with the ledger unchanged.
func (e *Engine) remove(ctx context.Context, scope, messageID string) (Result, error) {
	a, err := e.assoc.Resolve(ctx, messageID)
	if err != nil {
		if errors.Is(err, assoc.ErrNotFound) {
			return Result{Status: StatusNoAssociation}, nil
		}
		return Result{Status: StatusFailed}, fmt.Errorf("resolving association: %w", err)
	}

	date := models.LedgerDate(a.Snapshot.CreatedAt)
	removed, err := e.ledger.RemoveByMatch(ctx, scope, date, matchAssociation(a))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return Result{Status: StatusEntryMissing}, nil
		}
		return Result{Status: StatusFailed}, fmt.Errorf("removing entry: %w", err)
	}

	if err := e.assoc.Invalidate(ctx, messageID); err != nil {
		// The entry is gone; a dangling association only costs a later
		// "could not locate" reply.
		return Result{Status: StatusFailed}, fmt.Errorf("invalidating association: %w", err)
	}

	totals, err := e.ledger.Aggregate(ctx, scope, date)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("aggregating totals: %w", err)
	}
	return Result{Status: StatusRemoved, Entry: removed, Totals: totals}, nil
}

// correct parses the reply text and replaces the entry's nutrient fields in
// place. The association stays valid so the same message can be corrected
// again.
func (e *Engine) correct(ctx context.Context, scope, messageID, text string) (Result, error) {
	parsed := e.interp.Parse(text)

	a, err := e.assoc.Resolve(ctx, messageID)
	if err != nil {
		if errors.Is(err, assoc.ErrNotFound) {
			return Result{Status: StatusNoAssociation}, nil
		}
		return Result{Status: StatusFailed}, fmt.Errorf("resolving association: %w", err)
	}

	date := models.LedgerDate(a.Snapshot.CreatedAt)
	patch := ledger.Patch{
		FoodName:    parsed.FoodName,
		Calories:    parsed.Calories,
		Protein:     parsed.Protein,
		Carbs:       parsed.Carbs,
		Fat:         parsed.Fat,
		ServingSize: parsed.ServingSize,
	}
	updated, err := e.ledger.ReplaceByMatch(ctx, scope, date, matchAssociation(a), patch)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return Result{Status: StatusEntryMissing}, nil
		}
		return Result{Status: StatusFailed}, fmt.Errorf("replacing entry: %w", err)
	}

	totals, err := e.ledger.Aggregate(ctx, scope, date)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("aggregating totals: %w", err)
	}
	return Result{Status: StatusUpdated, Entry: updated, Totals: totals}, nil
}

// matchAssociation builds the predicate locating the association's entry.
// The surrogate entry ID wins when present; the value fingerprint of the
// original snapshot remains as a fallback for rows recorded before IDs
// existed. The snapshot itself is never refreshed after a correction.
func matchAssociation(a models.MessageAssociation) func(models.FoodEntry) bool {
	return func(e models.FoodEntry) bool {
		if a.EntryID != uuid.Nil && e.ID == a.EntryID {
			return true
		}
		return models.SameEntry(e, a.Snapshot)
	}
}
