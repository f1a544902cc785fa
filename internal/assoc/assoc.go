package assoc

import (
	"context"
	"errors"
	"time"

	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

// ErrNotFound means no association exists for the message id, either because
// the message never carried an analysis or because its entry was removed.
var ErrNotFound = errors.New("no association for message")

const keyPrefix = "assoc:"

// Index maps outbound analysis-message ids to the ledger entries they
// reported. The chat transport offers no other durable link from a reply
// back to a ledger row, so the index is persisted next to the ledger and
// survives restarts.
type Index struct {
	store *store.Store
}

// New creates an association Index over the given store.
func New(s *store.Store) *Index {
	return &Index{store: s}
}

// Record stores the association for an outbound message, overwriting any
// previous one for the same id (last write wins).
func (i *Index) Record(ctx context.Context, messageID, scopeID string, entry models.FoodEntry) error {
	a := models.MessageAssociation{
		MessageID:  messageID,
		ScopeID:    scopeID,
		EntryID:    entry.ID,
		Snapshot:   entry,
		RecordedAt: time.Now(),
	}
	return i.store.Put(ctx, keyPrefix+messageID, a)
}

// Resolve returns the association for a message id.
func (i *Index) Resolve(ctx context.Context, messageID string) (models.MessageAssociation, error) {
	var a models.MessageAssociation
	err := i.store.Get(ctx, keyPrefix+messageID, &a)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.MessageAssociation{}, ErrNotFound
		}
		return models.MessageAssociation{}, err
	}
	return a, nil
}

// Invalidate removes the association after its entry has been deleted.
// A no-op if already absent.
func (i *Index) Invalidate(ctx context.Context, messageID string) error {
	return i.store.Delete(ctx, keyPrefix+messageID)
}
