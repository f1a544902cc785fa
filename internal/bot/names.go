package bot

import (
	"context"
	"errors"
	"log"

	"github.com/mealtrace/mealtrace-bot/internal/store"
)

const nameKeyPrefix = "scopename:"

// NameRegistry remembers the human display name of every scope the bot has
// seen, for the leaderboard and daily summaries.
type NameRegistry struct {
	store *store.Store
}

// NewNameRegistry creates a NameRegistry over the given store.
func NewNameRegistry(s *store.Store) *NameRegistry {
	return &NameRegistry{store: s}
}

// Observe records the scope's display name as seen on an inbound event.
func (r *NameRegistry) Observe(ctx context.Context, scope, name string) {
	if name == "" {
		return
	}
	if err := r.store.Put(ctx, nameKeyPrefix+scope, name); err != nil {
		log.Printf("names: failed to record name for scope %s: %v", scope, err)
	}
}

// DisplayName returns the last observed name for the scope, or the scope id
// itself if none was ever seen.
func (r *NameRegistry) DisplayName(ctx context.Context, scope string) string {
	var name string
	err := r.store.Get(ctx, nameKeyPrefix+scope, &name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("names: failed to resolve name for scope %s: %v", scope, err)
		}
		return scope
	}
	return name
}
