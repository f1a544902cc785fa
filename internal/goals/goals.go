package goals

import (
	"context"
	"errors"
	"log"

	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

const (
	scopeKeyPrefix = "goals:scope:"
	defaultKey     = "goals:default"
)

// Service resolves nutrition goals for a scope. Resolution order: per-scope
// override, deployment-wide stored default, built-in defaults. Storage
// failures are logged and fall back to the built-in defaults so a bad
// database never breaks percentage math downstream.
type Service struct {
	store *store.Store
}

// New creates a goal Service over the given store.
func New(s *store.Store) *Service {
	return &Service{store: s}
}

// Get returns the effective goals for a scope.
func (s *Service) Get(ctx context.Context, scope string) models.Goals {
	var g models.Goals
	err := s.store.Get(ctx, scopeKeyPrefix+scope, &g)
	if err == nil {
		return g
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("goals: falling back to defaults for scope %s: %v", scope, err)
		return models.DefaultGoals()
	}

	err = s.store.Get(ctx, defaultKey, &g)
	if err == nil {
		return g
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("goals: falling back to defaults for scope %s: %v", scope, err)
	}
	return models.DefaultGoals()
}

// Set stores a per-scope override. A zero value in any field is legal.
func (s *Service) Set(ctx context.Context, scope string, g models.Goals) error {
	return s.store.Put(ctx, scopeKeyPrefix+scope, g)
}

// SetDefault stores the deployment-wide default used by scopes without an
// override.
func (s *Service) SetDefault(ctx context.Context, g models.Goals) error {
	return s.store.Put(ctx, defaultKey, g)
}
