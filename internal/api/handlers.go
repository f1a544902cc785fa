// Package api exposes the dashboard's HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mealtrace/mealtrace-bot/internal/goals"
	"github.com/mealtrace/mealtrace-bot/internal/leaderboard"
	"github.com/mealtrace/mealtrace-bot/internal/ledger"
	"github.com/mealtrace/mealtrace-bot/internal/models"
	"github.com/mealtrace/mealtrace-bot/internal/service"
	"github.com/mealtrace/mealtrace-bot/internal/store"
)

const leaderboardCacheTTL = time.Minute

// Handler serves the dashboard API.
type Handler struct {
	auth   *service.AuthService
	board  *leaderboard.Service
	ledger *ledger.Ledger
	goals  *goals.Service
	store  *store.Store
	redis  *redis.Client
}

// NewHandler creates a dashboard Handler.
func NewHandler(
	auth *service.AuthService,
	board *leaderboard.Service,
	l *ledger.Ledger,
	g *goals.Service,
	s *store.Store,
	rdb *redis.Client,
) *Handler {
	return &Handler{auth: auth, board: board, ledger: l, goals: g, store: s, redis: rdb}
}

// LoginRequest is the dashboard login payload.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the admin password for a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, err := h.auth.Login(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetLeaderboard returns today's standings, cached briefly in redis so a
// busy dashboard does not recompute the fan-out on every refresh.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	date := models.LedgerDate(time.Now())
	cacheKey := "leaderboard:" + date

	if h.redis != nil {
		if data, err := h.redis.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			var cached []leaderboard.Standing
			if json.Unmarshal(data, &cached) == nil {
				c.JSON(http.StatusOK, gin.H{"date": date, "standings": cached})
				return
			}
		}
	}

	standings, err := h.board.Standings(c.Request.Context(), date)
	if err != nil {
		log.Printf("leaderboard failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}

	if h.redis != nil {
		if data, err := json.Marshal(standings); err == nil {
			if err := h.redis.Set(c.Request.Context(), cacheKey, data, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("leaderboard cache write failed: %v", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "standings": standings})
}

// Stats is the dashboard statistics payload.
type Stats struct {
	TotalScopesSeen    int          `json:"totalScopesSeen"`
	EntriesLoggedToday int          `json:"entriesLoggedToday"`
	CurrentGoals       models.Goals `json:"currentGoals"`
}

// GetStats returns usage statistics.
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	scopesSeen, err := h.countScopesSeen(ctx)
	if err != nil {
		log.Printf("stats failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable"})
		return
	}

	date := models.LedgerDate(time.Now())
	active, err := h.ledger.ScopesWithEntriesOn(ctx, date)
	if err != nil {
		log.Printf("stats failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable"})
		return
	}

	entriesToday := 0
	for _, scope := range active {
		entries, err := h.ledger.Entries(ctx, scope, date)
		if err != nil {
			log.Printf("stats entries failed for scope %s: %v", scope, err)
			continue
		}
		entriesToday += len(entries)
	}

	c.JSON(http.StatusOK, Stats{
		TotalScopesSeen:    scopesSeen,
		EntriesLoggedToday: entriesToday,
		CurrentGoals:       h.goals.Get(ctx, ""),
	})
}

// countScopesSeen counts every scope that ever logged an entry.
func (h *Handler) countScopesSeen(ctx context.Context) (int, error) {
	keys, err := h.store.Keys(ctx, "ledger:")
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, k := range keys {
		rest := strings.TrimPrefix(k, "ledger:")
		if i := strings.LastIndex(rest, ":"); i > 0 {
			seen[rest[:i]] = struct{}{}
		}
	}
	return len(seen), nil
}

// GetGoals returns the effective goals for a scope.
func (h *Handler) GetGoals(c *gin.Context) {
	scope := c.Param("scope")
	c.JSON(http.StatusOK, h.goals.Get(c.Request.Context(), scope))
}

// PutGoals stores a per-scope goal override.
func (h *Handler) PutGoals(c *gin.Context) {
	scope := c.Param("scope")

	var g models.Goals
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goals payload"})
		return
	}
	if g.Calories < 0 || g.Protein < 0 || g.Carbs < 0 || g.Fat < 0 || g.Fiber < 0 || g.Hydration < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goals must be non-negative"})
		return
	}

	if err := h.goals.Set(c.Request.Context(), scope, g); err != nil {
		log.Printf("goal save failed for scope %s: %v", scope, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, g)
}

// Health reports whether storage and redis are reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := gin.H{"storage": "ok", "redis": "ok"}

	if err := h.store.HealthCheck(ctx); err != nil {
		result["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			result["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	} else {
		result["redis"] = "disabled"
	}

	c.JSON(status, result)
}
