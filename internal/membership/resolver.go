// waypoint | 2026
// resolver.go

package membership

import (
	"context"
	"time"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/cache"
)

// Resolver answers "which groups does this user belong to, and as what
// role". The memoized path serves authorization checks during request
// bursts; writers that change a user's membership set call Invalidate so
// a demotion or removal takes effect immediately rather than after the
// TTL window.
type Resolver struct {
	repo  Repository
	cache *cache.TTL[[]GroupMembership]
}

func NewResolver(
	repo Repository,
	maxEntries int,
	ttl time.Duration,
) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: cache.NewTTL[[]GroupMembership](maxEntries, ttl),
	}
}

// Resolve returns the user's memberships, served from cache when a fresh
// enough entry exists.
func (r *Resolver) Resolve(
	ctx context.Context,
	userID string,
) ([]GroupMembership, error) {
	return r.cache.GetOrCompute(ctx, userID,
		func(ctx context.Context) ([]GroupMembership, error) {
			return r.repo.ListForUser(ctx, userID)
		})
}

// ResolveFresh bypasses the cache and refreshes it, for callers that
// need read-your-writes within one logical operation.
func (r *Resolver) ResolveFresh(
	ctx context.Context,
	userID string,
) ([]GroupMembership, error) {
	rows, err := r.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.cache.Set(userID, rows)
	return rows, nil
}

func (r *Resolver) Invalidate(userID string) {
	r.cache.Invalidate(userID)
}

// CacheLen reports the number of memoized membership entries, for ops
// visibility.
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

// GroupRoles projects resolved memberships into the guard's input shape.
func GroupRoles(memberships []GroupMembership) []access.GroupRole {
	roles := make([]access.GroupRole, 0, len(memberships))
	for _, m := range memberships {
		roles = append(roles, access.GroupRole{
			GroupID: m.GroupID,
			Role:    m.Role,
		})
	}
	return roles
}
