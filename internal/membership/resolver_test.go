// waypoint | 2026
// resolver_test.go

package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointhq/waypoint/internal/access"
)

type stubRepo struct {
	Repository

	listCalls int
	rows      []GroupMembership
	err       error
}

func (s *stubRepo) ListForUser(
	ctx context.Context,
	userID string,
) ([]GroupMembership, error) {
	s.listCalls++
	return s.rows, s.err
}

func TestResolver_MemoizesWithinTTL(t *testing.T) {
	repo := &stubRepo{rows: []GroupMembership{
		{GroupID: "g1", GroupName: "Field Team", Role: access.RoleOwner},
	}}
	resolver := NewResolver(repo, 100, time.Minute)

	first, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls, "second resolve must hit the cache")
}

func TestResolver_ResolveFreshBypassesCache(t *testing.T) {
	repo := &stubRepo{rows: []GroupMembership{
		{GroupID: "g1", Role: access.RoleContributor},
	}}
	resolver := NewResolver(repo, 100, time.Minute)

	_, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	repo.rows = []GroupMembership{{GroupID: "g1", Role: access.RoleAdmin}}

	fresh, err := resolver.ResolveFresh(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, access.RoleAdmin, fresh[0].Role)
	assert.Equal(t, 2, repo.listCalls)

	// The fresh read also refreshed the cached entry.
	cached, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, cached[0].Role)
	assert.Equal(t, 2, repo.listCalls)
}

func TestResolver_InvalidateForcesReload(t *testing.T) {
	repo := &stubRepo{rows: []GroupMembership{
		{GroupID: "g1", Role: access.RoleAdmin},
	}}
	resolver := NewResolver(repo, 100, time.Minute)

	_, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	repo.rows = nil
	resolver.Invalidate("u1")

	rows, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, rows, "removal must be visible after invalidation")
	assert.Equal(t, 2, repo.listCalls)
}

func TestGroupRoles(t *testing.T) {
	roles := GroupRoles([]GroupMembership{
		{GroupID: "g1", Role: access.RoleOwner},
		{GroupID: "g2", Role: access.RoleContributor},
	})

	assert.Equal(t, []access.GroupRole{
		{GroupID: "g1", Role: access.RoleOwner},
		{GroupID: "g2", Role: access.RoleContributor},
	}, roles)
}
