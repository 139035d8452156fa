// waypoint | 2026
// guard_test.go

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "owner", want: RoleOwner},
		{input: "admin", want: RoleAdmin},
		{input: "contributor", want: RoleContributor},
		{input: "superadmin", wantErr: true},
		{input: "Owner", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleInGroup(t *testing.T) {
	memberships := []GroupRole{
		{GroupID: "g1", Role: RoleOwner},
		{GroupID: "g2", Role: RoleContributor},
	}

	role, ok := RoleInGroup(memberships, "g1")
	require.True(t, ok)
	assert.Equal(t, RoleOwner, role)

	role, ok = RoleInGroup(memberships, "g2")
	require.True(t, ok)
	assert.Equal(t, RoleContributor, role)

	_, ok = RoleInGroup(memberships, "g3")
	assert.False(t, ok)

	_, ok = RoleInGroup(nil, "g1")
	assert.False(t, ok)
}

func TestCanAccessGroup(t *testing.T) {
	memberships := []GroupRole{{GroupID: "g1", Role: RoleContributor}}

	assert.True(t, CanAccessGroup(memberships, "g1"))
	assert.False(t, CanAccessGroup(memberships, "g2"))
}

func TestGuardPredicates(t *testing.T) {
	type predicate struct {
		name string
		fn   func(Role) bool
	}

	ownerAdminOnly := []predicate{
		{name: "IsOwnerOrAdmin", fn: IsOwnerOrAdmin},
		{name: "CanMutateMapVisibility", fn: CanMutateMapVisibility},
		{name: "CanDeleteMap", fn: CanDeleteMap},
		{name: "CanRemoveOrInviteMembers", fn: CanRemoveOrInviteMembers},
		{name: "CanChangeMemberRole", fn: CanChangeMemberRole},
	}

	for _, p := range ownerAdminOnly {
		t.Run(p.name, func(t *testing.T) {
			assert.True(t, p.fn(RoleOwner))
			assert.True(t, p.fn(RoleAdmin))
			assert.False(t, p.fn(RoleContributor))
			assert.False(t, p.fn(Role("unknown")))
		})
	}

	t.Run("CanReadOrWriteContent", func(t *testing.T) {
		assert.True(t, CanReadOrWriteContent(RoleOwner))
		assert.True(t, CanReadOrWriteContent(RoleAdmin))
		assert.True(t, CanReadOrWriteContent(RoleContributor))
		assert.False(t, CanReadOrWriteContent(Role("unknown")))
	})

	t.Run("CanDeleteGroup", func(t *testing.T) {
		assert.True(t, CanDeleteGroup(RoleOwner))
		assert.False(t, CanDeleteGroup(RoleAdmin))
		assert.False(t, CanDeleteGroup(RoleContributor))
	})
}

func TestInScope(t *testing.T) {
	ids := []string{"m1", "m2", "m3"}

	assert.True(t, InScope(ids, "m2"))
	assert.False(t, InScope(ids, "m4"))
	assert.False(t, InScope(nil, "m1"))
	assert.False(t, InScope(ids, ""))
}
