// waypoint | 2026
// service_test.go

package group

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/core"
	"github.com/waypointhq/waypoint/internal/membership"
	"github.com/waypointhq/waypoint/internal/user"
)

type stubGroups struct {
	byID    map[string]*Group
	created []*Group
}

func newStubGroups() *stubGroups {
	return &stubGroups{byID: make(map[string]*Group)}
}

func (s *stubGroups) Create(_ context.Context, g *Group) error {
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	s.byID[g.ID] = g
	s.created = append(s.created, g)
	return nil
}

func (s *stubGroups) GetByID(_ context.Context, id string) (*Group, error) {
	g, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return g, nil
}

func (s *stubGroups) Rename(
	_ context.Context,
	id, name string,
) (*Group, error) {
	g, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	g.Name = name
	return g, nil
}

func (s *stubGroups) Delete(_ context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type memberKey struct {
	userID  string
	groupID string
}

type stubMembers struct {
	rows    map[memberKey]*membership.Membership
	details map[string][]membership.MemberDetail
}

func newStubMembers() *stubMembers {
	return &stubMembers{
		rows:    make(map[memberKey]*membership.Membership),
		details: make(map[string][]membership.MemberDetail),
	}
}

func (s *stubMembers) ListForUser(
	_ context.Context,
	_ string,
) ([]membership.GroupMembership, error) {
	return nil, nil
}

func (s *stubMembers) ListForGroup(
	_ context.Context,
	groupID string,
) ([]membership.MemberDetail, error) {
	return s.details[groupID], nil
}

func (s *stubMembers) Get(
	_ context.Context,
	userID, groupID string,
) (*membership.Membership, error) {
	m, ok := s.rows[memberKey{userID, groupID}]
	if !ok {
		return nil, core.ErrNotFound
	}
	return m, nil
}

func (s *stubMembers) Insert(
	_ context.Context,
	m *membership.Membership,
) (bool, error) {
	key := memberKey{m.UserID, m.GroupID}
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	m.CreatedAt = time.Now()
	s.rows[key] = m
	return true, nil
}

func (s *stubMembers) UpdateRole(
	_ context.Context,
	userID, groupID string,
	role access.Role,
) error {
	m, ok := s.rows[memberKey{userID, groupID}]
	if !ok {
		return core.ErrNotFound
	}
	m.Role = role
	return nil
}

func (s *stubMembers) Delete(
	_ context.Context,
	userID, groupID string,
) (bool, error) {
	key := memberKey{userID, groupID}
	if _, ok := s.rows[key]; !ok {
		return false, nil
	}
	delete(s.rows, key)
	return true, nil
}

type stubResolver struct {
	memberships map[string][]membership.GroupMembership
	invalidated []string
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		memberships: make(map[string][]membership.GroupMembership),
	}
}

func (s *stubResolver) grant(userID, groupID string, role access.Role) {
	s.memberships[userID] = append(
		s.memberships[userID],
		membership.GroupMembership{GroupID: groupID, Role: role},
	)
}

func (s *stubResolver) Resolve(
	_ context.Context,
	userID string,
) ([]membership.GroupMembership, error) {
	return s.memberships[userID], nil
}

func (s *stubResolver) ResolveFresh(
	ctx context.Context,
	userID string,
) ([]membership.GroupMembership, error) {
	return s.Resolve(ctx, userID)
}

func (s *stubResolver) Invalidate(userID string) {
	s.invalidated = append(s.invalidated, userID)
}

type stubDirectory struct {
	users []user.User
}

func (s *stubDirectory) FindByEmails(
	_ context.Context,
	emails []string,
) ([]user.User, error) {
	wanted := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		wanted[e] = struct{}{}
	}

	var out []user.User
	for _, u := range s.users {
		if _, ok := wanted[u.Email]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubTxRunner struct {
	groups  Repository
	members membership.Repository
}

func (s *stubTxRunner) RunInTx(
	_ context.Context,
	fn func(groups Repository, members membership.Repository) error,
) error {
	return fn(s.groups, s.members)
}

type stubMapLists struct {
	invalidated []string
}

func (s *stubMapLists) InvalidateMapList(groupID string) {
	s.invalidated = append(s.invalidated, groupID)
}

type stubNotifier struct {
	invited []string
}

func (s *stubNotifier) GroupInvite(_ context.Context, email, _ string) {
	s.invited = append(s.invited, email)
}

type fixture struct {
	service  *Service
	groups   *stubGroups
	members  *stubMembers
	resolver *stubResolver
	users    *stubDirectory
	mapLists *stubMapLists
	notifier *stubNotifier
}

func newFixture() *fixture {
	groups := newStubGroups()
	members := newStubMembers()
	resolver := newStubResolver()
	users := &stubDirectory{}
	mapLists := &stubMapLists{}
	notifier := &stubNotifier{}

	svc := NewService(
		&stubTxRunner{groups: groups, members: members},
		groups,
		members,
		resolver,
		users,
		mapLists,
		notifier,
	)

	return &fixture{
		service:  svc,
		groups:   groups,
		members:  members,
		resolver: resolver,
		users:    users,
		mapLists: mapLists,
		notifier: notifier,
	}
}

func TestCreateGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.service.CreateGroup(ctx, "alice", CreateGroupRequest{
		Name: "Field Survey",
	})
	require.NoError(t, err)

	assert.Equal(t, "Field Survey", resp.Name)
	assert.Equal(t, "owner", resp.Role)
	assert.Equal(t, PlanFree, resp.Plan)

	require.Len(t, f.groups.created, 1)
	created := f.groups.created[0]

	owner, err := f.members.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, owner.Role)

	assert.Contains(t, f.resolver.invalidated, "alice")
}

func TestGetGroupDeniesNonMember(t *testing.T) {
	f := newFixture()

	_, err := f.service.GetGroup(context.Background(), "mallory", "g1")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestRenameGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.groups.byID["g1"] = &Group{ID: "g1", Name: "Old"}
	f.resolver.grant("alice", "g1", access.RoleAdmin)
	f.resolver.grant("carol", "g1", access.RoleContributor)

	_, err := f.service.RenameGroup(ctx, "carol", "g1", RenameGroupRequest{
		Name: "New",
	})
	assert.ErrorIs(t, err, core.ErrForbidden)

	resp, err := f.service.RenameGroup(ctx, "alice", "g1", RenameGroupRequest{
		Name: "New",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", resp.Name)
	assert.Contains(t, f.resolver.invalidated, "alice")
}

func TestDeleteGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.groups.byID["g1"] = &Group{ID: "g1", Name: "Doomed"}
	f.resolver.grant("alice", "g1", access.RoleOwner)
	f.resolver.grant("bob", "g1", access.RoleAdmin)
	f.members.details["g1"] = []membership.MemberDetail{
		{UserID: "alice", Role: access.RoleOwner},
		{UserID: "bob", Role: access.RoleAdmin},
	}

	err := f.service.DeleteGroup(ctx, "bob", "g1")
	assert.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, f.service.DeleteGroup(ctx, "alice", "g1"))

	_, err = f.groups.GetByID(ctx, "g1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Contains(t, f.resolver.invalidated, "alice")
	assert.Contains(t, f.resolver.invalidated, "bob")
	assert.Equal(t, []string{"g1"}, f.mapLists.invalidated)
}

func TestAddUsers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.resolver.grant("alice", "g1", access.RoleOwner)
	f.users.users = []user.User{
		{ID: "bob-id", Email: "bob@example.com"},
		{ID: "carol-id", Email: "carol@example.com"},
	}

	// carol is already a member; re-adding her must be a no-op.
	_, err := f.members.Insert(ctx, &membership.Membership{
		UserID:  "carol-id",
		GroupID: "g1",
		Role:    access.RoleContributor,
	})
	require.NoError(t, err)

	resp, err := f.service.AddUsers(ctx, "alice", "g1", AddUsersRequest{
		Emails: []string{
			"bob@example.com",
			"carol@example.com",
			"ghost@example.com",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bob@example.com"}, resp.Added)
	assert.ElementsMatch(
		t,
		[]string{"carol@example.com", "ghost@example.com"},
		resp.Skipped,
	)

	added, err := f.members.Get(ctx, "bob-id", "g1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleContributor, added.Role)

	assert.Contains(t, f.resolver.invalidated, "bob-id")
	assert.NotContains(t, f.resolver.invalidated, "carol-id")

	// Only actually-added members get an invite.
	assert.Equal(t, []string{"bob@example.com"}, f.notifier.invited)
}

func TestAddUsersRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture()

	f.resolver.grant("carol", "g1", access.RoleContributor)

	_, err := f.service.AddUsers(
		context.Background(),
		"carol",
		"g1",
		AddUsersRequest{Emails: []string{"bob@example.com"}},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestRemoveUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.resolver.grant("alice", "g1", access.RoleOwner)
	_, err := f.members.Insert(ctx, &membership.Membership{
		UserID:  "alice",
		GroupID: "g1",
		Role:    access.RoleOwner,
	})
	require.NoError(t, err)
	_, err = f.members.Insert(ctx, &membership.Membership{
		UserID:  "bob",
		GroupID: "g1",
		Role:    access.RoleContributor,
	})
	require.NoError(t, err)

	// Removing someone who was never a member succeeds quietly.
	require.NoError(t, f.service.RemoveUser(ctx, "alice", "g1", "ghost"))

	// The owner's row is untouchable.
	err = f.service.RemoveUser(ctx, "alice", "g1", "alice")
	assert.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, f.service.RemoveUser(ctx, "alice", "g1", "bob"))
	_, err = f.members.Get(ctx, "bob", "g1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, f.resolver.invalidated, "bob")
}

func TestChangeMemberRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.resolver.grant("alice", "g1", access.RoleOwner)
	_, err := f.members.Insert(ctx, &membership.Membership{
		UserID:  "alice",
		GroupID: "g1",
		Role:    access.RoleOwner,
	})
	require.NoError(t, err)
	_, err = f.members.Insert(ctx, &membership.Membership{
		UserID:  "bob",
		GroupID: "g1",
		Role:    access.RoleContributor,
	})
	require.NoError(t, err)

	// Ownership is never assignable through this path.
	_, err = f.service.ChangeMemberRole(
		ctx, "alice", "g1", "bob",
		ChangeMemberRoleRequest{Role: "owner"},
	)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	// The owner's own row cannot be demoted.
	_, err = f.service.ChangeMemberRole(
		ctx, "alice", "g1", "alice",
		ChangeMemberRoleRequest{Role: "admin"},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)

	// Targets outside the group are refused.
	_, err = f.service.ChangeMemberRole(
		ctx, "alice", "g1", "ghost",
		ChangeMemberRoleRequest{Role: "admin"},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)

	resp, err := f.service.ChangeMemberRole(
		ctx, "alice", "g1", "bob",
		ChangeMemberRoleRequest{Role: "admin"},
	)
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Role)

	updated, err := f.members.Get(ctx, "bob", "g1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, updated.Role)
	assert.Contains(t, f.resolver.invalidated, "bob")
}

func TestNormalizeEmails(t *testing.T) {
	got := normalizeEmails([]string{
		"  Bob@Example.com ",
		"bob@example.com",
		"",
		"carol@example.com",
	})
	assert.Equal(t, []string{"bob@example.com", "carol@example.com"}, got)
}
