// waypoint | 2026
// service.go

package group

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/core"
	"github.com/waypointhq/waypoint/internal/membership"
	"github.com/waypointhq/waypoint/internal/user"
)

// TxRunner executes a function against transaction-scoped repositories.
// Group creation needs it: the group row and its owner membership must
// land atomically or not at all.
type TxRunner interface {
	RunInTx(
		ctx context.Context,
		fn func(groups Repository, members membership.Repository) error,
	) error
}

type sqlTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTx(
	ctx context.Context,
	fn func(groups Repository, members membership.Repository) error,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(NewRepository(tx), membership.NewRepository(tx))
	})
}

type MembershipResolver interface {
	Resolve(
		ctx context.Context,
		userID string,
	) ([]membership.GroupMembership, error)
	ResolveFresh(
		ctx context.Context,
		userID string,
	) ([]membership.GroupMembership, error)
	Invalidate(userID string)
}

type UserDirectory interface {
	FindByEmails(ctx context.Context, emails []string) ([]user.User, error)
}

// MapListInvalidator drops the memoized maps-by-group entry when a group
// disappears and its maps go with it.
type MapListInvalidator interface {
	InvalidateMapList(groupID string)
}

type Service struct {
	tx       TxRunner
	groups   Repository
	members  membership.Repository
	resolver MembershipResolver
	users    UserDirectory
	mapLists MapListInvalidator
	notifier Notifier
	now      func() time.Time
}

func NewService(
	tx TxRunner,
	groups Repository,
	members membership.Repository,
	resolver MembershipResolver,
	users UserDirectory,
	mapLists MapListInvalidator,
	notifier Notifier,
) *Service {
	return &Service{
		tx:       tx,
		groups:   groups,
		members:  members,
		resolver: resolver,
		users:    users,
		mapLists: mapLists,
		notifier: notifier,
		now:      time.Now,
	}
}

// requireRole resolves the caller's memberships and returns their role in
// groupID, denying callers with no membership row at all.
func (s *Service) requireRole(
	ctx context.Context,
	userID, groupID string,
) (access.Role, error) {
	memberships, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve memberships: %w", err)
	}

	role, ok := access.RoleInGroup(membership.GroupRoles(memberships), groupID)
	if !ok {
		return "", core.ForbiddenError("user cannot access this group")
	}

	return role, nil
}

// CreateGroup creates a group with the caller as its sole owner. The two
// inserts run in one transaction so a group can never exist without an
// owner membership.
func (s *Service) CreateGroup(
	ctx context.Context,
	userID string,
	req CreateGroupRequest,
) (*GroupResponse, error) {
	g := &Group{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedBy: userID,
	}

	err := s.tx.RunInTx(
		ctx,
		func(groups Repository, members membership.Repository) error {
			if err := groups.Create(ctx, g); err != nil {
				return err
			}

			_, err := members.Insert(ctx, &membership.Membership{
				UserID:  userID,
				GroupID: g.ID,
				Role:    access.RoleOwner,
			})
			return err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	s.resolver.Invalidate(userID)

	resp := toGroupResponse(g, access.RoleOwner, s.now())
	return &resp, nil
}

func (s *Service) ListGroups(
	ctx context.Context,
	userID string,
) ([]GroupSummary, error) {
	memberships, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	return toGroupSummaries(memberships, s.now()), nil
}

func (s *Service) GetGroup(
	ctx context.Context,
	userID, groupID string,
) (*GroupDetailResponse, error) {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupDetailResponse{
		ID:      g.ID,
		Name:    g.Name,
		Role:    role.String(),
		Plan:    g.Plan(s.now()),
		Members: toMemberResponses(members),
	}, nil
}

func (s *Service) RenameGroup(
	ctx context.Context,
	userID, groupID string,
	req RenameGroupRequest,
) (*GroupResponse, error) {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !access.IsOwnerOrAdmin(role) {
		return nil, core.ForbiddenError("only owners and admins can rename a group")
	}

	g, err := s.groups.Rename(ctx, groupID, req.Name)
	if err != nil {
		return nil, err
	}

	// Cached membership rows carry the stale name until refreshed.
	s.resolver.Invalidate(userID)

	resp := toGroupResponse(g, role, s.now())
	return &resp, nil
}

func (s *Service) DeleteGroup(
	ctx context.Context,
	userID, groupID string,
) error {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return err
	}

	if !access.CanDeleteGroup(role) {
		return core.ForbiddenError("only the group owner can delete a group")
	}

	members, err := s.members.ListForGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if err := s.groups.Delete(ctx, groupID); err != nil {
		return err
	}

	for _, m := range members {
		s.resolver.Invalidate(m.UserID)
	}

	if s.mapLists != nil {
		s.mapLists.InvalidateMapList(groupID)
	}

	return nil
}

// AddUsers adds known accounts to the group as contributors. Unknown
// addresses are reported as skipped, not failed; re-adding an existing
// member is a no-op thanks to the unique (user, group) key.
func (s *Service) AddUsers(
	ctx context.Context,
	userID, groupID string,
	req AddUsersRequest,
) (*AddUsersResponse, error) {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !access.CanRemoveOrInviteMembers(role) {
		return nil, core.ForbiddenError("only owners and admins can add members")
	}

	found, err := s.users.FindByEmails(ctx, req.Emails)
	if err != nil {
		return nil, fmt.Errorf("add users: %w", err)
	}

	foundByEmail := make(map[string]user.User, len(found))
	for _, u := range found {
		foundByEmail[u.Email] = u
	}

	resp := &AddUsersResponse{Added: []string{}, Skipped: []string{}}

	for _, email := range normalizeEmails(req.Emails) {
		u, ok := foundByEmail[email]
		if !ok {
			resp.Skipped = append(resp.Skipped, email)
			continue
		}

		inserted, err := s.members.Insert(ctx, &membership.Membership{
			UserID:  u.ID,
			GroupID: groupID,
			Role:    access.RoleContributor,
		})
		if err != nil {
			return nil, fmt.Errorf("add users: %w", err)
		}

		if inserted {
			resp.Added = append(resp.Added, email)
			s.resolver.Invalidate(u.ID)
			if s.notifier != nil {
				s.notifier.GroupInvite(ctx, email, groupID)
			}
		} else {
			resp.Skipped = append(resp.Skipped, email)
		}
	}

	return resp, nil
}

// RemoveUser removes a member. Removing someone who is not a member
// succeeds without touching anything; removing the owner is refused.
func (s *Service) RemoveUser(
	ctx context.Context,
	userID, groupID, targetUserID string,
) error {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return err
	}

	if !access.CanRemoveOrInviteMembers(role) {
		return core.ForbiddenError("only owners and admins can remove members")
	}

	target, err := s.members.Get(ctx, targetUserID, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	if target.IsOwner() {
		return core.ForbiddenError("cannot remove the group owner")
	}

	if _, err := s.members.Delete(ctx, targetUserID, groupID); err != nil {
		return err
	}

	s.resolver.Invalidate(targetUserID)
	return nil
}

// ChangeMemberRole moves a member between admin and contributor. The
// owner's row is untouchable, and "owner" as a new role never reaches
// this method: the DTO validation rejects it.
func (s *Service) ChangeMemberRole(
	ctx context.Context,
	userID, groupID, targetUserID string,
	req ChangeMemberRoleRequest,
) (*MemberResponse, error) {
	newRole, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if newRole == access.RoleOwner {
		return nil, fmt.Errorf(
			"change member role: owner is not assignable: %w",
			core.ErrInvalidInput,
		)
	}

	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !access.CanChangeMemberRole(role) {
		return nil, core.ForbiddenError("only owners and admins can change roles")
	}

	target, err := s.members.Get(ctx, targetUserID, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, core.ForbiddenError("user is not a member of this group")
		}
		return nil, err
	}

	if target.IsOwner() {
		return nil, core.ForbiddenError(
			"cannot change the role of the group owner",
		)
	}

	if err := s.members.UpdateRole(ctx, targetUserID, groupID, newRole); err != nil {
		return nil, err
	}

	s.resolver.Invalidate(targetUserID)

	return &MemberResponse{
		UserID:   targetUserID,
		Role:     newRole.String(),
		JoinedAt: target.CreatedAt,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

// normalizeEmails lowercases, trims and de-duplicates while preserving
// input order, so responses line up with what the caller sent.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))

	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	return out
}
