// waypoint | 2026
// guard.go

package access

// Permissions are expressed as explicit role sets rather than a numeric
// ordering: a contributor is not "less than" an admin except where an
// operation below says so.
var (
	ownerOnly = map[Role]struct{}{
		RoleOwner: {},
	}

	ownerOrAdmin = map[Role]struct{}{
		RoleOwner: {},
		RoleAdmin: {},
	}

	anyMember = map[Role]struct{}{
		RoleOwner:       {},
		RoleAdmin:       {},
		RoleContributor: {},
	}
)

func roleIn(set map[Role]struct{}, r Role) bool {
	_, ok := set[r]
	return ok
}

// RoleInGroup returns the caller's role in groupID, if any.
func RoleInGroup(memberships []GroupRole, groupID string) (Role, bool) {
	for _, m := range memberships {
		if m.GroupID == groupID {
			return m.Role, true
		}
	}
	return "", false
}

// CanAccessGroup reports whether any membership row matches groupID,
// regardless of role.
func CanAccessGroup(memberships []GroupRole, groupID string) bool {
	_, ok := RoleInGroup(memberships, groupID)
	return ok
}

func IsOwnerOrAdmin(r Role) bool {
	return roleIn(ownerOrAdmin, r)
}

func CanMutateMapVisibility(r Role) bool {
	return roleIn(ownerOrAdmin, r)
}

func CanDeleteMap(r Role) bool {
	return roleIn(ownerOrAdmin, r)
}

func CanRemoveOrInviteMembers(r Role) bool {
	return roleIn(ownerOrAdmin, r)
}

func CanChangeMemberRole(r Role) bool {
	return roleIn(ownerOrAdmin, r)
}

func CanDeleteGroup(r Role) bool {
	return roleIn(ownerOnly, r)
}

// CanReadOrWriteContent covers point and category CRUD plus map creation
// and renaming; every role has it.
func CanReadOrWriteContent(r Role) bool {
	return roleIn(anyMember, r)
}

// InScope reports whether childID is among the children of an already
// validated parent. It backs the map-belongs-to-group and
// category-belongs-to-map checks so a valid id from one parent cannot be
// replayed under another.
func InScope(childIDs []string, childID string) bool {
	for _, id := range childIDs {
		if id == childID {
			return true
		}
	}
	return false
}
