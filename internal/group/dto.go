// waypoint | 2026
// dto.go

package group

import (
	"time"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/membership"
)

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type RenameGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type AddUsersRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,max=50,dive,email"`
}

// ChangeMemberRoleRequest rejects "owner" before the business layer ever
// sees it: ownership is assigned at group creation and never via this
// path.
type ChangeMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin contributor"`
}

type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GroupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	Plan string `json:"plan"`
}

type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type GroupDetailResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Role    string           `json:"role"`
	Plan    string           `json:"plan"`
	Members []MemberResponse `json:"members"`
}

type AddUsersResponse struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

func toGroupResponse(g *Group, role access.Role, now time.Time) GroupResponse {
	return GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Role:      role.String(),
		Plan:      g.Plan(now),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toGroupSummaries(
	memberships []membership.GroupMembership,
	now time.Time,
) []GroupSummary {
	summaries := make([]GroupSummary, 0, len(memberships))
	for _, m := range memberships {
		summaries = append(summaries, GroupSummary{
			ID:   m.GroupID,
			Name: m.GroupName,
			Role: m.Role.String(),
			Plan: PlanTag(m.PlanName, m.PlanEndDate, now),
		})
	}
	return summaries
}

func toMemberResponses(members []membership.MemberDetail) []MemberResponse {
	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, MemberResponse{
			UserID:   m.UserID,
			Email:    m.Email,
			Name:     m.Name,
			Role:     m.Role.String(),
			JoinedAt: m.JoinedAt,
		})
	}
	return responses
}
