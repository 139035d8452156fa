// waypoint | 2026
// entity.go

package group

import (
	"time"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type Group struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	CreatedBy   string     `db:"created_by"`
	PlanName    *string    `db:"plan_name"`
	PlanEndDate *time.Time `db:"plan_end_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Plan computes the externally visible plan tag. A group is "pro" only
// while its plan is named pro and its end date has not passed; the end
// date counts through the end of that calendar day.
func (g *Group) Plan(now time.Time) string {
	return PlanTag(g.PlanName, g.PlanEndDate, now)
}

func PlanTag(planName *string, planEndDate *time.Time, now time.Time) string {
	if planName == nil || *planName != PlanPro || planEndDate == nil {
		return PlanFree
	}

	end := planEndDate.In(now.Location())
	endOfDay := time.Date(
		end.Year(), end.Month(), end.Day(),
		23, 59, 59, int(time.Second-time.Nanosecond),
		now.Location(),
	)

	if endOfDay.Before(now) {
		return PlanFree
	}

	return PlanPro
}
