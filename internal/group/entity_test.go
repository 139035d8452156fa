// waypoint | 2026
// entity_test.go

package group

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanTag(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	pro := PlanPro
	basic := "basic"

	date := func(y int, m time.Month, d int) *time.Time {
		ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	tests := []struct {
		name    string
		plan    *string
		endDate *time.Time
		want    string
	}{
		{"no plan", nil, nil, PlanFree},
		{"pro without end date", &pro, nil, PlanFree},
		{"pro ending in the future", &pro, date(2026, 4, 1), PlanPro},
		{"pro ending today counts through the day", &pro, date(2026, 3, 15), PlanPro},
		{"pro ended yesterday", &pro, date(2026, 3, 14), PlanFree},
		{"unknown plan name", &basic, date(2026, 4, 1), PlanFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanTag(tt.plan, tt.endDate, now))
		})
	}
}

func TestGroupPlan(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	pro := PlanPro
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	g := &Group{PlanName: &pro, PlanEndDate: &end}
	assert.Equal(t, PlanPro, g.Plan(now))

	assert.Equal(t, PlanFree, (&Group{}).Plan(now))
}
