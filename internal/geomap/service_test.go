// waypoint | 2026
// service_test.go

package geomap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/core"
	"github.com/waypointhq/waypoint/internal/membership"
)

type memRepo struct {
	maps       map[string]*Map
	categories map[string]*Category
	points     map[string]*Point
	listCalls  int
}

func newMemRepo() *memRepo {
	return &memRepo{
		maps:       make(map[string]*Map),
		categories: make(map[string]*Category),
		points:     make(map[string]*Point),
	}
}

func (r *memRepo) CreateMap(_ context.Context, m *Map) error {
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.maps[m.ID] = m
	return nil
}

func (r *memRepo) GetMap(_ context.Context, id string) (*Map, error) {
	m, ok := r.maps[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return m, nil
}

func (r *memRepo) GetMapByPublicID(
	_ context.Context,
	publicID string,
) (*Map, error) {
	for _, m := range r.maps {
		if m.IsPublic && m.PublicID != nil && *m.PublicID == publicID {
			return m, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *memRepo) ListMapsByGroup(
	_ context.Context,
	groupID string,
) ([]Map, error) {
	r.listCalls++
	var out []Map
	for _, m := range r.maps {
		if m.GroupID == groupID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memRepo) RenameMap(
	_ context.Context,
	id, name string,
) (*Map, error) {
	m, ok := r.maps[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	m.Name = name
	return m, nil
}

func (r *memRepo) SetMapVisibility(
	_ context.Context,
	id string,
	isPublic bool,
	publicID *string,
) (*Map, error) {
	m, ok := r.maps[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	m.IsPublic = isPublic
	m.PublicID = publicID
	return m, nil
}

func (r *memRepo) DeleteMap(_ context.Context, id string) error {
	if _, ok := r.maps[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.maps, id)
	return nil
}

func (r *memRepo) CreateCategory(_ context.Context, c *Category) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.categories[c.ID] = c
	return nil
}

func (r *memRepo) GetCategory(
	_ context.Context,
	mapID, id string,
) (*Category, error) {
	c, ok := r.categories[id]
	if !ok || c.MapID != mapID {
		return nil, core.ErrNotFound
	}
	return c, nil
}

func (r *memRepo) ListCategories(
	_ context.Context,
	mapID string,
) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		if c.MapID == mapID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateCategory(_ context.Context, c *Category) error {
	existing, ok := r.categories[c.ID]
	if !ok || existing.MapID != c.MapID {
		return core.ErrNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *memRepo) ClearCategoryRefs(
	_ context.Context,
	categoryID string,
) error {
	for _, p := range r.points {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
		}
	}
	return nil
}

func (r *memRepo) DeleteCategory(
	_ context.Context,
	mapID, id string,
) error {
	c, ok := r.categories[id]
	if !ok || c.MapID != mapID {
		return core.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memRepo) CreatePoint(_ context.Context, p *Point) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.points[p.ID] = p
	return nil
}

func (r *memRepo) GetPoint(
	_ context.Context,
	mapID, id string,
) (*Point, error) {
	p, ok := r.points[id]
	if !ok || p.MapID != mapID {
		return nil, core.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) ListPoints(
	_ context.Context,
	mapID string,
) ([]Point, error) {
	var out []Point
	for _, p := range r.points {
		if p.MapID == mapID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memRepo) UpdatePoint(_ context.Context, p *Point) error {
	existing, ok := r.points[p.ID]
	if !ok || existing.MapID != p.MapID {
		return core.ErrNotFound
	}
	r.points[p.ID] = p
	return nil
}

func (r *memRepo) DeletePoint(_ context.Context, mapID, id string) error {
	p, ok := r.points[id]
	if !ok || p.MapID != mapID {
		return core.ErrNotFound
	}
	delete(r.points, id)
	return nil
}

func (r *memRepo) InsertPoints(
	ctx context.Context,
	points []Point,
) error {
	for i := range points {
		p := points[i]
		if err := r.CreatePoint(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

type memTxRunner struct {
	repo Repository
}

func (r *memTxRunner) RunInTx(
	_ context.Context,
	fn func(repo Repository) error,
) error {
	return fn(r.repo)
}

type memResolver struct {
	memberships map[string][]membership.GroupMembership
}

func newMemResolver() *memResolver {
	return &memResolver{
		memberships: make(map[string][]membership.GroupMembership),
	}
}

func (r *memResolver) grant(userID, groupID string, role access.Role) {
	r.memberships[userID] = append(
		r.memberships[userID],
		membership.GroupMembership{GroupID: groupID, Role: role},
	)
}

func (r *memResolver) Resolve(
	_ context.Context,
	userID string,
) ([]membership.GroupMembership, error) {
	return r.memberships[userID], nil
}

type memViews struct {
	counts map[string]int64
}

func (v *memViews) Increment(
	_ context.Context,
	publicID string,
) (int64, error) {
	if v.counts == nil {
		v.counts = make(map[string]int64)
	}
	v.counts[publicID]++
	return v.counts[publicID], nil
}

type mapFixture struct {
	service  *Service
	repo     *memRepo
	resolver *memResolver
	views    *memViews
}

func newMapFixture() *mapFixture {
	repo := newMemRepo()
	resolver := newMemResolver()
	views := &memViews{}

	svc := NewService(
		&memTxRunner{repo: repo},
		repo,
		resolver,
		128,
		time.Minute,
		views,
	)

	return &mapFixture{
		service:  svc,
		repo:     repo,
		resolver: resolver,
		views:    views,
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func pointReq(lat, lng float64) PointRequest {
	return PointRequest{
		Description: "sighting",
		Latitude:    floatPtr(lat),
		Longitude:   floatPtr(lng),
		OccurredAt:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestCreateMapRefreshesList(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("alice", "g1", access.RoleContributor)

	first, err := f.service.CreateMap(ctx, "alice", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)
	assert.False(t, first.IsPublic)
	assert.Nil(t, first.PublicID)

	maps, err := f.service.ListMaps(ctx, "alice", "g1")
	require.NoError(t, err)
	require.Len(t, maps, 1)

	// A map created after the list was memoized must appear on the
	// next read.
	_, err = f.service.CreateMap(ctx, "alice", "g1", CreateMapRequest{
		Name: "Sightings",
	})
	require.NoError(t, err)

	maps, err = f.service.ListMaps(ctx, "alice", "g1")
	require.NoError(t, err)
	assert.Len(t, maps, 2)
}

func TestListMapsMemoized(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("alice", "g1", access.RoleContributor)

	_, err := f.service.ListMaps(ctx, "alice", "g1")
	require.NoError(t, err)
	_, err = f.service.ListMaps(ctx, "alice", "g1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.repo.listCalls)
}

func TestMapScopeRejectsForeignMap(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("alice", "g1", access.RoleOwner)
	f.resolver.grant("alice", "g2", access.RoleOwner)

	created, err := f.service.CreateMap(ctx, "alice", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	// A map id valid in g1 must be refused under g2's path even though
	// the caller belongs to both groups.
	_, err = f.service.GetMap(ctx, "alice", "g2", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestSetMapVisibility(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("owner", "g1", access.RoleOwner)
	f.resolver.grant("carol", "g1", access.RoleContributor)

	created, err := f.service.CreateMap(ctx, "owner", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	on := true
	off := false

	_, err = f.service.SetMapVisibility(
		ctx, "carol", "g1", created.ID,
		SetMapVisibilityRequest{IsPublic: &on},
	)
	assert.ErrorIs(t, err, core.ErrForbidden)

	published, err := f.service.SetMapVisibility(
		ctx, "owner", "g1", created.ID,
		SetMapVisibilityRequest{IsPublic: &on},
	)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)
	require.NotNil(t, published.PublicID)
	firstID := *published.PublicID

	// Publishing again keeps the identifier stable.
	published, err = f.service.SetMapVisibility(
		ctx, "owner", "g1", created.ID,
		SetMapVisibilityRequest{IsPublic: &on},
	)
	require.NoError(t, err)
	require.NotNil(t, published.PublicID)
	assert.Equal(t, firstID, *published.PublicID)

	unpublished, err := f.service.SetMapVisibility(
		ctx, "owner", "g1", created.ID,
		SetMapVisibilityRequest{IsPublic: &off},
	)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublic)
	assert.Nil(t, unpublished.PublicID)
}

func TestDeleteMapRequiresOwnerOrAdmin(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("owner", "g1", access.RoleOwner)
	f.resolver.grant("carol", "g1", access.RoleContributor)

	created, err := f.service.CreateMap(ctx, "owner", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	err = f.service.DeleteMap(ctx, "carol", "g1", created.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	require.NoError(t, f.service.DeleteMap(ctx, "owner", "g1", created.ID))

	maps, err := f.service.ListMaps(ctx, "owner", "g1")
	require.NoError(t, err)
	assert.Empty(t, maps)
}

func TestGetPublicMap(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("owner", "g1", access.RoleOwner)

	created, err := f.service.CreateMap(ctx, "owner", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	on := true
	published, err := f.service.SetMapVisibility(
		ctx, "owner", "g1", created.ID,
		SetMapVisibilityRequest{IsPublic: &on},
	)
	require.NoError(t, err)

	resp, err := f.service.GetPublicMap(ctx, *published.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "Trails", resp.Name)
	assert.Equal(t, int64(1), resp.Views)

	resp, err = f.service.GetPublicMap(ctx, *published.PublicID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Views)

	_, err = f.service.GetPublicMap(ctx, "nonsense")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteCategoryClearsPointRefs(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("carol", "g1", access.RoleContributor)

	created, err := f.service.CreateMap(ctx, "carol", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	keep, err := f.service.CreateCategory(
		ctx, "carol", "g1", created.ID,
		CategoryRequest{Name: "Keep", Color: "#00ff00"},
	)
	require.NoError(t, err)

	doomed, err := f.service.CreateCategory(
		ctx, "carol", "g1", created.ID,
		CategoryRequest{Name: "Doomed", Color: "#ff0000"},
	)
	require.NoError(t, err)

	reqA := pointReq(51.5, -0.12)
	reqA.CategoryID = &doomed.ID
	a, err := f.service.CreatePoint(ctx, "carol", "g1", created.ID, reqA)
	require.NoError(t, err)

	reqB := pointReq(48.85, 2.35)
	reqB.CategoryID = &keep.ID
	b, err := f.service.CreatePoint(ctx, "carol", "g1", created.ID, reqB)
	require.NoError(t, err)

	err = f.service.DeleteCategory(ctx, "carol", "g1", created.ID, doomed.ID)
	require.NoError(t, err)

	// The point that referenced the deleted category survives without
	// the reference; the other point is untouched.
	assert.Nil(t, f.repo.points[a.ID].CategoryID)
	require.NotNil(t, f.repo.points[b.ID].CategoryID)
	assert.Equal(t, keep.ID, *f.repo.points[b.ID].CategoryID)
}

func TestCreatePointRejectsForeignCategory(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("carol", "g1", access.RoleContributor)

	mapA, err := f.service.CreateMap(ctx, "carol", "g1", CreateMapRequest{
		Name: "A",
	})
	require.NoError(t, err)
	mapB, err := f.service.CreateMap(ctx, "carol", "g1", CreateMapRequest{
		Name: "B",
	})
	require.NoError(t, err)

	foreign, err := f.service.CreateCategory(
		ctx, "carol", "g1", mapB.ID,
		CategoryRequest{Name: "Elsewhere", Color: "#0000ff"},
	)
	require.NoError(t, err)

	req := pointReq(10, 20)
	req.CategoryID = &foreign.ID

	_, err = f.service.CreatePoint(ctx, "carol", "g1", mapA.ID, req)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestImportPoints(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("carol", "g1", access.RoleContributor)

	created, err := f.service.CreateMap(ctx, "carol", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	resp, err := f.service.ImportPoints(
		ctx, "carol", "g1", created.ID,
		ImportPointsRequest{Points: []PointRequest{
			pointReq(1, 2),
			pointReq(3, 4),
			pointReq(5, 6),
		}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Imported)

	points, err := f.service.ListPoints(ctx, "carol", "g1", created.ID)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestImportPointsRejectsUnknownCategory(t *testing.T) {
	f := newMapFixture()
	ctx := context.Background()
	f.resolver.grant("carol", "g1", access.RoleContributor)

	created, err := f.service.CreateMap(ctx, "carol", "g1", CreateMapRequest{
		Name: "Trails",
	})
	require.NoError(t, err)

	bad := pointReq(1, 2)
	bad.CategoryID = strPtr("no-such-category")

	_, err = f.service.ImportPoints(
		ctx, "carol", "g1", created.ID,
		ImportPointsRequest{Points: []PointRequest{pointReq(3, 4), bad}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// One bad row rejects the whole batch.
	points, err := f.service.ListPoints(ctx, "carol", "g1", created.ID)
	require.NoError(t, err)
	assert.Empty(t, points)
}
