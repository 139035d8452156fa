// waypoint | 2026
// service.go

package geomap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/cache"
	"github.com/waypointhq/waypoint/internal/core"
	"github.com/waypointhq/waypoint/internal/membership"
)

// TxRunner executes a function against a transaction-scoped repository.
// Category deletion needs it: clearing point references and removing the
// category row must land together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repo Repository) error) error
}

type sqlTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTx(
	ctx context.Context,
	fn func(repo Repository) error,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(NewRepository(tx))
	})
}

type MembershipResolver interface {
	Resolve(
		ctx context.Context,
		userID string,
	) ([]membership.GroupMembership, error)
}

// ViewCounter tracks reads of public maps. Counting is best effort: a
// failed increment is logged, never surfaced to the reader.
type ViewCounter interface {
	Increment(ctx context.Context, publicID string) (int64, error)
}

type Service struct {
	tx       TxRunner
	repo     Repository
	resolver MembershipResolver
	mapLists *cache.TTL[[]Map]
	views    ViewCounter
}

func NewService(
	tx TxRunner,
	repo Repository,
	resolver MembershipResolver,
	listCacheEntries int,
	listCacheTTL time.Duration,
	views ViewCounter,
) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		resolver: resolver,
		mapLists: cache.NewTTL[[]Map](listCacheEntries, listCacheTTL),
		views:    views,
	}
}

// InvalidateMapList drops the memoized map list for a group. The group
// service calls this when it deletes a group and the maps go with it.
func (s *Service) InvalidateMapList(groupID string) {
	s.mapLists.Invalidate(groupID)
}

// MapListCacheLen reports the number of memoized map lists, for ops
// visibility.
func (s *Service) MapListCacheLen() int {
	return s.mapLists.Len()
}

// requireRole resolves the caller's memberships and returns their role
// in groupID, denying callers with no membership row at all.
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

// requireContentRole is requireRole plus the content predicate, which
// every role currently satisfies. Content operations still route through
// it so a future role change lands in one place.
func (s *Service) requireContentRole(
	ctx context.Context,
	userID, groupID string,
) (access.Role, error) {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return "", err
	}

	if !access.CanReadOrWriteContent(role) {
		return "", core.ForbiddenError("user cannot modify group content")
	}

	return role, nil
}

// groupMaps returns the group's maps through the memoized list.
func (s *Service) groupMaps(
	ctx context.Context,
	groupID string,
) ([]Map, error) {
	return s.mapLists.GetOrCompute(ctx, groupID,
		func(ctx context.Context) ([]Map, error) {
			return s.repo.ListMapsByGroup(ctx, groupID)
		})
}

// scopeMap verifies that mapID is one of the group's maps. A map id that
// is valid in some other group is rejected here, so a caller cannot
// reach content by presenting a foreign map id under a group they do
// belong to.
func (s *Service) scopeMap(
	ctx context.Context,
	groupID, mapID string,
) (*Map, error) {
	maps, err := s.groupMaps(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("scope map: %w", err)
	}

	ids := make([]string, 0, len(maps))
	for i := range maps {
		ids = append(ids, maps[i].ID)
	}

	if !access.InScope(ids, mapID) {
		return nil, core.ForbiddenError("map does not belong to group")
	}

	for i := range maps {
		if maps[i].ID == mapID {
			return &maps[i], nil
		}
	}

	return nil, core.ForbiddenError("map does not belong to group")
}

func (s *Service) CreateMap(
	ctx context.Context,
	userID, groupID string,
	req CreateMapRequest,
) (*MapResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	m := &Map{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Name:      req.Name,
		CreatedBy: userID,
	}

	if err := s.repo.CreateMap(ctx, m); err != nil {
		return nil, fmt.Errorf("create map: %w", err)
	}

	// The creator must be able to act on the new map immediately, so
	// the memoized list cannot outlive this write.
	s.mapLists.Invalidate(groupID)

	resp := toMapResponse(m)
	return &resp, nil
}

func (s *Service) ListMaps(
	ctx context.Context,
	userID, groupID string,
) ([]MapResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	maps, err := s.groupMaps(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}

	return toMapResponses(maps), nil
}

func (s *Service) GetMap(
	ctx context.Context,
	userID, groupID, mapID string,
) (*MapResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	m, err := s.scopeMap(ctx, groupID, mapID)
	if err != nil {
		return nil, err
	}

	resp := toMapResponse(m)
	return &resp, nil
}

func (s *Service) RenameMap(
	ctx context.Context,
	userID, groupID, mapID string,
	req RenameMapRequest,
) (*MapResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	m, err := s.repo.RenameMap(ctx, mapID, req.Name)
	if err != nil {
		return nil, err
	}

	s.mapLists.Invalidate(groupID)

	resp := toMapResponse(m)
	return &resp, nil
}

// SetMapVisibility toggles public sharing. The public identifier is
// generated on first publish, kept stable while the map stays public,
// and cleared on unpublish; republishing mints a fresh one.
func (s *Service) SetMapVisibility(
	ctx context.Context,
	userID, groupID, mapID string,
	req SetMapVisibilityRequest,
) (*MapResponse, error) {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !access.CanMutateMapVisibility(role) {
		return nil, core.ForbiddenError(
			"only owners and admins can change map visibility",
		)
	}

	m, err := s.scopeMap(ctx, groupID, mapID)
	if err != nil {
		return nil, err
	}

	isPublic := *req.IsPublic

	var publicID *string
	if isPublic {
		publicID = m.PublicID
		if publicID == nil {
			id, err := core.GeneratePublicMapID()
			if err != nil {
				return nil, fmt.Errorf("set map visibility: %w", err)
			}
			publicID = &id
		}
	}

	updated, err := s.repo.SetMapVisibility(ctx, mapID, isPublic, publicID)
	if err != nil {
		return nil, err
	}

	s.mapLists.Invalidate(groupID)

	resp := toMapResponse(updated)
	return &resp, nil
}

func (s *Service) DeleteMap(
	ctx context.Context,
	userID, groupID, mapID string,
) error {
	role, err := s.requireRole(ctx, userID, groupID)
	if err != nil {
		return err
	}

	if !access.CanDeleteMap(role) {
		return core.ForbiddenError("only owners and admins can delete maps")
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return err
	}

	if err := s.repo.DeleteMap(ctx, mapID); err != nil {
		return err
	}

	s.mapLists.Invalidate(groupID)
	return nil
}

// GetPublicMap serves the unauthenticated read model for a shared map:
// the map with all of its categories and points plus a best-effort view
// count.
func (s *Service) GetPublicMap(
	ctx context.Context,
	publicID string,
) (*PublicMapResponse, error) {
	m, err := s.repo.GetMapByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	categories, err := s.repo.ListCategories(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	points, err := s.repo.ListPoints(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	var views int64
	if s.views != nil {
		views, err = s.views.Increment(ctx, publicID)
		if err != nil {
			slog.Warn("view counter increment failed",
				"public_id", publicID,
				"error", err,
			)
			views = 0
		}
	}

	return &PublicMapResponse{
		PublicID:   publicID,
		Name:       m.Name,
		Categories: toCategoryResponses(categories),
		Points:     toPointResponses(points),
		Views:      views,
	}, nil
}

func (s *Service) CreateCategory(
	ctx context.Context,
	userID, groupID, mapID string,
	req CategoryRequest,
) (*CategoryResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	c := &Category{
		ID:          uuid.New().String(),
		MapID:       mapID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *Service) UpdateCategory(
	ctx context.Context,
	userID, groupID, mapID, categoryID string,
	req CategoryRequest,
) (*CategoryResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	c := &Category{
		ID:          categoryID,
		MapID:       mapID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	resp := toCategoryResponse(c)
	return &resp, nil
}

// DeleteCategory removes a category and clears the reference on every
// point that used it, atomically. The points themselves survive.
func (s *Service) DeleteCategory(
	ctx context.Context,
	userID, groupID, mapID, categoryID string,
) error {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return err
	}

	// Scope the category to the validated map before touching anything.
	if _, err := s.repo.GetCategory(ctx, mapID, categoryID); err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(repo Repository) error {
		if err := repo.ClearCategoryRefs(ctx, categoryID); err != nil {
			return err
		}
		return repo.DeleteCategory(ctx, mapID, categoryID)
	})
}

func (s *Service) CreatePoint(
	ctx context.Context,
	userID, groupID, mapID string,
	req PointRequest,
) (*PointResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	if err := s.checkCategoryRef(ctx, mapID, req.CategoryID); err != nil {
		return nil, err
	}

	p := pointFromRequest(uuid.New().String(), mapID, req)

	if err := s.repo.CreatePoint(ctx, p); err != nil {
		return nil, fmt.Errorf("create point: %w", err)
	}

	resp := toPointResponse(p)
	return &resp, nil
}

func (s *Service) UpdatePoint(
	ctx context.Context,
	userID, groupID, mapID, pointID string,
	req PointRequest,
) (*PointResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	if err := s.checkCategoryRef(ctx, mapID, req.CategoryID); err != nil {
		return nil, err
	}

	p := pointFromRequest(pointID, mapID, req)

	if err := s.repo.UpdatePoint(ctx, p); err != nil {
		return nil, err
	}

	resp := toPointResponse(p)
	return &resp, nil
}

func (s *Service) DeletePoint(
	ctx context.Context,
	userID, groupID, mapID, pointID string,
) error {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return err
	}

	return s.repo.DeletePoint(ctx, mapID, pointID)
}

func (s *Service) ListPoints(
	ctx context.Context,
	userID, groupID, mapID string,
) ([]PointResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	points, err := s.repo.ListPoints(ctx, mapID)
	if err != nil {
		return nil, err
	}

	return toPointResponses(points), nil
}

// ImportPoints bulk-inserts pre-validated rows. Category references are
// checked against the validated map once, up front, so one bad row
// rejects the whole batch instead of importing half of it.
func (s *Service) ImportPoints(
	ctx context.Context,
	userID, groupID, mapID string,
	req ImportPointsRequest,
) (*ImportPointsResponse, error) {
	if _, err := s.requireContentRole(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if _, err := s.scopeMap(ctx, groupID, mapID); err != nil {
		return nil, err
	}

	categories, err := s.repo.ListCategories(ctx, mapID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c.ID] = struct{}{}
	}

	points := make([]Point, 0, len(req.Points))
	for _, row := range req.Points {
		if row.CategoryID != nil {
			if _, ok := known[*row.CategoryID]; !ok {
				return nil, fmt.Errorf(
					"import points: category %s: %w",
					*row.CategoryID, core.ErrNotFound,
				)
			}
		}
		points = append(points, *pointFromRequest(
			uuid.New().String(), mapID, row,
		))
	}

	if err := s.repo.InsertPoints(ctx, points); err != nil {
		return nil, err
	}

	return &ImportPointsResponse{Imported: len(points)}, nil
}

// checkCategoryRef verifies a point's optional category reference against
// the already-validated map.
func (s *Service) checkCategoryRef(
	ctx context.Context,
	mapID string,
	categoryID *string,
) error {
	if categoryID == nil {
		return nil
	}

	_, err := s.repo.GetCategory(ctx, mapID, *categoryID)
	return err
}

func pointFromRequest(id, mapID string, req PointRequest) *Point {
	return &Point{
		ID:          id,
		MapID:       mapID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		OccurredAt:  req.OccurredAt,
		DueAt:       req.DueAt,
		Notes:       req.Notes,
	}
}
