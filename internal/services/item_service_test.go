package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/shipstores/config"
	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/cache"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/tracing"
)

type mockItemStore struct {
	mock.Mock
}

func (m *mockItemStore) List(ctx context.Context, vesselID *uint, flags domain.VisibilityFlags, filter repositories.ItemFilter, page, pageSize int) ([]models.Item, int64, error) {
	args := m.Called(ctx, vesselID, flags, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Item), args.Get(1).(int64), args.Error(2)
}

func (m *mockItemStore) GetByID(ctx context.Context, id uint, vesselID *uint) (*models.Item, error) {
	args := m.Called(ctx, id, vesselID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *mockItemStore) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemStore) Update(ctx context.Context, item *models.Item, replaceTags bool) error {
	args := m.Called(ctx, item, replaceTags)
	return args.Error(0)
}

func (m *mockItemStore) SetGlobalActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *mockItemStore) SetVesselActive(ctx context.Context, itemID, vesselID uint, active bool) error {
	args := m.Called(ctx, itemID, vesselID, active)
	return args.Error(0)
}

func (m *mockItemStore) RecentlyOrdered(ctx context.Context, vesselID uint, limit int) ([]models.Item, error) {
	args := m.Called(ctx, vesselID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

type mockReferenceLookup struct {
	mock.Mock
}

func (m *mockReferenceLookup) GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *mockReferenceLookup) CategoryExists(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexItem(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockIndexer) DeleteItem(ctx context.Context, itemID uint) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func disabledCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	c, err := cache.NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	return c
}

func newItemService(t *testing.T, store *mockItemStore, reference *mockReferenceLookup, indexer itemIndexer) *ItemService {
	t.Helper()
	return NewItemService(store, reference, disabledCache(t), indexer, tracing.Disabled())
}

func adminScope() auth.Scope {
	return auth.Scope{UserID: uuid.New(), Role: auth.RoleSuperAdmin}
}

func TestListStripsVisibilityFlagsForCrew(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := crewScope()

	store.On("List", mock.Anything, scope.VesselID, domain.VisibilityFlags{}, mock.Anything, 1, 20).
		Return([]models.Item{}, int64(0), nil)

	_, err := svc.List(context.Background(), scope, domain.VisibilityFlags{
		ShowVesselInactive: true,
		ShowGlobalInactive: true,
	}, repositories.ItemFilter{}, 1, 20)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestListKeepsVesselFlagForCaptain(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := captainScope()

	// A captain may reveal vessel-hidden items but never globally hidden ones.
	store.On("List", mock.Anything, scope.VesselID, domain.VisibilityFlags{ShowVesselInactive: true}, mock.Anything, 1, 20).
		Return([]models.Item{}, int64(0), nil)

	_, err := svc.List(context.Background(), scope, domain.VisibilityFlags{
		ShowVesselInactive: true,
		ShowGlobalInactive: true,
	}, repositories.ItemFilter{}, 1, 20)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestGetGloballyInactiveItemHiddenFromVesselUsers(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := crewScope()

	store.On("GetByID", mock.Anything, uint(5), scope.VesselID).
		Return(&models.Item{ID: 5, IsActive: false, VesselActive: true}, nil)

	_, err := svc.Get(context.Background(), scope, 5)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGetGloballyInactiveItemVisibleToAdmin(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := adminScope()

	store.On("GetByID", mock.Anything, uint(5), (*uint)(nil)).
		Return(&models.Item{ID: 5, IsActive: false}, nil)

	item, err := svc.Get(context.Background(), scope, 5)
	require.NoError(t, err)
	require.Equal(t, uint(5), item.ID)
}

func TestGetVesselInactiveItemStaysFetchable(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := captainScope()

	// Captains need the detail view to re-enable a vessel-hidden item.
	store.On("GetByID", mock.Anything, uint(5), scope.VesselID).
		Return(&models.Item{ID: 5, IsActive: true, VesselActive: false}, nil)

	item, err := svc.Get(context.Background(), scope, 5)
	require.NoError(t, err)
	require.False(t, item.VesselActive)
}

func TestSetVesselActiveDeniedForCrew(t *testing.T) {
	svc := newItemService(t, new(mockItemStore), new(mockReferenceLookup), nil)

	err := svc.SetVesselActive(context.Background(), crewScope(), 5, nil, false)
	require.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestSetGlobalActiveDeniedForCaptain(t *testing.T) {
	svc := newItemService(t, new(mockItemStore), new(mockReferenceLookup), nil)

	err := svc.SetGlobalActive(context.Background(), captainScope(), 5, false)
	require.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestSetVesselActiveOnGloballyHiddenItem(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(5), scope.VesselID).
		Return(&models.Item{ID: 5, IsActive: false}, nil)

	err := svc.SetVesselActive(context.Background(), scope, 5, nil, true)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
	store.AssertNotCalled(t, "SetVesselActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetVesselActiveUpserts(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := captainScope()

	store.On("GetByID", mock.Anything, uint(5), scope.VesselID).
		Return(&models.Item{ID: 5, IsActive: true, VesselActive: true}, nil)
	store.On("SetVesselActive", mock.Anything, uint(5), uint(1), false).Return(nil)

	require.NoError(t, svc.SetVesselActive(context.Background(), scope, 5, nil, false))
	store.AssertExpectations(t)
}

func TestCreateItemIndexesDocument(t *testing.T) {
	store := new(mockItemStore)
	indexer := new(mockIndexer)
	svc := newItemService(t, store, new(mockReferenceLookup), indexer)
	scope := adminScope()
	created := &models.Item{ID: 9, Name: "Shackle", Unit: "pcs", IsActive: true}

	store.On("Create", mock.Anything, mock.MatchedBy(func(item *models.Item) bool {
		return item.Name == "Shackle" && item.IsActive
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Item).ID = 9
	})
	store.On("GetByID", mock.Anything, uint(9), (*uint)(nil)).Return(created, nil)
	indexer.On("IndexItem", mock.Anything, created).Return(nil)

	item, err := svc.Create(context.Background(), scope, ItemInput{Name: "Shackle", Unit: "pcs"})
	require.NoError(t, err)
	require.Equal(t, uint(9), item.ID)
	indexer.AssertExpectations(t)
}

func TestCreateItemRequiresNameAndUnit(t *testing.T) {
	svc := newItemService(t, new(mockItemStore), new(mockReferenceLookup), nil)

	_, err := svc.Create(context.Background(), adminScope(), ItemInput{Name: "Shackle"})
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCreateItemRejectsUnknownTags(t *testing.T) {
	reference := new(mockReferenceLookup)
	svc := newItemService(t, new(mockItemStore), reference, nil)

	reference.On("GetTagsByIDs", mock.Anything, []uint{1, 2}).
		Return([]models.Tag{{ID: 1}}, nil)

	_, err := svc.Create(context.Background(), adminScope(), ItemInput{
		Name: "Shackle", Unit: "pcs", TagIDs: []uint{1, 2},
	})
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCreateItemRejectsUnknownCategory(t *testing.T) {
	reference := new(mockReferenceLookup)
	store := new(mockItemStore)
	svc := newItemService(t, store, reference, nil)
	categoryID := uint(99999)

	reference.On("CategoryExists", mock.Anything, categoryID).Return(false, nil)

	_, err := svc.Create(context.Background(), adminScope(), ItemInput{
		Name: "Shackle", Unit: "pcs", CategoryID: &categoryID,
	})
	require.True(t, domain.IsKind(err, domain.KindValidation))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateItemRejectsUnknownCategory(t *testing.T) {
	reference := new(mockReferenceLookup)
	store := new(mockItemStore)
	svc := newItemService(t, store, reference, nil)
	scope := adminScope()
	categoryID := uint(404)

	store.On("GetByID", mock.Anything, uint(5), (*uint)(nil)).
		Return(&models.Item{ID: 5, Name: "Shackle", Unit: "pcs", IsActive: true}, nil)
	reference.On("CategoryExists", mock.Anything, categoryID).Return(false, nil)

	_, err := svc.Update(context.Background(), scope, 5, ItemInput{
		Name: "Shackle", Unit: "pcs", CategoryID: &categoryID,
	})
	require.True(t, domain.IsKind(err, domain.KindValidation))
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecentlyOrderedUsesCallerVessel(t *testing.T) {
	store := new(mockItemStore)
	svc := newItemService(t, store, new(mockReferenceLookup), nil)
	scope := crewScope()

	store.On("RecentlyOrdered", mock.Anything, uint(1), 10).
		Return([]models.Item{{ID: 3}}, nil)

	items, err := svc.RecentlyOrdered(context.Background(), scope, nil, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	store.AssertExpectations(t)
}
