package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/cache"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
	"example.com/shipstores/internal/repositories"
	"example.com/shipstores/internal/tracing"
)

const itemCacheTTL = 5 * time.Minute

type itemStore interface {
	List(ctx context.Context, vesselID *uint, flags domain.VisibilityFlags, filter repositories.ItemFilter, page, pageSize int) ([]models.Item, int64, error)
	GetByID(ctx context.Context, id uint, vesselID *uint) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item, replaceTags bool) error
	SetGlobalActive(ctx context.Context, id uint, active bool) error
	SetVesselActive(ctx context.Context, itemID, vesselID uint, active bool) error
	RecentlyOrdered(ctx context.Context, vesselID uint, limit int) ([]models.Item, error)
}

type referenceLookup interface {
	GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	CategoryExists(ctx context.Context, id uint) (bool, error)
}

// itemIndexer mirrors catalogue changes into the search index.
type itemIndexer interface {
	IndexItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, itemID uint) error
}

// ItemInput carries the writable fields of a catalogue item.
type ItemInput struct {
	Name           string
	DescShort      *string
	Description    *string
	CatalogueNr    *string
	Unit           string
	ManufacturerID *uint
	SupplierID     *uint
	CategoryID     *uint
	TagIDs         []uint
}

// ItemService serves the item catalogue with its two-tier visibility: the
// global flag owned by super_admin and the per-vessel override owned by
// captains.
type ItemService struct {
	store     itemStore
	reference referenceLookup
	cache     *cache.RedisCache
	indexer   itemIndexer // nil when search is disabled
	tracer    tracing.Tracer
}

// NewItemService creates a new item service
func NewItemService(store itemStore, reference referenceLookup, redisCache *cache.RedisCache, indexer itemIndexer, tracer tracing.Tracer) *ItemService {
	return &ItemService{
		store:     store,
		reference: reference,
		cache:     redisCache,
		indexer:   indexer,
		tracer:    tracer,
	}
}

// sanitizeFlags strips visibility flags the caller's role is not allowed to
// use. Crew can never reveal hidden items; captains may reveal vessel-hidden
// ones; only super_admin sees globally inactive items.
func sanitizeFlags(scope auth.Scope, flags domain.VisibilityFlags) domain.VisibilityFlags {
	if !auth.Can(scope, auth.CapToggleVesselActive) {
		flags.ShowVesselInactive = false
	}
	if !scope.IsAdmin() {
		flags.ShowGlobalInactive = false
	}
	return flags
}

// List returns a page of catalogue items visible to the caller.
func (s *ItemService) List(ctx context.Context, scope auth.Scope, flags domain.VisibilityFlags, filter repositories.ItemFilter, page, pageSize int) (Page[models.Item], error) {
	if !auth.Can(scope, auth.CapViewCatalog) {
		return Page[models.Item]{}, domain.ErrUnauthorized("view the catalogue")
	}

	page, pageSize = clampPaging(page, pageSize)
	flags = sanitizeFlags(scope, flags)

	items, total, err := s.store.List(ctx, scope.VesselID, flags, filter, page, pageSize)
	if err != nil {
		return Page[models.Item]{}, err
	}
	return newPage(items, total, page, pageSize), nil
}

func cacheVessel(scope auth.Scope) uint {
	if scope.VesselID != nil {
		return *scope.VesselID
	}
	return 0
}

// Get returns a single item. Globally inactive items are invisible to vessel
// users, but a vessel-hidden item stays fetchable so captains can inspect and
// re-enable it.
func (s *ItemService) Get(ctx context.Context, scope auth.Scope, id uint) (*models.Item, error) {
	if !auth.Can(scope, auth.CapViewCatalog) {
		return nil, domain.ErrUnauthorized("view the catalogue")
	}

	key := cache.ItemCacheKey(id, cacheVessel(scope))
	var cached models.Item
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if !detailVisible(scope, &cached) {
			return nil, domain.ErrNotFound("item")
		}
		return &cached, nil
	}

	item, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}
	if !detailVisible(scope, item) {
		return nil, domain.ErrNotFound("item")
	}

	if err := s.cache.Set(ctx, key, item, itemCacheTTL); err != nil {
		log.Debug().Err(err).Uint("item_id", id).Msg("item cache write skipped")
	}
	return item, nil
}

// detailVisible applies the detail-view rule: a vessel-hidden item stays
// fetchable so captains can re-enable it, a globally hidden one exists only
// for admins.
func detailVisible(scope auth.Scope, item *models.Item) bool {
	return domain.ItemVisible(scope.IsAdmin(), item.IsActive, item.VesselActive, domain.VisibilityFlags{
		ShowVesselInactive: true,
		ShowGlobalInactive: true,
	})
}

func (s *ItemService) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	tags, err := s.reference.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.NewError(domain.KindValidation, "one or more tags do not exist")
	}
	return tags, nil
}

func (s *ItemService) validateCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	exists, err := s.reference.CategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewError(domain.KindValidation, "category does not exist")
	}
	return nil
}

// Create adds a new globally active catalogue item.
func (s *ItemService) Create(ctx context.Context, scope auth.Scope, input ItemInput) (*models.Item, error) {
	if !auth.Can(scope, auth.CapManageItems) {
		return nil, domain.ErrUnauthorized("create items")
	}
	if input.Name == "" || input.Unit == "" {
		return nil, domain.NewError(domain.KindValidation, "item name and unit are required")
	}
	if err := s.validateCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	txn := s.tracer.StartTransaction("create-item")
	defer s.tracer.EndTransaction(txn)

	item := &models.Item{
		Name:           input.Name,
		DescShort:      input.DescShort,
		Description:    input.Description,
		CatalogueNr:    input.CatalogueNr,
		Unit:           input.Unit,
		ManufacturerID: input.ManufacturerID,
		SupplierID:     input.SupplierID,
		CategoryID:     input.CategoryID,
		CreatedBy:      scope.UserID,
		IsActive:       true,
		Tags:           tags,
	}

	if err := s.store.Create(ctx, item); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	created, err := s.store.GetByID(ctx, item.ID, scope.VesselID)
	if err != nil {
		return nil, err
	}

	s.index(ctx, created)
	log.Info().Uint("item_id", created.ID).Str("name", created.Name).Msg("item created")
	return created, nil
}

// Update rewrites an item's descriptive fields and tag set.
func (s *ItemService) Update(ctx context.Context, scope auth.Scope, id uint, input ItemInput) (*models.Item, error) {
	if !auth.Can(scope, auth.CapManageItems) {
		return nil, domain.ErrUnauthorized("edit items")
	}
	if input.Name == "" || input.Unit == "" {
		return nil, domain.NewError(domain.KindValidation, "item name and unit are required")
	}

	item, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}
	if !detailVisible(scope, item) {
		return nil, domain.ErrNotFound("item")
	}

	if err := s.validateCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.DescShort = input.DescShort
	item.Description = input.Description
	item.CatalogueNr = input.CatalogueNr
	item.Unit = input.Unit
	item.ManufacturerID = input.ManufacturerID
	item.SupplierID = input.SupplierID
	item.CategoryID = input.CategoryID
	item.Tags = tags

	if err := s.store.Update(ctx, item, true); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id, scope)
	updated, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}

	s.index(ctx, updated)
	log.Info().Uint("item_id", id).Msg("item updated")
	return updated, nil
}

// UpdateImage stores the relative asset path of a freshly uploaded image.
func (s *ItemService) UpdateImage(ctx context.Context, scope auth.Scope, id uint, relPath string) (*models.Item, error) {
	if !auth.Can(scope, auth.CapManageItems) {
		return nil, domain.ErrUnauthorized("edit items")
	}

	item, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return nil, err
	}
	if !detailVisible(scope, item) {
		return nil, domain.ErrNotFound("item")
	}

	item.ImagePath = &relPath
	if err := s.store.Update(ctx, item, false); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id, scope)
	return s.store.GetByID(ctx, id, scope.VesselID)
}

// RemoveImage clears an item's image and reports the old asset path so the
// caller can delete the stored file.
func (s *ItemService) RemoveImage(ctx context.Context, scope auth.Scope, id uint) (string, error) {
	if !auth.Can(scope, auth.CapManageItems) {
		return "", domain.ErrUnauthorized("edit items")
	}

	item, err := s.store.GetByID(ctx, id, scope.VesselID)
	if err != nil {
		return "", err
	}
	if !detailVisible(scope, item) {
		return "", domain.ErrNotFound("item")
	}
	if item.ImagePath == nil {
		return "", nil
	}

	old := *item.ImagePath
	item.ImagePath = nil
	if err := s.store.Update(ctx, item, false); err != nil {
		return "", err
	}

	s.invalidate(ctx, id, scope)
	return old, nil
}

// SetGlobalActive flips the catalogue-wide flag. Hiding an item globally
// hides it on every vessel regardless of overrides.
func (s *ItemService) SetGlobalActive(ctx context.Context, scope auth.Scope, id uint, active bool) error {
	if !auth.Can(scope, auth.CapToggleGlobalActive) {
		return domain.ErrUnauthorized("toggle global item visibility")
	}

	if err := s.store.SetGlobalActive(ctx, id, active); err != nil {
		return err
	}

	// Drop every vessel's cached copy so the change is visible immediately.
	if err := s.cache.DeletePattern(ctx, cache.ItemCachePattern(id)); err != nil {
		log.Debug().Err(err).Uint("item_id", id).Msg("item cache invalidation skipped")
	}

	if active {
		item, err := s.store.GetByID(ctx, id, nil)
		if err == nil {
			s.index(ctx, item)
		}
	} else {
		s.unindex(ctx, id)
	}

	log.Info().Uint("item_id", id).Bool("active", active).Msg("item global visibility changed")
	return nil
}

// SetVesselActive flips the per-vessel override. It never touches the global
// flag, so a captain cannot reveal a globally hidden item.
func (s *ItemService) SetVesselActive(ctx context.Context, scope auth.Scope, id uint, explicitVessel *uint, active bool) error {
	if !auth.Can(scope, auth.CapToggleVesselActive) {
		return domain.ErrUnauthorized("toggle vessel item visibility")
	}

	vesselID, err := resolveVessel(scope, explicitVessel)
	if err != nil {
		return err
	}

	// The item must exist; a globally hidden item is invisible even to the
	// captain toggling overrides.
	item, err := s.store.GetByID(ctx, id, &vesselID)
	if err != nil {
		return err
	}
	if !detailVisible(scope, item) {
		return domain.ErrNotFound("item")
	}

	if err := s.store.SetVesselActive(ctx, id, vesselID, active); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, cache.ItemCacheKey(id, vesselID)); err != nil {
		log.Debug().Err(err).Msg("item cache invalidation skipped")
	}

	log.Info().
		Uint("item_id", id).
		Uint("vessel_id", vesselID).
		Bool("active", active).
		Msg("item vessel visibility changed")
	return nil
}

// RecentlyOrdered returns the caller vessel's most recently requisitioned
// items, for quick re-ordering.
func (s *ItemService) RecentlyOrdered(ctx context.Context, scope auth.Scope, explicitVessel *uint, limit int) ([]models.Item, error) {
	if !auth.Can(scope, auth.CapViewCatalog) {
		return nil, domain.ErrUnauthorized("view the catalogue")
	}

	vesselID, err := resolveVessel(scope, explicitVessel)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.store.RecentlyOrdered(ctx, vesselID, limit)
}

// index mirrors the item into the search index. Best effort only.
func (s *ItemService) index(ctx context.Context, item *models.Item) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexItem(ctx, item); err != nil {
		log.Warn().Err(err).Uint("item_id", item.ID).Msg("search index update failed")
	}
}

// unindex removes a hidden item from the search index. Best effort only.
func (s *ItemService) unindex(ctx context.Context, id uint) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.DeleteItem(ctx, id); err != nil {
		log.Warn().Err(err).Uint("item_id", id).Msg("search index removal failed")
	}
}

func (s *ItemService) invalidate(ctx context.Context, id uint, scope auth.Scope) {
	keys := []string{cache.ItemCacheKey(id, 0)}
	if scope.VesselID != nil {
		keys = append(keys, cache.ItemCacheKey(id, *scope.VesselID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Debug().Err(err).Msg("item cache invalidation skipped")
	}
}
