package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
)

// ItemFilter narrows item listings. Filters are applied after the visibility
// gate: they can only narrow what the caller is already allowed to see.
type ItemFilter struct {
	Search         string
	CategoryID     *uint
	ManufacturerID *uint
	SupplierID     *uint
	TagIDs         []uint
}

// ItemRepository provides access to the item catalogue and the per-vessel
// visibility overrides.
type ItemRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB, readOnlyDB *gorm.DB) *ItemRepository {
	return &ItemRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

func (r *ItemRepository) preloaded(q *gorm.DB) *gorm.DB {
	return q.Preload("Manufacturer").
		Preload("Supplier").
		Preload("Category").
		Preload("Tags")
}

func applyFilter(q *gorm.DB, filter ItemFilter) *gorm.DB {
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		q = q.Where("items.name ILIKE ? OR items.catalogue_nr ILIKE ? OR items.desc_short ILIKE ?", term, term, term)
	}
	if filter.CategoryID != nil {
		q = q.Where("items.category_id = ?", *filter.CategoryID)
	}
	if filter.ManufacturerID != nil {
		q = q.Where("items.manufacturer_id = ?", *filter.ManufacturerID)
	}
	if filter.SupplierID != nil {
		q = q.Where("items.supplier_id = ?", *filter.SupplierID)
	}
	// Item must carry every requested tag.
	for _, tagID := range filter.TagIDs {
		q = q.Where("EXISTS (SELECT 1 FROM item_tags WHERE item_tags.item_id = items.id AND item_tags.tag_id = ?)", tagID)
	}
	return q
}

// List returns a page of items visible to the given scope. vesselID nil means
// the cross-vessel administrator. Ordering is by id ascending so page
// boundaries stay put between requests.
func (r *ItemRepository) List(ctx context.Context, vesselID *uint, flags domain.VisibilityFlags, filter ItemFilter, page, pageSize int) ([]models.Item, int64, error) {
	q := r.readOnlyDB.WithContext(ctx).Model(&models.Item{})

	if vesselID == nil {
		// Admin: the global flag is the only gate.
		if !flags.ShowGlobalInactive {
			q = q.Where("items.is_active = ?", true)
		}
	} else {
		// Vessel scope: the global flag is a hard floor, the per-vessel
		// override narrows further unless explicitly revealed.
		q = q.Where("items.is_active = ?", true)
		q = q.Joins("LEFT JOIN vessel_items ON vessel_items.item_id = items.id AND vessel_items.vessel_id = ?", *vesselID)
		if !flags.ShowVesselInactive {
			q = q.Where("COALESCE(vessel_items.is_active, true) = ?", true)
		}
	}

	q = applyFilter(q, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count items")
	}

	var items []models.Item
	err := r.preloaded(q).
		Order("items.id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list items")
	}

	if err := r.attachVesselActive(ctx, vesselID, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// attachVesselActive fills the non-persisted VesselActive field from the
// override table. Items without an override row default to visible.
func (r *ItemRepository) attachVesselActive(ctx context.Context, vesselID *uint, items []models.Item) error {
	for i := range items {
		items[i].VesselActive = true
	}
	if vesselID == nil || len(items) == 0 {
		return nil
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var overrides []models.VesselItem
	err := r.readOnlyDB.WithContext(ctx).
		Where("vessel_id = ? AND item_id IN ?", *vesselID, ids).
		Find(&overrides).Error
	if err != nil {
		return errors.Wrap(err, "failed to load vessel item overrides")
	}

	inactive := make(map[uint]bool, len(overrides))
	for _, o := range overrides {
		inactive[o.ItemID] = !o.IsActive
	}
	for i := range items {
		if inactive[items[i].ID] {
			items[i].VesselActive = false
		}
	}
	return nil
}

// GetByID loads a single item with its references and the vessel override.
func (r *ItemRepository) GetByID(ctx context.Context, id uint, vesselID *uint) (*models.Item, error) {
	var item models.Item
	err := r.preloaded(r.readOnlyDB.WithContext(ctx)).First(&item, id).Error
	if err != nil {
		return nil, notFoundOr(err, "item")
	}

	items := []models.Item{item}
	if err := r.attachVesselActive(ctx, vesselID, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create persists a new catalogue item with its tags.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(item).Error, "failed to create item")
}

// Update persists changes to an item, replacing tag associations when tags
// are supplied.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Manufacturer", "Supplier", "Category").Save(item).Error; err != nil {
			return errors.Wrap(err, "failed to update item")
		}
		if replaceTags {
			if err := tx.Model(item).Association("Tags").Replace(item.Tags); err != nil {
				return errors.Wrap(err, "failed to replace item tags")
			}
		}
		return nil
	})
}

// SetGlobalActive flips the super_admin controlled global flag.
func (r *ItemRepository) SetGlobalActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update item")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound("item")
	}
	return nil
}

// SetVesselActive upserts the per-vessel override row. It never touches the
// global flag.
func (r *ItemRepository) SetVesselActive(ctx context.Context, itemID, vesselID uint, active bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var override models.VesselItem
		err := tx.Where("vessel_id = ? AND item_id = ?", vesselID, itemID).First(&override).Error
		switch {
		case err == nil:
			override.IsActive = active
			return errors.Wrap(tx.Save(&override).Error, "failed to update vessel item override")
		case errors.Is(err, gorm.ErrRecordNotFound):
			override = models.VesselItem{VesselID: vesselID, ItemID: itemID, IsActive: active}
			return errors.Wrap(tx.Create(&override).Error, "failed to create vessel item override")
		default:
			return errors.Wrap(err, "failed to load vessel item override")
		}
	})
}

// RecentlyOrdered returns the vessel's most recently requisitioned items,
// distinct per item, newest requisition first.
func (r *ItemRepository) RecentlyOrdered(ctx context.Context, vesselID uint, limit int) ([]models.Item, error) {
	var items []models.Item
	err := r.preloaded(r.readOnlyDB.WithContext(ctx)).
		Joins(`JOIN (
			SELECT requisition_items.item_id, MAX(requisitions.created_at) AS last_ordered
			FROM requisition_items
			JOIN requisitions ON requisitions.id = requisition_items.requisition_id
			WHERE requisitions.vessel_id = ?
			GROUP BY requisition_items.item_id
		) recent ON recent.item_id = items.id`, vesselID).
		Where("items.is_active = ?", true).
		Order("recent.last_ordered DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recently ordered items")
	}

	if err := r.attachVesselActive(ctx, &vesselID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// CountActive returns the number of globally active items.
func (r *ItemRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.Item{}).
		Where("is_active = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count items")
	}
	return count, nil
}
