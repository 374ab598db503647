package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
)

// RequisitionFilter narrows requisition listings.
type RequisitionFilter struct {
	Status     *domain.Status
	SupplierID *uint
}

// RequisitionRepository provides access to requisition aggregates. All scoped
// reads take an optional vessel id: nil means cross-vessel (super_admin), any
// other value restricts the query to that vessel. A requisition outside the
// scope is reported as not found, never as forbidden.
type RequisitionRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewRequisitionRepository creates a new requisition repository
func NewRequisitionRepository(db *gorm.DB, readOnlyDB *gorm.DB) *RequisitionRepository {
	return &RequisitionRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

func scoped(q *gorm.DB, vesselID *uint) *gorm.DB {
	if vesselID != nil {
		q = q.Where("vessel_id = ?", *vesselID)
	}
	return q
}

// Create persists a new requisition with its initial lines.
func (r *RequisitionRepository) Create(ctx context.Context, req *models.Requisition) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return errors.Wrap(err, "failed to create requisition")
	}
	return nil
}

// GetByID loads a requisition with its lines and supplier within scope.
func (r *RequisitionRepository) GetByID(ctx context.Context, id uint, vesselID *uint) (*models.Requisition, error) {
	var req models.Requisition
	err := scoped(r.readOnlyDB.WithContext(ctx), vesselID).
		Preload("Items").
		Preload("Items.Item").
		Preload("Supplier").
		First(&req, id).Error
	if err != nil {
		return nil, notFoundOr(err, "requisition")
	}
	return &req, nil
}

// List returns a page of requisitions within scope, newest first with id as
// the tie breaker so page boundaries are stable.
func (r *RequisitionRepository) List(ctx context.Context, vesselID *uint, filter RequisitionFilter, page, pageSize int) ([]models.Requisition, int64, error) {
	q := scoped(r.readOnlyDB.WithContext(ctx).Model(&models.Requisition{}), vesselID)

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count requisitions")
	}

	var reqs []models.Requisition
	err := q.Preload("Items").
		Preload("Supplier").
		Order("created_at DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list requisitions")
	}
	return reqs, total, nil
}

// bumpVersion performs the optimistic concurrency check: the status/version
// update only matches when nobody else has written the aggregate since it was
// read. In postgres the matched row stays locked until the surrounding
// transaction commits, which serializes concurrent receipts per requisition.
func bumpVersion(tx *gorm.DB, id uint, version int, updates map[string]interface{}) error {
	updates["version"] = version + 1
	res := tx.Model(&models.Requisition{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update requisition")
	}
	if res.RowsAffected == 0 {
		return domain.NewError(domain.KindConcurrentModification, "requisition was modified concurrently, retry with fresh state")
	}
	return nil
}

// UpdateStatus applies a caller-requested status transition atomically.
func (r *RequisitionRepository) UpdateStatus(ctx context.Context, req *models.Requisition, target domain.Status, orderedAt *time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": target}
		if orderedAt != nil {
			updates["ordered_at"] = *orderedAt
		}
		return bumpVersion(tx, req.ID, req.Version, updates)
	})
}

// ReplaceDraft rewrites the header fields and the full line set of a draft.
// Old lines are dropped and recreated; received quantities restart at zero,
// which is safe because only drafts are editable and drafts cannot have
// receipts.
func (r *RequisitionRepository) ReplaceDraft(ctx context.Context, req *models.Requisition, supplierID *uint, notes *string, lines []models.RequisitionItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if supplierID != nil {
			updates["supplier_id"] = *supplierID
		}
		if notes != nil {
			updates["notes"] = *notes
		}
		if err := bumpVersion(tx, req.ID, req.Version, updates); err != nil {
			return err
		}

		if lines == nil {
			return nil
		}

		if err := tx.Where("requisition_id = ?", req.ID).Delete(&models.RequisitionItem{}).Error; err != nil {
			return errors.Wrap(err, "failed to clear requisition lines")
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].RequisitionID = req.ID
			lines[i].ReceivedQty = 0
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return errors.Wrap(err, "failed to create requisition lines")
			}
		}
		return nil
	})
}

// AddLine appends a line to a draft, merging quantity into an existing line
// for the same catalogue item.
func (r *RequisitionRepository) AddLine(ctx context.Context, req *models.Requisition, itemID uint, qty int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, req.ID, req.Version, map[string]interface{}{}); err != nil {
			return err
		}

		for _, line := range req.Items {
			if line.ItemID == itemID {
				return errors.Wrap(
					tx.Model(&models.RequisitionItem{}).
						Where("id = ?", line.ID).
						Update("quantity", gorm.Expr("quantity + ?", qty)).Error,
					"failed to merge requisition line")
			}
		}

		line := models.RequisitionItem{RequisitionID: req.ID, ItemID: itemID, Quantity: qty}
		return errors.Wrap(tx.Create(&line).Error, "failed to add requisition line")
	})
}

// ApplyReceipt posts a receipt against one line and writes the recomputed
// status in the same transaction, so no concurrent reader can observe the
// quantity without the matching status.
func (r *RequisitionRepository) ApplyReceipt(ctx context.Context, req *models.Requisition, lineID uint, qty int, newStatus domain.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, req.ID, req.Version, map[string]interface{}{"status": newStatus}); err != nil {
			return err
		}

		res := tx.Model(&models.RequisitionItem{}).
			Where("id = ? AND requisition_id = ?", lineID, req.ID).
			Update("received_qty", gorm.Expr("received_qty + ?", qty))
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to update received quantity")
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound("requisition item")
		}
		return nil
	})
}

// Delete removes a requisition and its lines.
func (r *RequisitionRepository) Delete(ctx context.Context, req *models.Requisition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("requisition_id = ?", req.ID).Delete(&models.RequisitionItem{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete requisition lines")
		}
		return errors.Wrap(tx.Delete(&models.Requisition{}, req.ID).Error, "failed to delete requisition")
	})
}

// ListOpen returns requisitions in a receivable status, used by the worker's
// status consistency audit.
func (r *RequisitionRepository) ListOpen(ctx context.Context, limit int) ([]models.Requisition, error) {
	var reqs []models.Requisition
	err := r.readOnlyDB.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", []domain.Status{domain.StatusOrdered, domain.StatusPartiallyReceived}).
		Order("id ASC").
		Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list open requisitions")
	}
	return reqs, nil
}

// CountByVessel returns the number of requisitions owned by a vessel.
func (r *RequisitionRepository) CountByVessel(ctx context.Context, vesselID uint) (int64, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.Requisition{}).
		Where("vessel_id = ?", vesselID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count requisitions")
	}
	return count, nil
}
