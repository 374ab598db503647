package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/models"
)

// VesselRepository provides access to vessel records.
type VesselRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewVesselRepository creates a new vessel repository
func NewVesselRepository(db *gorm.DB, readOnlyDB *gorm.DB) *VesselRepository {
	return &VesselRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetByID gets a vessel by id.
func (r *VesselRepository) GetByID(ctx context.Context, id uint) (*models.Vessel, error) {
	var vessel models.Vessel
	if err := r.readOnlyDB.WithContext(ctx).First(&vessel, id).Error; err != nil {
		return nil, notFoundOr(err, "vessel")
	}
	return &vessel, nil
}

// List returns all vessels ordered by name.
func (r *VesselRepository) List(ctx context.Context) ([]models.Vessel, error) {
	var vessels []models.Vessel
	err := r.readOnlyDB.WithContext(ctx).Order("name ASC").Find(&vessels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vessels")
	}
	return vessels, nil
}

// ListActive returns active vessels, used by the public login dropdown.
func (r *VesselRepository) ListActive(ctx context.Context) ([]models.Vessel, error) {
	var vessels []models.Vessel
	err := r.readOnlyDB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&vessels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active vessels")
	}
	return vessels, nil
}

// ExistsByIMO reports whether a vessel with the given IMO number exists.
func (r *VesselRepository) ExistsByIMO(ctx context.Context, imo string) (bool, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.Vessel{}).
		Where("imo_number = ?", imo).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check IMO number")
	}
	return count > 0, nil
}

// Register creates a vessel and its initial captain account in one
// transaction. The vessel never exists without a captain.
func (r *VesselRepository) Register(ctx context.Context, vessel *models.Vessel, captain *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vessel).Error; err != nil {
			return errors.Wrap(err, "failed to create vessel")
		}
		captain.VesselID = &vessel.ID
		if err := tx.Create(captain).Error; err != nil {
			return errors.Wrap(err, "failed to create captain account")
		}
		return nil
	})
}

// Update persists header changes to a vessel.
func (r *VesselRepository) Update(ctx context.Context, vessel *models.Vessel) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(vessel).Error, "failed to update vessel")
}

// SetActive soft-toggles a vessel. Deactivation keeps all vessel data.
func (r *VesselRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Vessel{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update vessel")
	}
	if res.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "vessel")
	}
	return nil
}
