package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/models"
)

// ReferenceRepository provides access to the shared category and tag
// reference data.
type ReferenceRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *gorm.DB, readOnlyDB *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// ListCategories returns active categories ordered by name.
func (r *ReferenceRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.readOnlyDB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return categories, nil
}

// CategoryExists reports whether a category id refers to a live category.
func (r *ReferenceRepository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check category")
	}
	return count > 0, nil
}

// CreateCategory persists a new category.
func (r *ReferenceRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(category).Error, "failed to create category")
}

// ListTags returns all tags ordered by name.
func (r *ReferenceRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.readOnlyDB.WithContext(ctx).Order("name ASC").Find(&tags).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}
	return tags, nil
}

// GetTagsByIDs loads the tags with the given ids.
func (r *ReferenceRepository) GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := r.readOnlyDB.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tags")
	}
	return tags, nil
}

// CreateTag persists a new tag.
func (r *ReferenceRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(tag).Error, "failed to create tag")
}

// UpdateTag persists changes to a tag.
func (r *ReferenceRepository) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(tag).Error, "failed to update tag")
}

// DeleteTag removes a tag and its item associations.
func (r *ReferenceRepository) DeleteTag(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM item_tags WHERE tag_id = ?", id).Error; err != nil {
			return errors.Wrap(err, "failed to detach tag from items")
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to delete tag")
		}
		if res.RowsAffected == 0 {
			return notFoundOr(gorm.ErrRecordNotFound, "tag")
		}
		return nil
	})
}
