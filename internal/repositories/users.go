package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/models"
)

// UserRepository provides access to user accounts.
type UserRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, readOnlyDB *gorm.DB) *UserRepository {
	return &UserRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetByID gets a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.readOnlyDB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// GetByUsername gets a user by username within a vessel. vesselID nil matches
// the cross-vessel administrator accounts.
func (r *UserRepository) GetByUsername(ctx context.Context, username string, vesselID *uint) (*models.User, error) {
	q := r.readOnlyDB.WithContext(ctx).Where("username = ?", username)
	if vesselID == nil {
		q = q.Where("vessel_id IS NULL")
	} else {
		q = q.Where("vessel_id = ?", *vesselID)
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// UsernameTaken reports whether a username is already in use.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check username")
	}
	return count > 0, nil
}

// ListByVessel returns all accounts of a vessel ordered by full name.
func (r *UserRepository) ListByVessel(ctx context.Context, vesselID uint) ([]models.User, error) {
	var users []models.User
	err := r.readOnlyDB.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("full_name ASC").
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

// CountByVessel returns the number of accounts belonging to a vessel.
func (r *UserRepository) CountByVessel(ctx context.Context, vesselID uint) (int64, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.User{}).
		Where("vessel_id = ?", vesselID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return count, nil
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(user).Error, "failed to create user")
}

// Update persists changes to a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(user).Error, "failed to update user")
}
