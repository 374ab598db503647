package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/shipstores/internal/models"
)

// CompanyFilter narrows company listings by directory role.
type CompanyFilter struct {
	ManufacturersOnly bool
	SuppliersOnly     bool
	Search            string
}

// CompanyRepository provides access to the global company directory.
// Companies are shared across vessels, not tenant-scoped.
type CompanyRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB, readOnlyDB *gorm.DB) *CompanyRepository {
	return &CompanyRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// GetByID gets a company by id.
func (r *CompanyRepository) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := r.readOnlyDB.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, notFoundOr(err, "company")
	}
	return &company, nil
}

// List returns companies matching the filter, ordered by name with id as the
// tie breaker.
func (r *CompanyRepository) List(ctx context.Context, filter CompanyFilter, page, pageSize int) ([]models.Company, int64, error) {
	q := r.readOnlyDB.WithContext(ctx).Model(&models.Company{}).Where("is_active = ?", true)

	if filter.ManufacturersOnly {
		q = q.Where("is_manufacturer = ?", true)
	}
	if filter.SuppliersOnly {
		q = q.Where("is_supplier = ?", true)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count companies")
	}

	var companies []models.Company
	err := q.Order("name ASC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&companies).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list companies")
	}
	return companies, total, nil
}

// Create persists a new company.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(company).Error, "failed to create company")
}

// Update persists changes to a company.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(company).Error, "failed to update company")
}
