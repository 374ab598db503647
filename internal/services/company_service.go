package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
	"example.com/shipstores/internal/repositories"
)

type companyStore interface {
	GetByID(ctx context.Context, id uint) (*models.Company, error)
	List(ctx context.Context, filter repositories.CompanyFilter, page, pageSize int) ([]models.Company, int64, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
}

// CompanyInput carries the writable fields of a directory company.
type CompanyInput struct {
	Name           string
	Website        *string
	Email          *string
	Phone          *string
	Comments       *string
	IsManufacturer bool
	IsSupplier     bool
}

// CompanyService serves the global manufacturer and supplier directory.
// Companies are shared across all vessels.
type CompanyService struct {
	store companyStore
}

// NewCompanyService creates a new company service
func NewCompanyService(store companyStore) *CompanyService {
	return &CompanyService{store: store}
}

// List returns a page of active companies.
func (s *CompanyService) List(ctx context.Context, scope auth.Scope, filter repositories.CompanyFilter, page, pageSize int) (Page[models.Company], error) {
	if !auth.Can(scope, auth.CapManageCompanies) {
		return Page[models.Company]{}, domain.ErrUnauthorized("view companies")
	}

	page, pageSize = clampPaging(page, pageSize)
	companies, total, err := s.store.List(ctx, filter, page, pageSize)
	if err != nil {
		return Page[models.Company]{}, err
	}
	return newPage(companies, total, page, pageSize), nil
}

// Get returns one company.
func (s *CompanyService) Get(ctx context.Context, scope auth.Scope, id uint) (*models.Company, error) {
	if !auth.Can(scope, auth.CapManageCompanies) {
		return nil, domain.ErrUnauthorized("view companies")
	}
	return s.store.GetByID(ctx, id)
}

// Create adds a company to the directory. A company must hold at least one
// directory role.
func (s *CompanyService) Create(ctx context.Context, scope auth.Scope, input CompanyInput) (*models.Company, error) {
	if !auth.Can(scope, auth.CapManageCompanies) {
		return nil, domain.ErrUnauthorized("manage companies")
	}
	if input.Name == "" {
		return nil, domain.NewError(domain.KindValidation, "company name is required")
	}
	if !input.IsManufacturer && !input.IsSupplier {
		return nil, domain.NewError(domain.KindValidation, "company must be a manufacturer, a supplier, or both")
	}

	company := &models.Company{
		Name:           input.Name,
		Website:        input.Website,
		Email:          input.Email,
		Phone:          input.Phone,
		Comments:       input.Comments,
		IsManufacturer: input.IsManufacturer,
		IsSupplier:     input.IsSupplier,
		IsActive:       true,
	}

	if err := s.store.Create(ctx, company); err != nil {
		return nil, err
	}

	log.Info().Uint("company_id", company.ID).Str("name", company.Name).Msg("company created")
	return company, nil
}

// Update rewrites a company's directory entry.
func (s *CompanyService) Update(ctx context.Context, scope auth.Scope, id uint, input CompanyInput) (*models.Company, error) {
	if !auth.Can(scope, auth.CapManageCompanies) {
		return nil, domain.ErrUnauthorized("manage companies")
	}
	if input.Name == "" {
		return nil, domain.NewError(domain.KindValidation, "company name is required")
	}
	if !input.IsManufacturer && !input.IsSupplier {
		return nil, domain.NewError(domain.KindValidation, "company must be a manufacturer, a supplier, or both")
	}

	company, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	company.Name = input.Name
	company.Website = input.Website
	company.Email = input.Email
	company.Phone = input.Phone
	company.Comments = input.Comments
	company.IsManufacturer = input.IsManufacturer
	company.IsSupplier = input.IsSupplier

	if err := s.store.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// UpdateLogo stores the relative asset path of a freshly uploaded logo.
func (s *CompanyService) UpdateLogo(ctx context.Context, scope auth.Scope, id uint, relPath string) (*models.Company, error) {
	if !auth.Can(scope, auth.CapManageCompanies) {
		return nil, domain.ErrUnauthorized("manage companies")
	}

	company, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	company.LogoPath = &relPath
	if err := s.store.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}
