package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"example.com/shipstores/internal/auth"
	"example.com/shipstores/internal/domain"
	"example.com/shipstores/internal/models"
)

type referenceStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	UpdateTag(ctx context.Context, tag *models.Tag) error
	DeleteTag(ctx context.Context, id uint) error
	GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
}

// TagInput carries the writable fields of a tag.
type TagInput struct {
	Name  string
	Color string
}

// ReferenceService serves the shared category and tag reference data.
type ReferenceService struct {
	store referenceStore
}

// NewReferenceService creates a new reference data service
func NewReferenceService(store referenceStore) *ReferenceService {
	return &ReferenceService{store: store}
}

// ListCategories returns active categories for catalogue filtering.
func (s *ReferenceService) ListCategories(ctx context.Context, scope auth.Scope) ([]models.Category, error) {
	if !auth.Can(scope, auth.CapViewCatalog) {
		return nil, domain.ErrUnauthorized("view categories")
	}
	return s.store.ListCategories(ctx)
}

// CreateCategory adds a new item category.
func (s *ReferenceService) CreateCategory(ctx context.Context, scope auth.Scope, name string) (*models.Category, error) {
	if !auth.Can(scope, auth.CapManageTags) {
		return nil, domain.ErrUnauthorized("manage categories")
	}
	if name == "" {
		return nil, domain.NewError(domain.KindValidation, "category name is required")
	}

	category := &models.Category{Name: name, IsActive: true}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListTags returns all tags.
func (s *ReferenceService) ListTags(ctx context.Context, scope auth.Scope) ([]models.Tag, error) {
	if !auth.Can(scope, auth.CapViewCatalog) {
		return nil, domain.ErrUnauthorized("view tags")
	}
	return s.store.ListTags(ctx)
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a tag name.
func Slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

const defaultTagColor = "#6b7280"

// CreateTag adds a new tag with a slug derived from its name.
func (s *ReferenceService) CreateTag(ctx context.Context, scope auth.Scope, input TagInput) (*models.Tag, error) {
	if !auth.Can(scope, auth.CapManageTags) {
		return nil, domain.ErrUnauthorized("manage tags")
	}
	if input.Name == "" {
		return nil, domain.NewError(domain.KindValidation, "tag name is required")
	}

	color := input.Color
	if color == "" {
		color = defaultTagColor
	}

	tag := &models.Tag{
		Name:  input.Name,
		Slug:  Slugify(input.Name),
		Color: color,
	}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	log.Info().Str("slug", tag.Slug).Msg("tag created")
	return tag, nil
}

// UpdateTag renames or recolors a tag. The slug follows the name.
func (s *ReferenceService) UpdateTag(ctx context.Context, scope auth.Scope, id uint, input TagInput) (*models.Tag, error) {
	if !auth.Can(scope, auth.CapManageTags) {
		return nil, domain.ErrUnauthorized("manage tags")
	}
	if input.Name == "" {
		return nil, domain.NewError(domain.KindValidation, "tag name is required")
	}

	tags, err := s.store.GetTagsByIDs(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, domain.ErrNotFound("tag")
	}

	tag := tags[0]
	tag.Name = input.Name
	tag.Slug = Slugify(input.Name)
	if input.Color != "" {
		tag.Color = input.Color
	}

	if err := s.store.UpdateTag(ctx, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes a tag, detaching it from all items.
func (s *ReferenceService) DeleteTag(ctx context.Context, scope auth.Scope, id uint) error {
	if !auth.Can(scope, auth.CapManageTags) {
		return domain.ErrUnauthorized("manage tags")
	}
	return s.store.DeleteTag(ctx, id)
}
