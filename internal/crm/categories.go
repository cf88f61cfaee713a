package crm

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/models"
)

// CategoryDetail is a category together with the leads in it that the
// principal can see.
type CategoryDetail struct {
	Category *models.Category
	Leads    []*models.Lead
}

// ListCategories returns every category of the principal's organization.
func (s *Service) ListCategories(ctx context.Context, p access.Principal) ([]*models.Category, error) {
	if err := s.authorize(ctx, p, access.OpListCategories); err != nil {
		return nil, err
	}

	categories, err := s.stores.Categories.List(ctx, p.OrgID())
	if err != nil {
		return nil, mapStoreError(err, "list categories")
	}

	return categories, nil
}

// GetCategory returns a category of the principal's organization and the
// visible leads in it. Agents only see their own leads.
func (s *Service) GetCategory(ctx context.Context, p access.Principal, categoryID uuid.UUID) (*CategoryDetail, error) {
	if err := s.authorize(ctx, p, access.OpGetCategory); err != nil {
		return nil, err
	}

	category, err := s.stores.Categories.Get(ctx, p.OrgID(), categoryID)
	if err != nil {
		return nil, mapStoreError(err, "get category")
	}

	leads, err := s.stores.Leads.List(ctx, access.CategoryLeadScope(p, categoryID))
	if err != nil {
		return nil, mapStoreError(err, "list category leads")
	}

	return &CategoryDetail{Category: category, Leads: leads}, nil
}

// UnassignedCount returns the number of leads without a category in the
// principal's organization.
func (s *Service) UnassignedCount(ctx context.Context, p access.Principal) (int, error) {
	if err := s.authorize(ctx, p, access.OpCountUnassigned); err != nil {
		return 0, err
	}

	count, err := s.stores.Leads.Count(ctx, access.UncategorisedScope(p))
	if err != nil {
		return 0, mapStoreError(err, "count uncategorised leads")
	}

	return count, nil
}

// CreateCategory adds a category to the principal's organization.
func (s *Service) CreateCategory(ctx context.Context, p access.Principal, name string) (*models.Category, error) {
	if err := s.authorize(ctx, p, access.OpManageCategory); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	errs := fieldErrors{}
	validateCategoryName(errs, name)
	if err := errs.err(); err != nil {
		return nil, err
	}

	categoryID, err := newID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	category := &models.Category{
		CategoryID: categoryID,
		OrgID:      p.OrgID(),
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.stores.Categories.Create(ctx, category); err != nil {
		return nil, mapStoreError(err, "create category")
	}

	log.Info().
		Str("category_id", category.CategoryID.String()).
		Str("name", category.Name).
		Msg("Category created")

	return category, nil
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, p access.Principal, categoryID uuid.UUID, name string) (*models.Category, error) {
	if err := s.authorize(ctx, p, access.OpManageCategory); err != nil {
		return nil, err
	}

	category, err := s.stores.Categories.Get(ctx, p.OrgID(), categoryID)
	if err != nil {
		return nil, mapStoreError(err, "update category")
	}

	name = strings.TrimSpace(name)
	errs := fieldErrors{}
	validateCategoryName(errs, name)
	if err := errs.err(); err != nil {
		return nil, err
	}

	category.Name = name
	category.UpdatedAt = s.now()

	if err := s.stores.Categories.Update(ctx, category); err != nil {
		return nil, mapStoreError(err, "update category")
	}

	return category, nil
}

// DeleteCategory removes a category. Its leads become uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, p access.Principal, categoryID uuid.UUID) error {
	if err := s.authorize(ctx, p, access.OpManageCategory); err != nil {
		return err
	}

	if err := s.stores.Categories.Delete(ctx, p.OrgID(), categoryID); err != nil {
		return mapStoreError(err, "delete category")
	}

	log.Info().Str("category_id", categoryID.String()).Msg("Category deleted")

	return nil
}
