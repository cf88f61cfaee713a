package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// CategoryStore implements store.CategoryStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type CategoryStore struct {
	mu sync.RWMutex

	categories map[uuid.UUID]*models.Category // category_id -> Category

	leads *LeadStore
}

// NewCategoryStore creates a new in-memory category store. Deleting a category clears
// it from leads in the lead store.
func NewCategoryStore(leads *LeadStore) *CategoryStore {
	return &CategoryStore{
		categories: make(map[uuid.UUID]*models.Category),
		leads:      leads,
	}
}

func (s *CategoryStore) Create(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *category
	s.categories[category.CategoryID] = &clone

	return nil
}

func (s *CategoryStore) Get(ctx context.Context, orgID, categoryID uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categories[categoryID]
	if !exists || category.OrgID != orgID {
		return nil, store.ErrCategoryNotFound
	}

	clone := *category
	return &clone, nil
}

// List returns the categories of an organization ordered by name.
func (s *CategoryStore) List(ctx context.Context, orgID uuid.UUID) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Category, 0)
	for _, category := range s.categories {
		if category.OrgID != orgID {
			continue
		}
		clone := *category
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (s *CategoryStore) Update(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.categories[category.CategoryID]
	if !exists || existing.OrgID != category.OrgID {
		return store.ErrCategoryNotFound
	}

	category.UpdatedAt = time.Now()

	clone := *category
	clone.CreatedAt = existing.CreatedAt
	s.categories[category.CategoryID] = &clone

	return nil
}

func (s *CategoryStore) Delete(ctx context.Context, orgID, categoryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, exists := s.categories[categoryID]
	if !exists || category.OrgID != orgID {
		return store.ErrCategoryNotFound
	}

	s.leads.clearCategory(categoryID)
	delete(s.categories, categoryID)

	return nil
}
