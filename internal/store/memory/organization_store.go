package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // org_id -> Organization
	byOwner       map[uuid.UUID]uuid.UUID            // owner_account_id -> org_id

	accounts *AccountStore
}

// NewOrganizationStore creates a new in-memory organization store which creates
// owner accounts in the given account store.
func NewOrganizationStore(accounts *AccountStore) *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
		byOwner:       make(map[uuid.UUID]uuid.UUID),
		accounts:      accounts,
	}
}

// CreateWithOwner stores the owner account and the organization together.
func (s *OrganizationStore) CreateWithOwner(ctx context.Context, owner *models.Account, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}
	if _, exists := s.byOwner[owner.AccountID]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	s.accounts.mu.Lock()
	defer s.accounts.mu.Unlock()

	if err := s.accounts.insert(owner); err != nil {
		return err
	}

	clone := *org
	clone.OwnerAccountID = owner.AccountID
	s.organizations[org.OrgID] = &clone
	s.byOwner[owner.AccountID] = org.OrgID

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	// Clone to avoid external modifications
	clone := *org
	return &clone, nil
}

// GetByOwner retrieves the organization owned by an account.
func (s *OrganizationStore) GetByOwner(ctx context.Context, ownerAccountID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgID, exists := s.byOwner[ownerAccountID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	clone := *s.organizations[orgID]
	return &clone, nil
}

// Update updates an existing organization. The owner cannot be changed.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.organizations[org.OrgID]
	if !exists {
		return store.ErrOrganizationNotFound
	}

	org.UpdatedAt = time.Now()

	clone := *org
	clone.OwnerAccountID = existing.OwnerAccountID
	clone.CreatedAt = existing.CreatedAt
	s.organizations[org.OrgID] = &clone

	return nil
}
