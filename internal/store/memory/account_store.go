package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// AccountStore implements store.AccountStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type AccountStore struct {
	mu sync.RWMutex

	accounts   map[uuid.UUID]*models.Account // account_id -> Account
	byUsername map[string]uuid.UUID          // lower(username) -> account_id
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:   make(map[uuid.UUID]*models.Account),
		byUsername: make(map[string]uuid.UUID),
	}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return nil, store.ErrAccountNotFound
	}

	clone := *account
	return &clone, nil
}

// GetByUsername retrieves an account by username (case-insensitive).
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, exists := s.byUsername[strings.ToLower(username)]
	if !exists {
		return nil, store.ErrAccountNotFound
	}

	clone := *s.accounts[accountID]
	return &clone, nil
}

// Update updates an existing account.
func (s *AccountStore) Update(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.accounts[account.AccountID]
	if !exists {
		return store.ErrAccountNotFound
	}

	oldKey := strings.ToLower(existing.Username)
	newKey := strings.ToLower(account.Username)
	if oldKey != newKey {
		if _, taken := s.byUsername[newKey]; taken {
			return store.ErrAccountAlreadyExists
		}
		delete(s.byUsername, oldKey)
		s.byUsername[newKey] = account.AccountID
	}

	account.UpdatedAt = time.Now()

	clone := *account
	clone.CreatedAt = existing.CreatedAt
	s.accounts[account.AccountID] = &clone

	return nil
}

// insert stores a new account. Callers must hold s.mu.
func (s *AccountStore) insert(account *models.Account) error {
	if _, exists := s.accounts[account.AccountID]; exists {
		return store.ErrAccountAlreadyExists
	}
	key := strings.ToLower(account.Username)
	if _, taken := s.byUsername[key]; taken {
		return store.ErrAccountAlreadyExists
	}

	clone := *account
	s.accounts[account.AccountID] = &clone
	s.byUsername[key] = account.AccountID

	return nil
}

// remove deletes an account. Callers must hold s.mu.
func (s *AccountStore) remove(accountID uuid.UUID) {
	account, exists := s.accounts[accountID]
	if !exists {
		return
	}
	delete(s.byUsername, strings.ToLower(account.Username))
	delete(s.accounts, accountID)
}
