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

// LeadStore implements store.LeadStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type LeadStore struct {
	mu sync.RWMutex

	leads map[uuid.UUID]*models.Lead // lead_id -> Lead
}

// NewLeadStore creates a new in-memory lead store.
func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[uuid.UUID]*models.Lead),
	}
}

func (s *LeadStore) Create(ctx context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads[lead.LeadID] = lead.Clone()

	return nil
}

func (s *LeadStore) Get(ctx context.Context, filter store.LeadFilter, leadID uuid.UUID) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, exists := s.leads[leadID]
	if !exists || !filter.Matches(lead) {
		return nil, store.ErrLeadNotFound
	}

	return lead.Clone(), nil
}

// Update replaces a lead matching the filter, keeping its organization and creation time.
func (s *LeadStore) Update(ctx context.Context, filter store.LeadFilter, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.leads[lead.LeadID]
	if !exists || !filter.Matches(existing) {
		return store.ErrLeadNotFound
	}

	lead.OrgID = existing.OrgID
	lead.CreatedAt = existing.CreatedAt
	lead.UpdatedAt = time.Now()

	s.leads[lead.LeadID] = lead.Clone()

	return nil
}

func (s *LeadStore) Delete(ctx context.Context, filter store.LeadFilter, leadID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, exists := s.leads[leadID]
	if !exists || !filter.Matches(lead) {
		return store.ErrLeadNotFound
	}

	delete(s.leads, leadID)

	return nil
}

// List returns the leads matching the filter ordered by creation time.
func (s *LeadStore) List(ctx context.Context, filter store.LeadFilter) ([]*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Lead, 0)
	for _, lead := range s.leads {
		if filter.Matches(lead) {
			result = append(result, lead.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].LeadID.String() < result[j].LeadID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (s *LeadStore) Count(ctx context.Context, filter store.LeadFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, lead := range s.leads {
		if filter.Matches(lead) {
			count++
		}
	}

	return count, nil
}

// unassignAgent clears the agent from all of its leads.
func (s *LeadStore) unassignAgent(agentID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, lead := range s.leads {
		if lead.AgentID != nil && *lead.AgentID == agentID {
			lead.AgentID = nil
			lead.UpdatedAt = now
		}
	}
}

// clearCategory makes all leads in a category uncategorised.
func (s *LeadStore) clearCategory(categoryID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, lead := range s.leads {
		if lead.CategoryID != nil && *lead.CategoryID == categoryID {
			lead.CategoryID = nil
			lead.UpdatedAt = now
		}
	}
}
