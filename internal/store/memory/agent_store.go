package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// AgentStore implements store.AgentStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type AgentStore struct {
	mu sync.RWMutex

	agents    map[uuid.UUID]*models.Agent // agent_id -> Agent
	byAccount map[uuid.UUID]uuid.UUID     // account_id -> agent_id

	accounts *AccountStore
	leads    *LeadStore
}

// NewAgentStore creates a new in-memory agent store. Agent accounts are kept in the
// account store and deleting an agent unassigns its leads in the lead store.
func NewAgentStore(accounts *AccountStore, leads *LeadStore) *AgentStore {
	return &AgentStore{
		agents:    make(map[uuid.UUID]*models.Agent),
		byAccount: make(map[uuid.UUID]uuid.UUID),
		accounts:  accounts,
		leads:     leads,
	}
}

// CreateWithAccount stores the account and the agent together.
func (s *AgentStore) CreateWithAccount(ctx context.Context, account *models.Account, agent *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[agent.AgentID]; exists {
		return store.ErrAgentAlreadyExists
	}
	if _, exists := s.byAccount[account.AccountID]; exists {
		return store.ErrAgentAlreadyExists
	}

	s.accounts.mu.Lock()
	defer s.accounts.mu.Unlock()

	if err := s.accounts.insert(account); err != nil {
		return err
	}

	clone := *agent
	clone.AccountID = account.AccountID
	s.agents[agent.AgentID] = &clone
	s.byAccount[account.AccountID] = agent.AgentID

	return nil
}

// Get retrieves an agent by ID within an organization.
func (s *AgentStore) Get(ctx context.Context, orgID, agentID uuid.UUID) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, exists := s.agents[agentID]
	if !exists || agent.OrgID != orgID {
		return nil, store.ErrAgentNotFound
	}

	clone := *agent
	return &clone, nil
}

// Lookup retrieves an agent by ID regardless of organization.
func (s *AgentStore) Lookup(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, exists := s.agents[agentID]
	if !exists {
		return nil, store.ErrAgentNotFound
	}

	clone := *agent
	return &clone, nil
}

// GetByAccount retrieves the agent wrapping an account.
func (s *AgentStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agentID, exists := s.byAccount[accountID]
	if !exists {
		return nil, store.ErrAgentNotFound
	}

	clone := *s.agents[agentID]
	return &clone, nil
}

// List returns the agents of an organization ordered by creation time.
func (s *AgentStore) List(ctx context.Context, orgID uuid.UUID) ([]*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Agent, 0)
	for _, agent := range s.agents {
		if agent.OrgID != orgID {
			continue
		}
		clone := *agent
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].AgentID.String() < result[j].AgentID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Delete removes the agent and its account and unassigns the agent's leads.
func (s *AgentStore) Delete(ctx context.Context, orgID, agentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, exists := s.agents[agentID]
	if !exists || agent.OrgID != orgID {
		return store.ErrAgentNotFound
	}

	s.accounts.mu.Lock()
	s.accounts.remove(agent.AccountID)
	s.accounts.mu.Unlock()

	s.leads.unassignAgent(agentID)

	delete(s.byAccount, agent.AccountID)
	delete(s.agents, agentID)

	return nil
}
