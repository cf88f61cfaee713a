package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/wolfeidau/leadcrm/internal/crm"
	"github.com/wolfeidau/leadcrm/internal/models"
)

type leadRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Age         int        `json:"age"`
	PhoneNumber string     `json:"phone_number"`
	Email       string     `json:"email"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	AgentID     *uuid.UUID `json:"agent_id"`

	// OrgID is accepted so forged submissions decode, but never read; leads
	// always belong to the caller's organization.
	OrgID *uuid.UUID `json:"org_id,omitempty"`
}

func (r leadRequest) input() crm.LeadInput {
	return crm.LeadInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Age:         r.Age,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		AgentID:     r.AgentID,
	}
}

type leadResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrgID       uuid.UUID  `json:"org_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Age         int        `json:"age"`
	PhoneNumber string     `json:"phone_number"`
	Email       string     `json:"email"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	AgentID     *uuid.UUID `json:"agent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toLead(l *models.Lead) leadResponse {
	return leadResponse{
		ID:          l.LeadID,
		OrgID:       l.OrgID,
		FirstName:   l.FirstName,
		LastName:    l.LastName,
		Age:         l.Age,
		PhoneNumber: l.PhoneNumber,
		Email:       l.Email,
		Description: l.Description,
		CategoryID:  l.CategoryID,
		AgentID:     l.AgentID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toLeads(leads []*models.Lead) []leadResponse {
	out := make([]leadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLead(l))
	}
	return out
}

type leadListResponse struct {
	Leads      []leadResponse `json:"leads"`
	Unassigned []leadResponse `json:"unassigned,omitempty"`
}

type assignRequest struct {
	AgentID uuid.UUID `json:"agent_id"`
}

type categoryAssignRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCategory(c *models.Category) categoryResponse {
	return categoryResponse{
		ID:        c.CategoryID,
		OrgID:     c.OrgID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type categoryListResponse struct {
	Categories      []categoryResponse `json:"categories"`
	UnassignedCount int                `json:"unassigned_count"`
}

type categoryDetailResponse struct {
	categoryResponse
	Leads []leadResponse `json:"leads"`
}

type agentRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r agentRequest) input() crm.AgentInput {
	return crm.AgentInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type agentResponse struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	OrgID       uuid.UUID `json:"org_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAgent(a *crm.AgentDetail) agentResponse {
	return agentResponse{
		ID:          a.AgentID,
		AccountID:   a.AccountID,
		OrgID:       a.OrgID,
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DisplayName: a.DisplayName(),
		CreatedAt:   a.CreatedAt,
	}
}

func toAgents(agents []*crm.AgentDetail) []agentResponse {
	out := make([]agentResponse, 0, len(agents))
	for _, a := range agents {
		out = append(out, toAgent(a))
	}
	return out
}

type signupRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Password         string `json:"password"`
	OrganizationName string `json:"organization_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Principal principalResponse `json:"principal"`
}

type principalResponse struct {
	Kind      string     `json:"kind"`
	AccountID uuid.UUID  `json:"account_id"`
	OrgID     uuid.UUID  `json:"org_id"`
	AgentID   *uuid.UUID `json:"agent_id,omitempty"`
}
