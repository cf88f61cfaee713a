package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/store"
	"github.com/wolfeidau/leadcrm/internal/telemetry"
)

// LeadInput carries the writable fields of a lead.
type LeadInput struct {
	FirstName   string
	LastName    string
	Age         int
	PhoneNumber string
	Email       string
	Description string
	CategoryID  *uuid.UUID
	AgentID     *uuid.UUID
}

// LeadListing is the result of ListLeads. Unassigned is only populated for
// organisers.
type LeadListing struct {
	Leads      []*models.Lead
	Unassigned []*models.Lead
}

// ListLeads returns the assigned leads visible to the principal. Organisers also
// get the unassigned bucket of their organization.
func (s *Service) ListLeads(ctx context.Context, p access.Principal) (*LeadListing, error) {
	if err := s.authorize(ctx, p, access.OpListLeads); err != nil {
		return nil, err
	}

	leads, err := s.stores.Leads.List(ctx, access.LeadListScope(p))
	if err != nil {
		return nil, mapStoreError(err, "list leads")
	}

	listing := &LeadListing{Leads: leads}

	if access.Allowed(p, access.OpListUnassigned) {
		unassigned, err := s.stores.Leads.List(ctx, access.UnassignedScope(p))
		if err != nil {
			return nil, mapStoreError(err, "list unassigned leads")
		}
		listing.Unassigned = unassigned
	}

	return listing, nil
}

// GetLead returns a single lead in the principal's scope.
func (s *Service) GetLead(ctx context.Context, p access.Principal, leadID uuid.UUID) (*models.Lead, error) {
	if err := s.authorize(ctx, p, access.OpGetLead); err != nil {
		return nil, err
	}

	lead, err := s.stores.Leads.Get(ctx, access.LeadScope(p), leadID)
	if err != nil {
		return nil, mapStoreError(err, "get lead")
	}

	return lead, nil
}

// CreateLead creates a lead in the principal's organization. The organization
// is always the principal's own.
func (s *Service) CreateLead(ctx context.Context, p access.Principal, in LeadInput) (*models.Lead, error) {
	if err := s.authorize(ctx, p, access.OpCreateLead); err != nil {
		return nil, err
	}

	in = normalizeLead(in)
	if err := s.validateLead(ctx, p, in); err != nil {
		return nil, err
	}

	leadID, err := newID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	lead := &models.Lead{
		LeadID:      leadID,
		OrgID:       p.OrgID(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Age:         in.Age,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Description: in.Description,
		CategoryID:  copyID(in.CategoryID),
		AgentID:     copyID(in.AgentID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.stores.Leads.Create(ctx, lead); err != nil {
		return nil, mapStoreError(err, "create lead")
	}

	telemetry.GetMetrics().LeadsCreatedTotal.Add(ctx, 1)

	log.Info().
		Str("lead_id", lead.LeadID.String()).
		Str("org_id", lead.OrgID.String()).
		Bool("assigned", lead.IsAssigned()).
		Msg("Lead created")

	s.notify(ctx, notify.Message{
		Kind:    notify.KindLeadCreated,
		To:      s.leadAlertRecipient(ctx, p),
		Subject: "New Lead Created",
		Body:    fmt.Sprintf("%s %s was added to your leads. Go to the leads list to view the lead.", lead.FirstName, lead.LastName),
	})

	return lead, nil
}

// UpdateLead replaces every writable field of a lead. Organisers only.
func (s *Service) UpdateLead(ctx context.Context, p access.Principal, leadID uuid.UUID, in LeadInput) (*models.Lead, error) {
	if err := s.authorize(ctx, p, access.OpUpdateLead); err != nil {
		return nil, err
	}

	scope := access.LeadScope(p)
	lead, err := s.stores.Leads.Get(ctx, scope, leadID)
	if err != nil {
		return nil, mapStoreError(err, "update lead")
	}

	in = normalizeLead(in)
	if err := s.validateLead(ctx, p, in); err != nil {
		return nil, err
	}

	lead.FirstName = in.FirstName
	lead.LastName = in.LastName
	lead.Age = in.Age
	lead.PhoneNumber = in.PhoneNumber
	lead.Email = in.Email
	lead.Description = in.Description
	lead.CategoryID = copyID(in.CategoryID)
	lead.AgentID = copyID(in.AgentID)

	if err := s.stores.Leads.Update(ctx, scope, lead); err != nil {
		return nil, mapStoreError(err, "update lead")
	}

	log.Debug().Str("lead_id", lead.LeadID.String()).Msg("Lead updated")

	return lead, nil
}

// UpdateLeadCategory changes only the category of a lead. Agents may do this
// for leads assigned to them. A nil category makes the lead uncategorised.
func (s *Service) UpdateLeadCategory(ctx context.Context, p access.Principal, leadID uuid.UUID, categoryID *uuid.UUID) (*models.Lead, error) {
	if err := s.authorize(ctx, p, access.OpUpdateLeadCategory); err != nil {
		return nil, err
	}

	scope := access.LeadScope(p)
	lead, err := s.stores.Leads.Get(ctx, scope, leadID)
	if err != nil {
		return nil, mapStoreError(err, "update lead category")
	}

	errs := fieldErrors{}
	s.checkCategory(ctx, p, errs, categoryID)
	if err := errs.err(); err != nil {
		return nil, err
	}

	lead.CategoryID = copyID(categoryID)

	if err := s.stores.Leads.Update(ctx, scope, lead); err != nil {
		return nil, mapStoreError(err, "update lead category")
	}

	log.Debug().
		Str("lead_id", lead.LeadID.String()).
		Str("kind", string(p.Kind())).
		Msg("Lead category updated")

	return lead, nil
}

// DeleteLead removes a lead. Organisers only.
func (s *Service) DeleteLead(ctx context.Context, p access.Principal, leadID uuid.UUID) error {
	if err := s.authorize(ctx, p, access.OpDeleteLead); err != nil {
		return err
	}

	if err := s.stores.Leads.Delete(ctx, access.LeadScope(p), leadID); err != nil {
		return mapStoreError(err, "delete lead")
	}

	telemetry.GetMetrics().LeadsDeletedTotal.Add(ctx, 1)
	log.Info().Str("lead_id", leadID.String()).Msg("Lead deleted")

	return nil
}

// AssignAgent assigns a lead to an agent of the same organization. Assigning
// the current agent again is a no-op.
func (s *Service) AssignAgent(ctx context.Context, p access.Principal, leadID, agentID uuid.UUID) (*models.Lead, error) {
	if err := s.authorize(ctx, p, access.OpAssignAgent); err != nil {
		return nil, err
	}

	scope := access.LeadScope(p)
	lead, err := s.stores.Leads.Get(ctx, scope, leadID)
	if err != nil {
		return nil, mapStoreError(err, "assign agent")
	}

	agent, err := s.stores.Agents.Lookup(ctx, agentID)
	if err != nil {
		return nil, mapStoreError(err, "assign agent")
	}

	if !access.SameOrganization(p, lead.OrgID, agent.OrgID) {
		log.Warn().
			Str("lead_id", lead.LeadID.String()).
			Str("agent_id", agent.AgentID.String()).
			Str("org_id", p.OrgID().String()).
			Msg("Rejected cross-organization assignment")
		return nil, fmt.Errorf("assign agent %s to lead %s: %w", agentID, leadID, ErrIntegrityViolation)
	}

	if lead.AgentID != nil && *lead.AgentID == agentID {
		return lead, nil
	}

	lead.AgentID = &agentID
	if err := s.stores.Leads.Update(ctx, scope, lead); err != nil {
		return nil, mapStoreError(err, "assign agent")
	}

	telemetry.GetMetrics().LeadsAssignedTotal.Add(ctx, 1)
	log.Info().
		Str("lead_id", lead.LeadID.String()).
		Str("agent_id", agentID.String()).
		Msg("Lead assigned")

	return lead, nil
}

// AssignableAgents lists the agents a lead may be assigned to.
func (s *Service) AssignableAgents(ctx context.Context, p access.Principal, leadID uuid.UUID) ([]*AgentDetail, error) {
	if err := s.authorize(ctx, p, access.OpAssignAgent); err != nil {
		return nil, err
	}

	if _, err := s.stores.Leads.Get(ctx, access.LeadScope(p), leadID); err != nil {
		return nil, mapStoreError(err, "list assignable agents")
	}

	return s.listAgentDetails(ctx, p.OrgID())
}

func (s *Service) validateLead(ctx context.Context, p access.Principal, in LeadInput) error {
	errs := fieldErrors{}

	validateName(errs, "first_name", in.FirstName)
	validateName(errs, "last_name", in.LastName)
	switch {
	case in.Age < 0:
		errs.add("age", "must not be negative")
	case in.Age > maxAge:
		errs.add("age", "must be at most 150")
	}
	if utf8.RuneCountInString(in.PhoneNumber) > maxPhoneLength {
		errs.add("phone_number", "must be at most 20 characters")
	}
	validateEmail(errs, "email", in.Email, false)
	s.checkCategory(ctx, p, errs, in.CategoryID)

	if err := errs.err(); err != nil {
		return err
	}

	if in.AgentID != nil {
		return s.checkAgent(ctx, p, *in.AgentID)
	}

	return nil
}

// checkCategory records a field error unless the category is nil or belongs to
// the principal's organization.
func (s *Service) checkCategory(ctx context.Context, p access.Principal, errs fieldErrors, categoryID *uuid.UUID) {
	if categoryID == nil {
		return
	}
	if _, err := s.stores.Categories.Get(ctx, p.OrgID(), *categoryID); err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			errs.add("category", "unknown category")
			return
		}
		errs.add("category", "could not be checked")
	}
}

// checkAgent verifies an agent exists and belongs to the principal's organization.
func (s *Service) checkAgent(ctx context.Context, p access.Principal, agentID uuid.UUID) error {
	agent, err := s.stores.Agents.Lookup(ctx, agentID)
	if err != nil {
		if errors.Is(err, store.ErrAgentNotFound) {
			return &ValidationError{Fields: map[string]string{"agent": "unknown agent"}}
		}
		return mapStoreError(err, "check agent")
	}
	if !access.SameOrganization(p, agent.OrgID) {
		return fmt.Errorf("agent %s: %w", agentID, ErrIntegrityViolation)
	}
	return nil
}

func (s *Service) leadAlertRecipient(ctx context.Context, p access.Principal) string {
	if s.opts.LeadAlertRecipient != "" {
		return s.opts.LeadAlertRecipient
	}

	account, err := s.stores.Accounts.Get(ctx, p.AccountID())
	if err != nil {
		log.Warn().Err(err).Str("account_id", p.AccountID().String()).Msg("Failed to load organiser for lead alert")
		return ""
	}
	return account.Email
}

func normalizeLead(in LeadInput) LeadInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
