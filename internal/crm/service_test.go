package crm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/store"
	"github.com/wolfeidau/leadcrm/internal/store/memory"
)

type outbox struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (o *outbox) Notify(_ context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) sent() []notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]notify.Message(nil), o.messages...)
}

type fixture struct {
	svc    *Service
	stores store.Stores
	outbox *outbox

	orgA access.Principal
	orgB access.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stores := memory.NewStores()
	out := &outbox{}
	svc := NewService(stores, out, auth.NewPasswordHasher(bcrypt.MinCost), Options{})

	ctx := context.Background()
	orgA, _, err := svc.SignupOrganiser(ctx, SignupInput{
		Username: "o1", Email: "o1@example.com", Password: "correct-horse", OrganizationName: "Org A",
	})
	require.NoError(t, err)

	orgB, _, err := svc.SignupOrganiser(ctx, SignupInput{
		Username: "o2", Email: "o2@example.com", Password: "correct-horse", OrganizationName: "Org B",
	})
	require.NoError(t, err)

	return &fixture{svc: svc, stores: stores, outbox: out, orgA: orgA, orgB: orgB}
}

func (f *fixture) agent(t *testing.T, organiser access.Principal, username string) access.Principal {
	t.Helper()

	detail, err := f.svc.CreateAgent(context.Background(), organiser, AgentInput{
		Username: username, Email: username + "@example.com", FirstName: "Agent", LastName: username,
	})
	require.NoError(t, err)

	return access.Agent(detail.AccountID, detail.AgentID, detail.OrgID)
}

func (f *fixture) lead(t *testing.T, organiser access.Principal, first string) *models.Lead {
	t.Helper()

	lead, err := f.svc.CreateLead(context.Background(), organiser, LeadInput{FirstName: first, LastName: "Doe", Age: 30})
	require.NoError(t, err)
	return lead
}

func (f *fixture) category(t *testing.T, organiser access.Principal, name string) *models.Category {
	t.Helper()

	category, err := f.svc.CreateCategory(context.Background(), organiser, name)
	require.NoError(t, err)
	return category
}

func agentID(p access.Principal) uuid.UUID {
	id, _ := p.AgentID()
	return id
}

func leadIDs(leads []*models.Lead) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.LeadID)
	}
	return ids
}

func TestOrganiserCreatesLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, f.orgA, LeadInput{
		FirstName: "Jane", LastName: "Doe", Age: 30, Email: "jane@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, f.orgA.OrgID(), lead.OrgID)
	require.Nil(t, lead.AgentID)
	require.Nil(t, lead.CategoryID)

	listing, err := f.svc.ListLeads(ctx, f.orgA)
	require.NoError(t, err)
	require.Empty(t, listing.Leads)
	require.Equal(t, []uuid.UUID{lead.LeadID}, leadIDs(listing.Unassigned))

	sent := f.outbox.sent()
	require.Len(t, sent, 1)
	require.Equal(t, notify.KindLeadCreated, sent[0].Kind)
	require.Equal(t, "o1@example.com", sent[0].To)

	t.Run("other organization cannot see it", func(t *testing.T) {
		_, err := f.svc.GetLead(ctx, f.orgB, lead.LeadID)
		require.ErrorIs(t, err, ErrNotFound)

		listing, err := f.svc.ListLeads(ctx, f.orgB)
		require.NoError(t, err)
		require.Empty(t, listing.Leads)
		require.Empty(t, listing.Unassigned)
	})
}

func TestCreateLeadUsesConfiguredAlertRecipient(t *testing.T) {
	stores := memory.NewStores()
	out := &outbox{}
	svc := NewService(stores, out, auth.NewPasswordHasher(bcrypt.MinCost), Options{LeadAlertRecipient: "sales@example.com"})

	org, _, err := svc.SignupOrganiser(context.Background(), SignupInput{Username: "o1", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.CreateLead(context.Background(), org, LeadInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	require.Equal(t, "sales@example.com", out.sent()[0].To)
}

func TestAssignAgentScopesAgentLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	a2 := f.agent(t, f.orgA, "a2")
	lead := f.lead(t, f.orgA, "Jane")

	assigned, err := f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, agentID(a1))
	require.NoError(t, err)
	require.Equal(t, agentID(a1), *assigned.AgentID)

	a1Leads, err := f.svc.ListLeads(ctx, a1)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{lead.LeadID}, leadIDs(a1Leads.Leads))
	require.Nil(t, a1Leads.Unassigned)

	a2Leads, err := f.svc.ListLeads(ctx, a2)
	require.NoError(t, err)
	require.Empty(t, a2Leads.Leads)

	orgLeads, err := f.svc.ListLeads(ctx, f.orgA)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{lead.LeadID}, leadIDs(orgLeads.Leads))
	require.Empty(t, orgLeads.Unassigned)

	_, err = f.svc.GetLead(ctx, a1, lead.LeadID)
	require.NoError(t, err)

	_, err = f.svc.GetLead(ctx, a2, lead.LeadID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAgentCategoryUpdateScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	a2 := f.agent(t, f.orgA, "a2")
	contacted := f.category(t, f.orgA, "Contacted")
	lead := f.lead(t, f.orgA, "Jane")

	_, err := f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, agentID(a1))
	require.NoError(t, err)

	t.Run("unassigned agent gets not found", func(t *testing.T) {
		_, err := f.svc.UpdateLeadCategory(ctx, a2, lead.LeadID, &contacted.CategoryID)
		require.ErrorIs(t, err, ErrNotFound)

		stored, err := f.svc.GetLead(ctx, f.orgA, lead.LeadID)
		require.NoError(t, err)
		require.Nil(t, stored.CategoryID)
	})

	t.Run("assigned agent may update", func(t *testing.T) {
		updated, err := f.svc.UpdateLeadCategory(ctx, a1, lead.LeadID, &contacted.CategoryID)
		require.NoError(t, err)
		require.Equal(t, contacted.CategoryID, *updated.CategoryID)
		require.Equal(t, agentID(a1), *updated.AgentID)
	})

	t.Run("foreign category is rejected", func(t *testing.T) {
		foreign := f.category(t, f.orgB, "Converted")

		_, err := f.svc.UpdateLeadCategory(ctx, a1, lead.LeadID, &foreign.CategoryID)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "category")
	})

	t.Run("agent may clear category", func(t *testing.T) {
		updated, err := f.svc.UpdateLeadCategory(ctx, a1, lead.LeadID, nil)
		require.NoError(t, err)
		require.Nil(t, updated.CategoryID)
	})
}

func TestCreateAgentNotificationFailureKeepsAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.outbox.err = errors.New("smtp relay down")

	detail, err := f.svc.CreateAgent(ctx, f.orgA, AgentInput{Username: "a1", Email: "a1@example.com"})
	require.NoError(t, err)
	require.Equal(t, f.orgA.OrgID(), detail.OrgID)

	agents, err := f.svc.ListAgents(ctx, f.orgA)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, detail.AgentID, agents[0].AgentID)

	account, err := f.stores.Accounts.Get(ctx, detail.AccountID)
	require.NoError(t, err)
	require.True(t, account.IsAgent)
	require.False(t, account.IsOrganiser)
	require.NotEmpty(t, account.PasswordHash)
}

func TestCreateAgentSendsInvitation(t *testing.T) {
	f := newFixture(t)

	f.agent(t, f.orgA, "a1")

	sent := f.outbox.sent()
	require.Len(t, sent, 1)
	require.Equal(t, notify.KindAgentInvited, sent[0].Kind)
	require.Equal(t, "a1@example.com", sent[0].To)
	require.Equal(t, "You are invited to be an agent!", sent[0].Subject)
}

func TestCreateAgentIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.agent(t, f.orgA, "a1")

	_, err := f.svc.CreateAgent(ctx, f.orgA, AgentInput{Username: "A1", Email: "other@example.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "username")

	agents, err := f.svc.ListAgents(ctx, f.orgA)
	require.NoError(t, err)
	require.Len(t, agents, 1)
}

func TestCrossTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	leadA := f.lead(t, f.orgA, "Jane")
	agentA := f.agent(t, f.orgA, "a1")
	agentB := f.agent(t, f.orgB, "b1")
	categoryA := f.category(t, f.orgA, "Contacted")

	tests := []struct {
		name string
		call func() error
	}{
		{"get lead", func() error { _, err := f.svc.GetLead(ctx, f.orgB, leadA.LeadID); return err }},
		{"update lead", func() error {
			_, err := f.svc.UpdateLead(ctx, f.orgB, leadA.LeadID, LeadInput{FirstName: "X", LastName: "Y"})
			return err
		}},
		{"update category", func() error { _, err := f.svc.UpdateLeadCategory(ctx, f.orgB, leadA.LeadID, nil); return err }},
		{"delete lead", func() error { return f.svc.DeleteLead(ctx, f.orgB, leadA.LeadID) }},
		{"assign agent", func() error { _, err := f.svc.AssignAgent(ctx, f.orgB, leadA.LeadID, agentID(agentB)); return err }},
		{"assignable agents", func() error { _, err := f.svc.AssignableAgents(ctx, f.orgB, leadA.LeadID); return err }},
		{"get agent", func() error { _, err := f.svc.GetAgent(ctx, f.orgB, agentID(agentA)); return err }},
		{"update agent", func() error {
			_, err := f.svc.UpdateAgent(ctx, f.orgB, agentID(agentA), AgentInput{Username: "x", Email: "x@example.com"})
			return err
		}},
		{"delete agent", func() error { return f.svc.DeleteAgent(ctx, f.orgB, agentID(agentA)) }},
		{"get category", func() error { _, err := f.svc.GetCategory(ctx, f.orgB, categoryA.CategoryID); return err }},
		{"rename category", func() error { _, err := f.svc.UpdateCategory(ctx, f.orgB, categoryA.CategoryID, "Mine"); return err }},
		{"delete category", func() error { return f.svc.DeleteCategory(ctx, f.orgB, categoryA.CategoryID) }},
		{"agent of other org gets lead", func() error { _, err := f.svc.GetLead(ctx, agentB, leadA.LeadID); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), ErrNotFound)
		})
	}

	stored, err := f.svc.GetLead(ctx, f.orgA, leadA.LeadID)
	require.NoError(t, err)
	require.Equal(t, "Jane", stored.FirstName)

	agents, err := f.svc.ListAgents(ctx, f.orgB)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, agentID(agentB), agents[0].AgentID)

	categories, err := f.svc.ListCategories(ctx, f.orgB)
	require.NoError(t, err)
	require.Empty(t, categories)
}

func TestCrossOrganizationAssignmentIsIntegrityViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead := f.lead(t, f.orgA, "Jane")
	foreign := f.agent(t, f.orgB, "b1")

	_, err := f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, agentID(foreign))
	require.ErrorIs(t, err, ErrIntegrityViolation)

	_, err = f.svc.UpdateLead(ctx, f.orgA, lead.LeadID, LeadInput{FirstName: "Jane", LastName: "Doe", AgentID: ptr(agentID(foreign))})
	require.ErrorIs(t, err, ErrIntegrityViolation)

	_, err = f.svc.CreateLead(ctx, f.orgA, LeadInput{FirstName: "John", LastName: "Doe", AgentID: ptr(agentID(foreign))})
	require.ErrorIs(t, err, ErrIntegrityViolation)

	stored, err := f.svc.GetLead(ctx, f.orgA, lead.LeadID)
	require.NoError(t, err)
	require.Nil(t, stored.AgentID)

	_, err = f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAssignAgentIsIdempotent(t *testing.T) {
	stores := memory.NewStores()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewService(stores, nil, auth.NewPasswordHasher(bcrypt.MinCost), Options{Now: func() time.Time { return clock }})
	f := &fixture{svc: svc, stores: stores, outbox: &outbox{}}

	ctx := context.Background()
	org, _, err := svc.SignupOrganiser(ctx, SignupInput{Username: "o1", Password: "correct-horse"})
	require.NoError(t, err)

	a1 := f.agent(t, org, "a1")
	lead := f.lead(t, org, "Jane")

	first, err := svc.AssignAgent(ctx, org, lead.LeadID, agentID(a1))
	require.NoError(t, err)

	second, err := svc.AssignAgent(ctx, org, lead.LeadID, agentID(a1))
	require.NoError(t, err)

	require.Equal(t, first.AgentID, second.AgentID)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)

	listing, err := svc.ListLeads(ctx, a1)
	require.NoError(t, err)
	require.Len(t, listing.Leads, 1)
}

func TestAgentOperationsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	lead := f.lead(t, f.orgA, "Jane")
	_, err := f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, agentID(a1))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"create lead", func() error {
			_, err := f.svc.CreateLead(ctx, a1, LeadInput{FirstName: "X", LastName: "Y"})
			return err
		}},
		{"update lead", func() error {
			_, err := f.svc.UpdateLead(ctx, a1, lead.LeadID, LeadInput{FirstName: "X", LastName: "Y"})
			return err
		}},
		{"delete lead", func() error { return f.svc.DeleteLead(ctx, a1, lead.LeadID) }},
		{"assign agent", func() error { _, err := f.svc.AssignAgent(ctx, a1, lead.LeadID, agentID(a1)); return err }},
		{"assignable agents", func() error { _, err := f.svc.AssignableAgents(ctx, a1, lead.LeadID); return err }},
		{"create agent", func() error {
			_, err := f.svc.CreateAgent(ctx, a1, AgentInput{Username: "a9", Email: "a9@example.com"})
			return err
		}},
		{"list agents", func() error { _, err := f.svc.ListAgents(ctx, a1); return err }},
		{"delete agent", func() error { return f.svc.DeleteAgent(ctx, a1, agentID(a1)) }},
		{"create category", func() error { _, err := f.svc.CreateCategory(ctx, a1, "Mine"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), ErrForbidden)
		})
	}

	stored, err := f.svc.GetLead(ctx, f.orgA, lead.LeadID)
	require.NoError(t, err)
	require.Equal(t, "Jane", stored.FirstName)
}

func TestInvalidPrincipalIsForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListLeads(context.Background(), access.Principal{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UnassignedCount(context.Background(), access.Principal{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUnassignedCountIsOrganizationWide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	a2 := f.agent(t, f.orgA, "a2")
	contacted := f.category(t, f.orgA, "Contacted")

	l1 := f.lead(t, f.orgA, "One")
	l2 := f.lead(t, f.orgA, "Two")
	f.lead(t, f.orgA, "Three")
	f.lead(t, f.orgB, "Foreign")

	_, err := f.svc.AssignAgent(ctx, f.orgA, l1.LeadID, agentID(a1))
	require.NoError(t, err)
	_, err = f.svc.UpdateLeadCategory(ctx, a1, l1.LeadID, &contacted.CategoryID)
	require.NoError(t, err)
	_, err = f.svc.AssignAgent(ctx, f.orgA, l2.LeadID, agentID(a2))
	require.NoError(t, err)

	for _, p := range []access.Principal{f.orgA, a1, a2} {
		count, err := f.svc.UnassignedCount(ctx, p)
		require.NoError(t, err)
		require.Equal(t, 2, count, "principal %s", p.Kind())
	}

	count, err := f.svc.UnassignedCount(ctx, f.orgB)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestAgentListMatchesAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agents := []access.Principal{f.agent(t, f.orgA, "a1"), f.agent(t, f.orgA, "a2"), f.agent(t, f.orgA, "a3")}
	foreign := f.agent(t, f.orgB, "b1")

	var all []*models.Lead
	for i := 0; i < 9; i++ {
		lead := f.lead(t, f.orgA, "Lead")
		if i%4 != 3 {
			lead, _ = f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, agentID(agents[i%3]))
		}
		all = append(all, lead)
	}
	f.lead(t, f.orgB, "Foreign")

	for _, a := range agents {
		listing, err := f.svc.ListLeads(ctx, a)
		require.NoError(t, err)

		var want []uuid.UUID
		for _, l := range all {
			if l.AgentID != nil && *l.AgentID == agentID(a) && l.OrgID == a.OrgID() {
				want = append(want, l.LeadID)
			}
		}
		require.ElementsMatch(t, want, leadIDs(listing.Leads))
	}

	listing, err := f.svc.ListLeads(ctx, foreign)
	require.NoError(t, err)
	require.Empty(t, listing.Leads)
}

func TestLeadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	foreign := f.category(t, f.orgB, "Foreign")

	tests := []struct {
		name  string
		in    LeadInput
		field string
	}{
		{"missing first name", LeadInput{LastName: "Doe"}, "first_name"},
		{"blank last name", LeadInput{FirstName: "Jane", LastName: "   "}, "last_name"},
		{"long first name", LeadInput{FirstName: "Janeeeeeeeeeeeeeeeeee", LastName: "Doe"}, "first_name"},
		{"negative age", LeadInput{FirstName: "Jane", LastName: "Doe", Age: -1}, "age"},
		{"age too large", LeadInput{FirstName: "Jane", LastName: "Doe", Age: 151}, "age"},
		{"bad email", LeadInput{FirstName: "Jane", LastName: "Doe", Email: "not-an-email"}, "email"},
		{"foreign category", LeadInput{FirstName: "Jane", LastName: "Doe", CategoryID: &foreign.CategoryID}, "category"},
		{"unknown agent", LeadInput{FirstName: "Jane", LastName: "Doe", AgentID: ptr(uuid.New())}, "agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateLead(ctx, f.orgA, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tt.field)
		})
	}

	count, err := f.stores.Leads.Count(ctx, store.LeadFilter{OrgID: f.orgA.OrgID()})
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, f.outbox.sent())
}

func TestUpdateLeadKeepsOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	category := f.category(t, f.orgA, "Contacted")
	lead := f.lead(t, f.orgA, "Jane")

	updated, err := f.svc.UpdateLead(ctx, f.orgA, lead.LeadID, LeadInput{
		FirstName: "Janet", LastName: "Doe", Age: 31, PhoneNumber: "0400000000",
		Email: "janet@example.com", Description: "Met at expo",
		CategoryID: &category.CategoryID, AgentID: ptr(agentID(a1)),
	})
	require.NoError(t, err)
	require.Equal(t, f.orgA.OrgID(), updated.OrgID)
	require.Equal(t, lead.CreatedAt, updated.CreatedAt)

	stored, err := f.svc.GetLead(ctx, a1, lead.LeadID)
	require.NoError(t, err)
	require.Equal(t, "Janet", stored.FirstName)
	require.Equal(t, 31, stored.Age)
	require.Equal(t, category.CategoryID, *stored.CategoryID)
}

func TestDeleteLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead := f.lead(t, f.orgA, "Jane")

	require.NoError(t, f.svc.DeleteLead(ctx, f.orgA, lead.LeadID))
	require.ErrorIs(t, f.svc.DeleteLead(ctx, f.orgA, lead.LeadID), ErrNotFound)

	_, err := f.svc.GetLead(ctx, f.orgA, lead.LeadID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAssignableAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	a2 := f.agent(t, f.orgA, "a2")
	f.agent(t, f.orgB, "b1")
	lead := f.lead(t, f.orgA, "Jane")

	candidates, err := f.svc.AssignableAgents(ctx, f.orgA, lead.LeadID)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		require.Equal(t, f.orgA.OrgID(), c.OrgID)
		ids = append(ids, c.AgentID)
	}
	require.ElementsMatch(t, []uuid.UUID{agentID(a1), agentID(a2)}, ids)
}

func TestCategoryDetailScopesLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	a2 := f.agent(t, f.orgA, "a2")
	category := f.category(t, f.orgA, "Contacted")

	mine := f.lead(t, f.orgA, "Mine")
	theirs := f.lead(t, f.orgA, "Theirs")
	for lead, agent := range map[uuid.UUID]access.Principal{mine.LeadID: a1, theirs.LeadID: a2} {
		_, err := f.svc.AssignAgent(ctx, f.orgA, lead, agentID(agent))
		require.NoError(t, err)
		_, err = f.svc.UpdateLeadCategory(ctx, f.orgA, lead, &category.CategoryID)
		require.NoError(t, err)
	}

	detail, err := f.svc.GetCategory(ctx, a1, category.CategoryID)
	require.NoError(t, err)
	require.Equal(t, "Contacted", detail.Category.Name)
	require.Equal(t, []uuid.UUID{mine.LeadID}, leadIDs(detail.Leads))

	detail, err = f.svc.GetCategory(ctx, f.orgA, category.CategoryID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{mine.LeadID, theirs.LeadID}, leadIDs(detail.Leads))

	categories, err := f.svc.ListCategories(ctx, a2)
	require.NoError(t, err)
	require.Len(t, categories, 1)
}

func TestCategoryManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category := f.category(t, f.orgA, "Contacted")
	lead, err := f.svc.CreateLead(ctx, f.orgA, LeadInput{FirstName: "Jane", LastName: "Doe", CategoryID: &category.CategoryID})
	require.NoError(t, err)

	renamed, err := f.svc.UpdateCategory(ctx, f.orgA, category.CategoryID, "Converted")
	require.NoError(t, err)
	require.Equal(t, "Converted", renamed.Name)

	_, err = f.svc.UpdateCategory(ctx, f.orgA, category.CategoryID, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	count, err := f.svc.UnassignedCount(ctx, f.orgA)
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.orgA, category.CategoryID))

	stored, err := f.svc.GetLead(ctx, f.orgA, lead.LeadID)
	require.NoError(t, err)
	require.Nil(t, stored.CategoryID)

	count, err = f.svc.UnassignedCount(ctx, f.orgA)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUpdateAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	f.agent(t, f.orgA, "a2")

	detail, err := f.svc.UpdateAgent(ctx, f.orgA, agentID(a1), AgentInput{
		Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", detail.Username)
	require.Equal(t, "Alice Smith", detail.DisplayName())

	got, err := f.svc.GetAgent(ctx, f.orgA, agentID(a1))
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Email)

	_, err = f.svc.UpdateAgent(ctx, f.orgA, agentID(a1), AgentInput{Username: "a2", Email: "alice@example.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "username")
}

func TestAgentNameLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("multibyte names count characters", func(t *testing.T) {
		name := strings.Repeat("é", 150)
		detail, err := f.svc.CreateAgent(ctx, f.orgA, AgentInput{Username: "a7", Email: "a7@example.com", FirstName: name, LastName: name})
		require.NoError(t, err)
		require.Equal(t, name, detail.FirstName)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := f.svc.CreateAgent(ctx, f.orgA, AgentInput{Username: "a8", Email: "a8@example.com", LastName: strings.Repeat("x", 151)})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "last_name")
		require.NotContains(t, verr.Fields, "first_name")
	})
}

func TestDeleteAgentUnassignsLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.agent(t, f.orgA, "a1")
	lead := f.lead(t, f.orgA, "Jane")
	_, err := f.svc.AssignAgent(ctx, f.orgA, lead.LeadID, agentID(a1))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAgent(ctx, f.orgA, agentID(a1)))

	_, err = f.stores.Accounts.Get(ctx, a1.AccountID())
	require.ErrorIs(t, err, store.ErrAccountNotFound)

	listing, err := f.svc.ListLeads(ctx, f.orgA)
	require.NoError(t, err)
	require.Empty(t, listing.Leads)
	require.Equal(t, []uuid.UUID{lead.LeadID}, leadIDs(listing.Unassigned))

	_, err = f.svc.GetAgent(ctx, f.orgA, agentID(a1))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSignupOrganiser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("duplicate username", func(t *testing.T) {
		_, _, err := f.svc.SignupOrganiser(ctx, SignupInput{Username: "O1", Password: "correct-horse"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "username")
	})

	t.Run("short password", func(t *testing.T) {
		_, _, err := f.svc.SignupOrganiser(ctx, SignupInput{Username: "o3", Password: "short"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "password")
	})

	t.Run("organization defaults to username", func(t *testing.T) {
		p, org, err := f.svc.SignupOrganiser(ctx, SignupInput{Username: "o3", Password: "correct-horse"})
		require.NoError(t, err)
		require.True(t, p.IsOrganiser())
		require.Equal(t, "o3", org.Name)
		require.Equal(t, p.AccountID(), org.OwnerAccountID)

		resolved, err := auth.NewPrincipalResolver(f.stores).Resolve(ctx, p.AccountID())
		require.NoError(t, err)
		require.Equal(t, p, resolved)
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"last_name": "is required", "age": "must not be negative"}}
	require.Equal(t, "validation failed: age: must not be negative, last_name: is required", err.Error())
}

func ptr[T any](v T) *T {
	return &v
}
