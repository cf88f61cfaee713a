package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/leadcrm/internal/models"
)

func lead(orgID uuid.UUID, agentID, categoryID *uuid.UUID) *models.Lead {
	return &models.Lead{LeadID: uuid.New(), OrgID: orgID, AgentID: agentID, CategoryID: categoryID}
}

func TestScopes(t *testing.T) {
	orgID, otherOrg := uuid.New(), uuid.New()
	a1, a2 := uuid.New(), uuid.New()
	category := uuid.New()

	organiser := Organiser(uuid.New(), orgID)
	agent := Agent(uuid.New(), a1, orgID)

	unassigned := lead(orgID, nil, nil)
	mine := lead(orgID, &a1, &category)
	theirs := lead(orgID, &a2, nil)
	foreign := lead(otherOrg, &a1, &category)

	tests := []struct {
		name    string
		scope   func() bool
		matches bool
	}{
		{"organiser list excludes unassigned", func() bool { return LeadListScope(organiser).Matches(unassigned) }, false},
		{"organiser list includes any assigned", func() bool { return LeadListScope(organiser).Matches(theirs) }, true},
		{"organiser list excludes other org", func() bool { return LeadListScope(organiser).Matches(foreign) }, false},
		{"agent list includes own", func() bool { return LeadListScope(agent).Matches(mine) }, true},
		{"agent list excludes others", func() bool { return LeadListScope(agent).Matches(theirs) }, false},
		{"agent list excludes same agent id in other org", func() bool { return LeadListScope(agent).Matches(foreign) }, false},
		{"unassigned bucket", func() bool { return UnassignedScope(organiser).Matches(unassigned) }, true},
		{"unassigned bucket excludes assigned", func() bool { return UnassignedScope(organiser).Matches(mine) }, false},
		{"organiser single lead reaches unassigned", func() bool { return LeadScope(organiser).Matches(unassigned) }, true},
		{"agent single lead excludes unassigned", func() bool { return LeadScope(agent).Matches(unassigned) }, false},
		{"agent single lead own", func() bool { return LeadScope(agent).Matches(mine) }, true},
		{"uncategorised includes unassigned", func() bool { return UncategorisedScope(agent).Matches(unassigned) }, true},
		{"uncategorised excludes categorised", func() bool { return UncategorisedScope(agent).Matches(mine) }, false},
		{"category scope for agent", func() bool { return CategoryLeadScope(agent, category).Matches(mine) }, true},
		{"category scope other category", func() bool { return CategoryLeadScope(organiser, uuid.New()).Matches(mine) }, false},
		{"org scope", func() bool { return OrgLeadScope(organiser).Matches(theirs) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.matches, tt.scope())
		})
	}
}

func TestSameOrganization(t *testing.T) {
	orgID := uuid.New()
	p := Organiser(uuid.New(), orgID)

	require.True(t, SameOrganization(p, orgID, orgID))
	require.False(t, SameOrganization(p, orgID, uuid.New()))
	require.True(t, SameOrganization(p))
}
