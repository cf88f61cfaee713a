package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/leadcrm/internal/models"
)

func TestLeadFilterMatches(t *testing.T) {
	orgID := uuid.New()
	agentID := uuid.New()
	categoryID := uuid.New()

	assigned := &models.Lead{OrgID: orgID, AgentID: &agentID, CategoryID: &categoryID}
	bare := &models.Lead{OrgID: orgID}

	tests := []struct {
		name   string
		filter LeadFilter
		lead   *models.Lead
		want   bool
	}{
		{"missing org never matches", LeadFilter{}, bare, false},
		{"other org", LeadFilter{OrgID: uuid.New()}, bare, false},
		{"org only", LeadFilter{OrgID: orgID}, assigned, true},
		{"assigned true", LeadFilter{OrgID: orgID, Assigned: Bool(true)}, assigned, true},
		{"assigned true on bare", LeadFilter{OrgID: orgID, Assigned: Bool(true)}, bare, false},
		{"assigned false on bare", LeadFilter{OrgID: orgID, Assigned: Bool(false)}, bare, true},
		{"agent id", LeadFilter{OrgID: orgID, AgentID: &agentID}, assigned, true},
		{"other agent id", LeadFilter{OrgID: orgID, AgentID: ptr(uuid.New())}, assigned, false},
		{"agent id on bare", LeadFilter{OrgID: orgID, AgentID: &agentID}, bare, false},
		{"categorised false", LeadFilter{OrgID: orgID, Categorised: Bool(false)}, bare, true},
		{"categorised false on categorised", LeadFilter{OrgID: orgID, Categorised: Bool(false)}, assigned, false},
		{"category id", LeadFilter{OrgID: orgID, CategoryID: &categoryID}, assigned, true},
		{"category id on bare", LeadFilter{OrgID: orgID, CategoryID: &categoryID}, bare, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(tt.lead))
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
