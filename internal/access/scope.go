package access

import (
	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// LeadListScope is the filter for the main lead listing. Unassigned leads are never
// part of it, and agents only see their own leads.
func LeadListScope(p Principal) store.LeadFilter {
	filter := store.LeadFilter{
		OrgID:    p.OrgID(),
		Assigned: store.Bool(true),
	}
	if agentID, ok := p.AgentID(); ok {
		filter.AgentID = &agentID
	}
	return filter
}

// UnassignedScope is the organiser's unassigned bucket.
func UnassignedScope(p Principal) store.LeadFilter {
	return store.LeadFilter{
		OrgID:    p.OrgID(),
		Assigned: store.Bool(false),
	}
}

// LeadScope is the filter for single lead reads and writes. Organisers reach every
// lead in their organization, agents only the leads assigned to them.
func LeadScope(p Principal) store.LeadFilter {
	filter := store.LeadFilter{OrgID: p.OrgID()}
	if agentID, ok := p.AgentID(); ok {
		filter.Assigned = store.Bool(true)
		filter.AgentID = &agentID
	}
	return filter
}

// OrgLeadScope is the organization-wide base set used for summary counts. Agents and
// organisers of the same organization share it.
func OrgLeadScope(p Principal) store.LeadFilter {
	return store.LeadFilter{OrgID: p.OrgID()}
}

// UncategorisedScope narrows the organization base set to leads without a category.
func UncategorisedScope(p Principal) store.LeadFilter {
	filter := OrgLeadScope(p)
	filter.Categorised = store.Bool(false)
	return filter
}

// CategoryLeadScope narrows the single-lead scope to one category.
func CategoryLeadScope(p Principal, categoryID uuid.UUID) store.LeadFilter {
	filter := LeadScope(p)
	filter.CategoryID = &categoryID
	return filter
}

// SameOrganization reports whether every organization ID equals the principal's anchor.
func SameOrganization(p Principal, orgIDs ...uuid.UUID) bool {
	for _, orgID := range orgIDs {
		if orgID != p.OrgID() {
			return false
		}
	}
	return true
}
