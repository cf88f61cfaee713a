package store

// Stores groups the persistence collaborators used by the CRM engine.
type Stores struct {
	Organizations OrganizationStore
	Accounts      AccountStore
	Agents        AgentStore
	Leads         LeadStore
	Categories    CategoryStore
}

// Bool returns a pointer to b, for building filters.
func Bool(b bool) *bool {
	return &b
}
