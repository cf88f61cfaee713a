package memory

import "github.com/wolfeidau/leadcrm/internal/store"

// NewStores creates a complete set of in-memory stores sharing the cross-entity
// references needed for atomic account creation and delete cascades.
func NewStores() store.Stores {
	accounts := NewAccountStore()
	leads := NewLeadStore()

	return store.Stores{
		Organizations: NewOrganizationStore(accounts),
		Accounts:      accounts,
		Agents:        NewAgentStore(accounts, leads),
		Leads:         leads,
		Categories:    NewCategoryStore(leads),
	}
}
