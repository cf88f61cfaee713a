package access

import (
	"slices"
)

// Operation is an action a principal may attempt.
type Operation string

const (
	OpListLeads          Operation = "leads:list"
	OpListUnassigned     Operation = "leads:list_unassigned"
	OpGetLead            Operation = "leads:get"
	OpCreateLead         Operation = "leads:create"
	OpUpdateLead         Operation = "leads:update"
	OpUpdateLeadCategory Operation = "leads:update_category"
	OpDeleteLead         Operation = "leads:delete"
	OpAssignAgent        Operation = "leads:assign_agent"

	OpListCategories  Operation = "categories:list"
	OpGetCategory     Operation = "categories:get"
	OpManageCategory  Operation = "categories:manage"
	OpCountUnassigned Operation = "categories:count_uncategorised"

	OpListAgents  Operation = "agents:list"
	OpGetAgent    Operation = "agents:get"
	OpCreateAgent Operation = "agents:create"
	OpUpdateAgent Operation = "agents:update"
	OpDeleteAgent Operation = "agents:delete"
)

// KindOperations maps principal kinds to the operations they may attempt at all.
// Whether a specific record is reachable is decided by the scope functions.
var KindOperations = map[Kind][]Operation{
	KindOrganiser: {
		OpListLeads,
		OpListUnassigned,
		OpGetLead,
		OpCreateLead,
		OpUpdateLead,
		OpUpdateLeadCategory,
		OpDeleteLead,
		OpAssignAgent,
		OpListCategories,
		OpGetCategory,
		OpManageCategory,
		OpCountUnassigned,
		OpListAgents,
		OpGetAgent,
		OpCreateAgent,
		OpUpdateAgent,
		OpDeleteAgent,
	},
	KindAgent: {
		OpListLeads,
		OpGetLead,
		OpUpdateLeadCategory,
		OpListCategories,
		OpGetCategory,
		OpCountUnassigned,
	},
}

// Allowed reports whether the principal may attempt the operation.
func Allowed(p Principal, op Operation) bool {
	if !p.Valid() {
		return false
	}
	ops, ok := KindOperations[p.Kind()]
	if !ok {
		return false
	}
	return slices.Contains(ops, op)
}
