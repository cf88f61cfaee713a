package server

import (
	"net/http"
)

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	listing, err := s.svc.ListLeads(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := leadListResponse{Leads: toLeads(listing.Leads)}
	if p.IsOrganiser() {
		resp.Unassigned = toLeads(listing.Unassigned)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createLead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req leadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lead, err := s.svc.CreateLead(r.Context(), p, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLead(lead))
}

func (s *Server) getLead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leadID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	lead, err := s.svc.GetLead(r.Context(), p, leadID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLead(lead))
}

func (s *Server) updateLead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leadID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req leadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lead, err := s.svc.UpdateLead(r.Context(), p, leadID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLead(lead))
}

func (s *Server) deleteLead(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leadID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteLead(r.Context(), p, leadID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) assignAgent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leadID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lead, err := s.svc.AssignAgent(r.Context(), p, leadID, req.AgentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLead(lead))
}

func (s *Server) assignableAgents(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leadID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	agents, err := s.svc.AssignableAgents(r.Context(), p, leadID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"agents": toAgents(agents)})
}

// updateLeadCategory is the only lead mutation open to agents. A null
// category_id moves the lead back to uncategorised.
func (s *Server) updateLeadCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	leadID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryAssignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lead, err := s.svc.UpdateLeadCategory(r.Context(), p, leadID, req.CategoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLead(lead))
}
