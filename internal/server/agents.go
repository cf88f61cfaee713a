package server

import (
	"net/http"
)

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	agents, err := s.svc.ListAgents(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"agents": toAgents(agents)})
}

// createAgent provisions the agent account and returns once it is committed.
// The invitation is delivered in the background.
func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req agentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	agent, err := s.svc.CreateAgent(r.Context(), p, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAgent(agent))
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	agentID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	agent, err := s.svc.GetAgent(r.Context(), p, agentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAgent(agent))
}

func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	agentID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req agentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	agent, err := s.svc.UpdateAgent(r.Context(), p, agentID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAgent(agent))
}

func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	agentID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteAgent(r.Context(), p, agentID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
