package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/crm"
)

func toPrincipal(p access.Principal) principalResponse {
	resp := principalResponse{
		Kind:      string(p.Kind()),
		AccountID: p.AccountID(),
		OrgID:     p.OrgID(),
	}
	if agentID, ok := p.AgentID(); ok {
		resp.AgentID = &agentID
	}
	return resp
}

func toSession(session *auth.Session) sessionResponse {
	return sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Principal: toPrincipal(session.Principal),
	}
}

// signup registers an organiser with its organization and logs them straight in.
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	_, org, err := s.svc.SignupOrganiser(r.Context(), crm.SignupInput{
		Username:         req.Username,
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Password:         req.Password,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.authn.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("org_id", org.OrgID.String()).Msg("Organiser signed up")

	writeJSON(w, http.StatusCreated, toSession(session))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.authn.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSession(session))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPrincipal(p))
}
