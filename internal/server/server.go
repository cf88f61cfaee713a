package server

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/crm"
)

// maxBodyBytes caps request bodies for the JSON API.
const maxBodyBytes = 1 << 20

// Server exposes the CRM engine as a JSON API.
type Server struct {
	svc          *crm.Service
	authn        *auth.Authenticator
	authenticate func(http.Handler) http.Handler
}

// NewServer creates a server. authenticate wraps every route that needs a
// principal, normally auth.Middleware.
func NewServer(svc *crm.Service, authn *auth.Authenticator, authenticate func(http.Handler) http.Handler) *Server {
	return &Server{
		svc:          svc,
		authn:        authn,
		authenticate: authenticate,
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/signup", s.signup)
	mux.HandleFunc("POST /api/login", s.login)

	s.handle(mux, "GET /api/me", s.me)

	s.handle(mux, "GET /api/leads", s.listLeads)
	s.handle(mux, "POST /api/leads", s.createLead)
	s.handle(mux, "GET /api/leads/{id}", s.getLead)
	s.handle(mux, "PUT /api/leads/{id}", s.updateLead)
	s.handle(mux, "DELETE /api/leads/{id}", s.deleteLead)
	s.handle(mux, "PUT /api/leads/{id}/agent", s.assignAgent)
	s.handle(mux, "GET /api/leads/{id}/agents", s.assignableAgents)
	s.handle(mux, "PUT /api/leads/{id}/category", s.updateLeadCategory)

	s.handle(mux, "GET /api/categories", s.listCategories)
	s.handle(mux, "POST /api/categories", s.createCategory)
	s.handle(mux, "GET /api/categories/{id}", s.getCategory)
	s.handle(mux, "PUT /api/categories/{id}", s.updateCategory)
	s.handle(mux, "DELETE /api/categories/{id}", s.deleteCategory)

	s.handle(mux, "GET /api/agents", s.listAgents)
	s.handle(mux, "POST /api/agents", s.createAgent)
	s.handle(mux, "GET /api/agents/{id}", s.getAgent)
	s.handle(mux, "PUT /api/agents/{id}", s.updateAgent)
	s.handle(mux, "DELETE /api/agents/{id}", s.deleteAgent)

	return gzhttp.GzipHandler(mux)
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.authenticate(h))
}
