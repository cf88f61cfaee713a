package server

import (
	"net/http"
)

// listCategories returns the organization's categories together with the
// number of uncategorised leads.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	categories, err := s.svc.ListCategories(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := s.svc.UnassignedCount(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := categoryListResponse{
		Categories:      make([]categoryResponse, 0, len(categories)),
		UnassignedCount: count,
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, toCategory(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.svc.CreateCategory(r.Context(), p, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategory(category))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.svc.GetCategory(r.Context(), p, categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryDetailResponse{
		categoryResponse: toCategory(detail.Category),
		Leads:            toLeads(detail.Leads),
	})
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.svc.UpdateCategory(r.Context(), p, categoryID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategory(category))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.DeleteCategory(r.Context(), p, categoryID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
