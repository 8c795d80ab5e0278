package httpserver

import (
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

type permissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type permissionView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toPermissionView(p *model.Permission) permissionView {
	return permissionView{ID: p.ID.String(), Name: p.Name, Description: p.Description}
}

func (s *Server) handleCreatePermission(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, opCreatePermission) == nil {
		return
	}
	var req permissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "permission name required")
		return
	}
	p, err := s.perms.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPermissionView(p))
}

func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, opReadPermissions) == nil {
		return
	}
	list, err := s.perms.List(r.Context())
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	views := make([]permissionView, 0, len(list))
	for i := range list {
		views = append(views, toPermissionView(&list[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, opUpdatePermission) == nil {
		return
	}
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed permission id")
		return
	}
	var req permissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "permission name required")
		return
	}
	p, err := s.perms.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPermissionView(p))
}

func (s *Server) handleDeletePermission(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, opDeletePermission) == nil {
		return
	}
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed permission id")
		return
	}
	if err := s.perms.Delete(r.Context(), id); err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
