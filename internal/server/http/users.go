package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/model"
)

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signUpResponse struct {
	UserID string `json:"user_id"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type addGroupRequest struct {
	GroupID string `json:"group_id"`
}

type historyEventView struct {
	Device    string    `json:"device"`
	Event     string    `json:"event"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	Total  int                `json:"total"`
	Page   int                `json:"page"`
	Size   int                `json:"size"`
	Events []historyEventView `json:"events"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "username and password required")
		return
	}
	id, err := s.auth.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signUpResponse{UserID: id})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	pair, err := s.auth.SignIn(r.Context(), req.Username, req.Password, device(r), remoteIP(r))
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	raw := bearer(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}
	if err := s.auth.SignOut(r.Context(), raw, device(r)); err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken, device(r))
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	raw := bearer(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	if err := s.auth.ChangePassword(r.Context(), raw, req.OldPassword, req.NewPassword); err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, opReadOwnHistory)
	if claims == nil {
		return
	}
	userID, err := uuid.FromString(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
		return
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	hp, err := s.history.Page(r.Context(), userID, size, page)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyView(hp.Total, hp.Page, hp.Size, hp.Events))
}

func historyView(total, page, size int, events []model.HistoryEvent) historyResponse {
	views := make([]historyEventView, 0, len(events))
	for _, ev := range events {
		views = append(views, historyEventView{Device: ev.Device, Event: ev.Event, CreatedAt: ev.CreatedAt})
	}
	return historyResponse{Total: total, Page: page, Size: size, Events: views}
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, opManageUserGroups) == nil {
		return
	}
	userID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed user id")
		return
	}
	var req addGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	groupID, err := uuid.FromString(req.GroupID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed group id")
		return
	}
	if err := s.perms.AddGroupToUser(r.Context(), userID, groupID); err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, opManageUserGroups) == nil {
		return
	}
	userID, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed user id")
		return
	}
	groupID, err := uuid.FromString(r.PathValue("group_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed group id")
		return
	}
	if err := s.perms.RemoveGroupFromUser(r.Context(), userID, groupID); err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
