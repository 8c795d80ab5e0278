// Package httpserver exposes the authgate HTTP API. It owns the mapping
// from service sentinels to the response taxonomy; no store or parser
// errors leak past this layer.
package httpserver

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/service"
	"github.com/vpetrukhin/authgate/internal/token"
)

// deviceHeader carries the client device identity out-of-band. Its absence
// on signin/signout/refresh is a client error, distinct from any
// authentication failure.
const deviceHeader = "X-Device-Id"

// Server wires application services into HTTP handlers.
type Server struct {
	log     *zap.Logger
	auth    service.AuthService
	perms   service.PermissionService
	authz   service.Authorizer
	history service.HistoryService
}

// New constructs an HTTP server with injected services.
func New(log *zap.Logger, auth service.AuthService, perms service.PermissionService, authz service.Authorizer, history service.HistoryService) *Server {
	return &Server{log: log, auth: auth, perms: perms, authz: authz, history: history}
}

// Routes builds the full handler chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/users/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/v1/users/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/v1/users/signout", s.handleSignOut)
	mux.HandleFunc("POST /api/v1/users/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/v1/users/change_password", s.handleChangePassword)
	mux.HandleFunc("GET /api/v1/users/history", s.handleHistory)
	mux.HandleFunc("POST /api/v1/users/{id}/groups", s.handleAddGroup)
	mux.HandleFunc("DELETE /api/v1/users/{id}/groups/{group_id}", s.handleRemoveGroup)

	mux.HandleFunc("POST /api/v1/permissions", s.handleCreatePermission)
	mux.HandleFunc("GET /api/v1/permissions", s.handleListPermissions)
	mux.HandleFunc("PUT /api/v1/permissions/{id}", s.handleUpdatePermission)
	mux.HandleFunc("DELETE /api/v1/permissions/{id}", s.handleDeletePermission)

	return withRecover(s.log, withLogging(s.log, mux))
}

// device returns the device identity header, which may be empty; the
// services reject the empty value with ErrMissingDevice.
func device(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(deviceHeader))
}

// bearer extracts the access token from the Authorization header.
func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// authorize is the single gate in front of every privileged operation:
// a structurally valid, non-denylisted bearer token first, the operation's
// declared permission set second. It writes the response itself and returns
// nil when the request must not proceed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, op string) *token.Claims {
	raw := bearer(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return nil
	}
	claims, err := s.auth.Authenticate(r.Context(), raw)
	if err != nil {
		s.writeMapped(w, err)
		return nil
	}
	if !s.authz.RequiredPermissions(r.Context(), claims.Subject, requiredPermissions[op]) {
		writeError(w, http.StatusForbidden, "not_enough_rights", "not enough rights")
		return nil
	}
	return claims
}

// writeMapped converts a service error into the response taxonomy.
func (s *Server) writeMapped(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrMissingDevice):
		writeError(w, http.StatusBadRequest, "missing_device", "device identity required")
	case errors.Is(err, errs.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	case errors.Is(err, errs.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
	case errors.Is(err, errs.ErrTokenRevoked):
		writeError(w, http.StatusUnauthorized, "token_revoked", "token has been revoked")
	case errors.Is(err, errs.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, "session_not_found", "no active session for this device")
	case errors.Is(err, errs.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_enough_rights", "not enough rights")
	case errors.Is(err, errs.ErrDuplicateSession):
		writeError(w, http.StatusConflict, "duplicate_session", "active session already exists for this device")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "already exists")
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
	case errors.Is(err, errs.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "temporary failure, retry later")
	default:
		s.log.Error("unmapped error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
