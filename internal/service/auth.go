// Package service contains application services for authentication,
// authorization and account administration.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/vpetrukhin/authgate/internal/crypto"
	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/limiter"
	"github.com/vpetrukhin/authgate/internal/model"
	"github.com/vpetrukhin/authgate/internal/repository"
	"github.com/vpetrukhin/authgate/internal/token"
)

// AuthService orchestrates sign-up/sign-in/sign-out, refresh rotation and
// password changes. It is the only mutator of the session store and denylist.
type AuthService interface {
	// SignUp creates a new user with secure password hashing.
	SignUp(ctx context.Context, username, password string) (userID string, err error)
	// SignIn authenticates the user and establishes a refresh session for
	// (user, device). ip feeds the login rate limiter.
	SignIn(ctx context.Context, username, password, device, ip string) (model.TokenPair, error)
	// Refresh rotates the refresh session one-shot and returns a fresh pair.
	Refresh(ctx context.Context, refreshToken, device string) (model.TokenPair, error)
	// SignOut denylists the access token and removes the device session.
	SignOut(ctx context.Context, accessToken, device string) error
	// ChangePassword verifies the old password, stores a new hash and purges
	// every refresh session of the user.
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
	// Authenticate validates a bearer access token against signature, expiry
	// and the denylist, returning its claims.
	Authenticate(ctx context.Context, accessToken string) (*token.Claims, error)
}

// AuthConfig tunes the session-limit policy and store deadlines.
type AuthConfig struct {
	// MaxSessions caps concurrent sessions per user. When a new sign-in
	// would exceed it, ALL of the user's sessions are purged (hard cutoff,
	// not LRU) and only the new one remains.
	MaxSessions int
	// StoreTimeout bounds each session/denylist mutation inside a flow.
	StoreTimeout time.Duration
}

const (
	defaultMaxSessions  = 5
	defaultStoreTimeout = 3 * time.Second
)

type AuthServiceImpl struct {
	users    repository.UserRepository
	tokens   *token.Manager
	sessions repository.SessionStore
	denylist repository.Denylist
	history  repository.HistoryRepository
	lim      limiter.Limiter
	cfg      AuthConfig

	// dummy credentials keep the not-found path as expensive as a real
	// password check, so response timing does not reveal user existence.
	dummySalt []byte
	dummyHash []byte
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *token.Manager,
	sessions repository.SessionStore,
	denylist repository.Denylist,
	history repository.HistoryRepository,
	lim limiter.Limiter,
	cfg AuthConfig,
) *AuthServiceImpl {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	dummySalt, _ := pkgcrypto.NewSalt()
	return &AuthServiceImpl{
		users:     users,
		tokens:    tokens,
		sessions:  sessions,
		denylist:  denylist,
		history:   history,
		lim:       lim,
		cfg:       cfg,
		dummySalt: dummySalt,
		dummyHash: pkgcrypto.HashPassword([]byte("dummy-password-for-timing-only"), dummySalt),
	}
}

func (s *AuthServiceImpl) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// SignUp creates a new user record with a per-user salt.
func (s *AuthServiceImpl) SignUp(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errs.ErrInvalidCredentials
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return "", err
	}
	u := &model.User{
		ID:       uid,
		Username: username,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// SignIn authenticates and establishes a session. The duplicate-session
// check runs before the limit policy so a repeat sign-in from the same
// device never triggers the purge.
func (s *AuthServiceImpl) SignIn(ctx context.Context, username, password, device, ip string) (model.TokenPair, error) {
	if device == "" {
		return model.TokenPair{}, errs.ErrMissingDevice
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !allowed {
		return model.TokenPair{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.TokenPair{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if err != nil {
			// burn the same hashing cost on unknown users
			pkgcrypto.VerifyPassword([]byte(password), s.dummySalt, s.dummyHash)
		}
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.TokenPair{}, errs.ErrRateLimited
		}
		// never reveals which factor failed
		return model.TokenPair{}, errs.ErrInvalidCredentials
	}
	_ = s.lim.Success(ctx, username, ipHash)

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if _, err := s.sessions.Get(sctx, u.ID, device); err == nil {
		return model.TokenPair{}, errs.ErrDuplicateSession
	} else if !errors.Is(err, errs.ErrSessionNotFound) {
		return model.TokenPair{}, err
	}

	count, err := s.sessions.Count(sctx, u.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	if count >= s.cfg.MaxSessions {
		// Hard cutoff: over the cap every session of the user is purged and
		// all devices re-authenticate. The new session becomes the only one.
		if _, err := s.sessions.DeleteAll(sctx, u.ID); err != nil {
			return model.TokenPair{}, err
		}
	}

	pair, refresh, err := s.issuePair(u.Username, u.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.sessions.Put(sctx, u.ID, device, refresh); err != nil {
		return model.TokenPair{}, err
	}
	s.record(ctx, u.ID, device, model.EventLogin)
	return pair, nil
}

// Refresh rotates the (user, device) session. The old refresh token is
// unusable the instant the new one is stored; a replay of an already-rotated
// token fails the compare-and-swap and surfaces as ErrSessionNotFound.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken, device string) (model.TokenPair, error) {
	if device == "" {
		return model.TokenPair{}, errs.ErrMissingDevice
	}
	claims, err := s.tokens.Parse(refreshToken, token.KindRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}
	userID, err := uuid.FromString(claims.UserID)
	if err != nil {
		return model.TokenPair{}, errs.ErrInvalidToken
	}

	pair, refresh, err := s.issuePair(claims.Subject, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.sessions.Rotate(sctx, userID, device, claims.ID, refresh); err != nil {
		return model.TokenPair{}, err
	}
	return pair, nil
}

// SignOut revokes the access token and removes the device session. Revoke is
// not idempotent: a second sign-out with the same token fails on the
// denylist check.
func (s *AuthServiceImpl) SignOut(ctx context.Context, accessToken, device string) error {
	if device == "" {
		return errs.ErrMissingDevice
	}
	claims, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	userID, err := uuid.FromString(claims.UserID)
	if err != nil {
		return errs.ErrInvalidToken
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.denylist.Put(sctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		return err
	}
	// A timeout here must surface: the token is already revoked but the
	// session may survive. Retrying sign-out is safe: the denylist put is
	// idempotent and deleting an absent session is a no-op.
	if err := s.sessions.Delete(sctx, userID, device); err != nil {
		return err
	}
	s.record(ctx, userID, device, model.EventLogout)
	return nil
}

// ChangePassword updates the stored hash and purges all refresh sessions.
// The presented access token stays valid until natural expiry; only the
// refresh side is revoked here.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	if newPassword == "" {
		return errs.ErrInvalidCredentials
	}
	claims, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return err
	}
	userID, err := uuid.FromString(claims.UserID)
	if err != nil {
		return errs.ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return errs.ErrInvalidCredentials
	}
	if !pkgcrypto.VerifyPassword([]byte(oldPassword), u.SaltAuth, u.PwdHash) {
		return errs.ErrInvalidCredentials
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, pkgcrypto.HashPassword([]byte(newPassword), salt), salt); err != nil {
		return err
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	_, err = s.sessions.DeleteAll(sctx, userID)
	return err
}

// Authenticate parses the access token and checks it against the denylist.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.tokens.Parse(accessToken, token.KindAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errs.ErrTokenRevoked
	}
	return claims, nil
}

// issuePair mints an access+refresh pair and the session record to persist.
func (s *AuthServiceImpl) issuePair(username string, userID uuid.UUID) (model.TokenPair, model.RefreshSession, error) {
	access, accessClaims, err := s.tokens.Issue(token.KindAccess, username, userID)
	if err != nil {
		return model.TokenPair{}, model.RefreshSession{}, err
	}
	refresh, refreshClaims, err := s.tokens.Issue(token.KindRefresh, username, userID)
	if err != nil {
		return model.TokenPair{}, model.RefreshSession{}, err
	}
	pair := model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessClaims.ExpiresAt.Time,
	}
	rs := model.RefreshSession{
		TokenID:   refreshClaims.ID,
		IssuedAt:  refreshClaims.IssuedAt.Time,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
	}
	return pair, rs, nil
}

// record appends a history event best-effort: by the time it runs the auth
// state transition is already durable and must not be rolled back over a
// history write failure.
func (s *AuthServiceImpl) record(ctx context.Context, userID uuid.UUID, device, event string) {
	_ = s.history.Append(ctx, model.HistoryEvent{
		UserID:    userID,
		Device:    device,
		Event:     event,
		CreatedAt: time.Now(),
	})
}
