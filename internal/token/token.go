// Package token issues and verifies the signed HS256 JWTs used for access
// and refresh tokens. The Manager is stateless; revocation is layered on top
// by the auth service via the denylist.
package token

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vpetrukhin/authgate/internal/errs"
)

// Token kinds carried in the "kind" claim. Parse rejects a token presented
// as the wrong kind, so an access token can never be replayed as a refresh
// token or vice versa.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultAccessTTL  = 10 * time.Minute
	DefaultRefreshTTL = 10 * 24 * time.Hour
)

// Config collects the process-wide signing configuration. It is passed into
// New explicitly; there is no ambient global state.
type Config struct {
	Secret     []byte // HS256 signing key, required
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims is the custom claim set of both token kinds.
type Claims struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Manager mints and verifies token pairs.
type Manager struct {
	cfg Config
}

// New validates cfg and constructs a Manager.
func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token: negative TTL")
	}
	return &Manager{cfg: cfg}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.cfg.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// Issue mints a signed token of the given kind with subject=username and a
// fresh jti. It returns the signed string together with the claims it
// carries (including the generated ID and expiry).
func (m *Manager) Issue(kind, username string, userID uuid.UUID) (string, *Claims, error) {
	ttl := m.cfg.AccessTTL
	if kind == KindRefresh {
		ttl = m.cfg.RefreshTTL
	}
	jti, err := uuid.NewV4()
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   username,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature, expiry and kind, and returns the claims.
// Any failure maps to errs.ErrInvalidToken; callers never see parser
// internals.
func (m *Manager) Parse(raw, wantKind string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.cfg.Secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, errs.ErrInvalidToken
	}
	if claims.Kind != wantKind || claims.ID == "" || claims.Subject == "" {
		return nil, errs.ErrInvalidToken
	}
	if _, err := uuid.FromString(claims.UserID); err != nil {
		return nil, errs.ErrInvalidToken
	}
	return claims, nil
}

// Remaining reports how long the token is still valid for, used when
// denylisting a revoked access token so the entry expires with the token.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
