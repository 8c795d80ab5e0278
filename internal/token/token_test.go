package token

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vpetrukhin/authgate/internal/errs"
)

func newTestManager(t *testing.T, accessTTL, refreshTTL time.Duration) *Manager {
	t.Helper()
	m, err := New(Config{
		Secret:     []byte("test-secret"),
		Issuer:     "authgate-test",
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatalf("want error on empty secret")
	}
	if _, err := New(Config{Secret: []byte("k"), AccessTTL: -time.Second}); err == nil {
		t.Fatalf("want error on negative TTL")
	}

	m, err := New(Config{Secret: []byte("k")})
	if err != nil {
		t.Fatalf("New with defaults: %v", err)
	}
	if m.AccessTTL() != DefaultAccessTTL || m.RefreshTTL() != DefaultRefreshTTL {
		t.Fatalf("defaults not applied: access=%v refresh=%v", m.AccessTTL(), m.RefreshTTL())
	}
}

func TestIssueAndParse_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	signed, issued, err := m.Issue(KindAccess, "alice", userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.ID == "" {
		t.Fatalf("empty jti")
	}

	claims, err := m.Parse(signed, KindAccess)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "alice" || claims.UserID != userID.String() || claims.ID != issued.ID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if got := claims.Remaining(time.Now()); got <= 0 || got > time.Minute {
		t.Fatalf("Remaining out of range: %v", got)
	}
}

func TestParse_RejectsWrongKind(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute, time.Hour)
	userID := uuid.Must(uuid.NewV4())

	refresh, _, err := m.Issue(KindRefresh, "alice", userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(refresh, KindAccess); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for refresh-as-access, got %v", err)
	}
}

func TestParse_RejectsWrongSecretAndGarbage(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Minute, time.Hour)
	other := newTestManager(t, time.Minute, time.Hour)
	// same config, different secret
	other.cfg.Secret = []byte("other-secret")

	signed, _, err := other.Issue(KindAccess, "alice", uuid.Must(uuid.NewV4()))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(signed, KindAccess); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for foreign signature, got %v", err)
	}
	if _, err := m.Parse("not-a-jwt", KindAccess); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for garbage, got %v", err)
	}
	if _, err := m.Parse("", KindAccess); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for empty string, got %v", err)
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Millisecond, time.Hour)
	signed, _, err := m.Issue(KindAccess, "alice", uuid.Must(uuid.NewV4()))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := m.Parse(signed, KindAccess); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for expired token, got %v", err)
	}
}
