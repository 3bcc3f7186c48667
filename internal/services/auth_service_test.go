package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"askroom/internal/config"
	"askroom/internal/domain/identity"
	askroom_errors "askroom/pkg/errors"

	"github.com/jonboulle/clockwork"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		MagicLinkTTL:  15 * time.Minute,
		MagicLinkBase: "http://localhost:8080/v1/auth/magic-link/redeem",
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *capturingMailer, *clockwork.FakeClock) {
	t.Helper()
	mailer := &capturingMailer{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewAuthService(newMemIdentityRepo(), mailer, testAuthConfig(), clock), mailer, clock
}

func linkToken(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("mailed link %q does not parse: %v", link, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		t.Fatalf("mailed link %q carries no token", link)
	}
	return token
}

func TestAnonymousSignIn(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	res, err := svc.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously failed: %v", err)
	}
	if res.Role != identity.RoleParticipant {
		t.Errorf("role = %q, want participant", res.Role)
	}

	principal, err := svc.ParseAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if principal.Role != identity.RoleParticipant {
		t.Errorf("parsed role = %q, want participant", principal.Role)
	}
	if principal.ID.String() != res.UserID {
		t.Errorf("parsed id = %s, want %s", principal.ID, res.UserID)
	}
	if principal.Email != "" {
		t.Errorf("anonymous token carries email %q", principal.Email)
	}

	// Two anonymous sessions are two distinct identities.
	again, err := svc.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("second sign-in failed: %v", err)
	}
	if again.UserID == res.UserID {
		t.Error("anonymous identities must be unique per sign-in")
	}
}

func TestMagicLinkFlow(t *testing.T) {
	svc, mailer, _ := newAuthFixture(t)

	if err := svc.RequestMagicLink(context.Background(), "Host@Example.com "); err != nil {
		t.Fatalf("RequestMagicLink failed: %v", err)
	}
	if mailer.email != "host@example.com" {
		t.Errorf("mail sent to %q, want normalized address", mailer.email)
	}

	res, err := svc.RedeemMagicLink(context.Background(), linkToken(t, mailer.link))
	if err != nil {
		t.Fatalf("RedeemMagicLink failed: %v", err)
	}
	if res.Role != identity.RoleAdmin {
		t.Errorf("role = %q, want admin", res.Role)
	}

	principal, err := svc.ParseAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("admin token does not parse: %v", err)
	}
	if principal.Role != identity.RoleAdmin {
		t.Errorf("parsed role = %q, want admin", principal.Role)
	}
	// The admin token carries the verified address so room creation can
	// stamp ownership without a second lookup.
	if principal.Email != "host@example.com" {
		t.Errorf("parsed email = %q, want %q", principal.Email, "host@example.com")
	}
}

func TestMagicLinkSingleUse(t *testing.T) {
	svc, mailer, _ := newAuthFixture(t)

	if err := svc.RequestMagicLink(context.Background(), "host@example.com"); err != nil {
		t.Fatalf("RequestMagicLink failed: %v", err)
	}
	token := linkToken(t, mailer.link)

	if _, err := svc.RedeemMagicLink(context.Background(), token); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if _, err := svc.RedeemMagicLink(context.Background(), token); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Fatalf("second redemption error = %v, want ErrUnauthorized", err)
	}
}

func TestMagicLinkExpiry(t *testing.T) {
	svc, mailer, clock := newAuthFixture(t)

	if err := svc.RequestMagicLink(context.Background(), "host@example.com"); err != nil {
		t.Fatalf("RequestMagicLink failed: %v", err)
	}
	token := linkToken(t, mailer.link)

	clock.Advance(16 * time.Minute)

	if _, err := svc.RedeemMagicLink(context.Background(), token); !errors.Is(err, askroom_errors.ErrLinkExpired) {
		t.Fatalf("expired redemption error = %v, want ErrLinkExpired", err)
	}
}

func TestMagicLinkRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"no at sign", "not-an-email", askroom_errors.ErrInvalidInput},
		{"no domain dot", "a@b", askroom_errors.ErrInvalidInput},
		{"embedded space", "a b@example.com", askroom_errors.ErrInvalidInput},
		{"empty", "", askroom_errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.RequestMagicLink(context.Background(), tt.email); !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.RedeemMagicLink(context.Background(), "never-issued"); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Fatalf("unknown token error = %v, want ErrUnauthorized", err)
	}
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	svc, _, clock := newAuthFixture(t)

	res, err := svc.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	if _, err := svc.ParseAccessToken(res.AccessToken + "x"); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Errorf("tampered token error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.ParseAccessToken(""); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Errorf("empty token error = %v, want ErrUnauthorized", err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := svc.ParseAccessToken(res.AccessToken); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Errorf("expired token error = %v, want ErrUnauthorized", err)
	}

	other := NewAuthService(newMemIdentityRepo(), &capturingMailer{}, config.AuthConfig{
		JWTSecret: "different-secret", TokenTTL: time.Hour, MagicLinkTTL: time.Minute,
		MagicLinkBase: "http://localhost/redeem",
	}, clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	foreign, err := other.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("foreign sign-in failed: %v", err)
	}
	if _, err := svc.ParseAccessToken(foreign.AccessToken); !errors.Is(err, askroom_errors.ErrUnauthorized) {
		t.Errorf("wrong-secret token error = %v, want ErrUnauthorized", err)
	}
}
