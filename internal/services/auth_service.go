package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"askroom/internal/config"
	"askroom/internal/domain/identity"
	"askroom/internal/repository"
	askroom_errors "askroom/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// AuthService issues identities: anonymous participant tokens on demand,
// and admin tokens through the one-time emailed magic link flow.
type AuthService struct {
	ids       repository.IdentityRepository
	mailer    Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	linkTTL   time.Duration
	linkBase  string
	clock     clockwork.Clock
}

func NewAuthService(ids repository.IdentityRepository, mailer Mailer, cfg config.AuthConfig, clock clockwork.Clock) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		ids:       ids,
		mailer:    mailer,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		linkTTL:   cfg.MagicLinkTTL,
		linkBase:  cfg.MagicLinkBase,
		clock:     clock,
	}
}

type AccessClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// SignInAnonymously mints a participant identity out of thin air. The UUID
// in the token is the identity used for vote reconciliation.
func (s *AuthService) SignInAnonymously(ctx context.Context) (AuthResponse, error) {
	return s.issueToken(uuid.New(), identity.RoleParticipant, "")
}

// RequestMagicLink creates a one-time sign-in token for the email and mails
// the redemption link. Only the token's SHA-256 hash is stored.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !looksLikeEmail(email) {
		return askroom_errors.ErrInvalidInput
	}

	raw, hash, err := newLinkToken()
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	token := identity.MagicLinkToken{
		ID:        uuid.New(),
		Email:     email,
		TokenHash: hash,
		ExpiresAt: now.Add(s.linkTTL),
		CreatedAt: now,
	}
	if err := s.ids.CreateToken(ctx, &token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", s.linkBase, raw)
	return s.mailer.SendMagicLink(ctx, email, link)
}

// RedeemMagicLink consumes a sign-in token and returns an admin session.
// A token redeems at most once; expiry and reuse both fail closed.
func (s *AuthService) RedeemMagicLink(ctx context.Context, rawToken string) (AuthResponse, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return AuthResponse{}, askroom_errors.ErrInvalidInput
	}

	sum := sha256.Sum256([]byte(rawToken))
	token, err := s.ids.GetTokenByHash(ctx, hex.EncodeToString(sum[:]))
	if err != nil {
		if errors.Is(err, askroom_errors.ErrNotFound) {
			return AuthResponse{}, askroom_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	now := s.clock.Now().UTC()
	if token.UsedAt != nil {
		return AuthResponse{}, askroom_errors.ErrUnauthorized
	}
	if now.After(token.ExpiresAt) {
		return AuthResponse{}, askroom_errors.ErrLinkExpired
	}

	// The used_at guard in the repository makes this the single winner
	// even when two redemptions race.
	if err := s.ids.MarkTokenUsed(ctx, token.ID, now); err != nil {
		if errors.Is(err, askroom_errors.ErrNotFound) {
			return AuthResponse{}, askroom_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	admin, err := s.ids.UpsertAdmin(ctx, token.Email, now)
	if err != nil {
		return AuthResponse{}, err
	}
	return s.issueToken(admin.ID, identity.RoleAdmin, admin.Email)
}

// ParseAccessToken validates a bearer token and returns the caller.
func (s *AuthService) ParseAccessToken(tokenString string) (Principal, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return Principal{}, askroom_errors.ErrUnauthorized
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, askroom_errors.ErrUnauthorized
	}
	if claims.Role != identity.RoleAdmin && claims.Role != identity.RoleParticipant {
		return Principal{}, askroom_errors.ErrUnauthorized
	}
	return Principal{ID: id, Role: claims.Role, Email: claims.Email}, nil
}

func (s *AuthService) issueToken(id uuid.UUID, role, email string) (AuthResponse, error) {
	now := s.clock.Now().UTC()
	claims := AccessClaims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		UserID:      id.String(),
		Role:        role,
	}, nil
}

func newLinkToken() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".") && !strings.ContainsAny(s, " \t")
}
