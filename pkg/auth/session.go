package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// DefaultAccessTokenTTL is the lifetime of minted development tokens.
const DefaultAccessTokenTTL = 15 * time.Minute

// SessionConfig holds session configuration.
type SessionConfig struct {
	JWTSecret      []byte
	Issuer         string
	AccessTokenTTL time.Duration
	// CheckSessions makes Validate consult the sessions table by jti.
	CheckSessions bool
}

// SessionStore is the subset of the sessions repository used for validation.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
}

// SessionService validates access tokens issued by the identity provider.
type SessionService struct {
	config   SessionConfig
	sessions SessionStore
}

// NewSessionService creates a new session service. sessions may be nil when
// CheckSessions is disabled.
func NewSessionService(config SessionConfig, sessions SessionStore) *SessionService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	return &SessionService{
		config:   config,
		sessions: sessions,
	}
}

// AccessTokenClaims represents the claims in an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ValidateAccessToken validates an access token and returns the claims.
func (s *SessionService) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.JWTSecret, nil
	}, opts...)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// Validate resolves the principal behind an access token. A token whose
// session row is revoked or expired is rejected even if the JWT is still
// within its lifetime.
func (s *SessionService) Validate(ctx context.Context, tokenString string) (*domain.Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, domain.ErrInvalidToken
	}

	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	principal := &domain.Principal{
		ID:    userID,
		Email: claims.Email,
		Name:  claims.Name,
	}
	if claims.ID != "" {
		if sessionID, err := uuid.Parse(claims.ID); err == nil {
			principal.SessionID = sessionID
		}
	}

	if !s.config.CheckSessions || s.sessions == nil {
		return principal, nil
	}

	if principal.SessionID == uuid.Nil {
		return nil, domain.ErrSessionNotFound
	}
	session, err := s.sessions.GetByID(ctx, principal.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != principal.ID {
		return nil, domain.ErrInvalidToken
	}
	if !session.IsValid() {
		if session.RevokedAt != nil {
			return nil, domain.ErrSessionRevoked
		}
		return nil, domain.ErrSessionExpired
	}

	return principal, nil
}

// MintAccessToken signs an access token for a principal. It exists for local
// development and tests; production tokens come from the identity provider.
func (s *SessionService) MintAccessToken(principal *domain.Principal, ttl time.Duration) (string, time.Time, error) {
	if principal == nil || principal.ID == uuid.Nil {
		return "", time.Time{}, errors.New("principal id is required")
	}
	if ttl <= 0 {
		ttl = s.config.AccessTokenTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.config.Issuer,
		},
		Email: principal.Email,
		Name:  principal.Name,
	}
	if principal.SessionID != uuid.Nil {
		claims.ID = principal.SessionID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IsAuthError reports whether err means the caller is not authenticated, as
// opposed to an infrastructure failure.
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrInvalidToken) ||
		errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrSessionExpired) ||
		errors.Is(err, domain.ErrSessionRevoked)
}
