package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	roleOrganizer = "organizer"
	roleFaculty   = "faculty"

	defaultSessionTTL = 12 * time.Hour
)

// SessionClaims are the JWT claims carried by dashboard session tokens.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SessionTokenService issues and verifies HS256 dashboard session tokens.
// Authentication itself happens elsewhere; this only carries the resulting principal.
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokenService constructs a token service. A non-positive ttl uses 12 hours.
func NewSessionTokenService(secret string, ttl time.Duration, now func() time.Time) *SessionTokenService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SessionTokenService{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token for principal.
func (s *SessionTokenService) Issue(principal Principal) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("session token secret not configured")
	}
	if err := requirePrincipal(principal); err != nil {
		return "", time.Time{}, err
	}

	role := roleFaculty
	if principal.IsOrganizer {
		role = roleOrganizer
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := SessionClaims{
		Email: strings.TrimSpace(principal.Email),
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateSession verifies token and returns the principal it carries. Every
// failure maps to ErrUnauthenticated.
func (s *SessionTokenService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(s.secret) == 0 {
		return Principal{}, ErrUnauthenticated
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, errors.Join(ErrUnauthenticated, err)
	}
	if !parsed.Valid {
		return Principal{}, ErrUnauthenticated
	}

	principal := Principal{
		UserID:      claims.Subject,
		Email:       claims.Email,
		IsOrganizer: claims.Role == roleOrganizer,
	}
	if err := requirePrincipal(principal); err != nil {
		return Principal{}, err
	}
	return principal, nil
}
