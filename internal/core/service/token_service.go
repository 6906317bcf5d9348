package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

// TokenService implements ports.TokenService with HS256-signed JWTs.
// Issuance and verification are pure computations: no store is touched.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewTokenService(secret string, defaultTTL time.Duration) *TokenService {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), defaultTTL: defaultTTL}
}

// Issue signs a session token for the subject. Expiry is fixed at issuance;
// there is no sliding renewal.
func (s *TokenService) Issue(subjectID, role string, ttl time.Duration) (string, error) {
	if subjectID == "" || role == "" {
		return "", fmt.Errorf("%w: subject and role are required", domain.ErrValidation)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: claims,
		Role:             role,
	})
	return t.SignedString(s.secret)
}

// Verify parses and validates a token string. An expired but well-signed
// token yields domain.ErrTokenExpired; everything else that fails yields
// domain.ErrTokenMalformed. Callers rely on the distinction to render
// "session expired" vs "invalid token".
func (s *TokenService) Verify(token string) (*ports.TokenClaims, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenMalformed
	}

	return &ports.TokenClaims{SubjectID: claims.Subject, Role: claims.Role}, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
