package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	cases := []struct {
		subjectID string
		role      string
	}{
		{"user_1", domain.RoleClient},
		{"user_2", domain.RoleTrainer},
		{"user_3", domain.RoleAdmin},
	}

	for _, tc := range cases {
		token, err := svc.Issue(tc.subjectID, tc.role, time.Hour)
		if err != nil {
			t.Fatalf("Issue(%s, %s): %v", tc.subjectID, tc.role, err)
		}

		claims, err := svc.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.SubjectID != tc.subjectID || claims.Role != tc.role {
			t.Fatalf("round trip mismatch: got %+v", claims)
		}
	}
}

func TestTokenService_Issue_RequiresSubjectAndRole(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	if _, err := svc.Issue("", "admin", time.Hour); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty subject, got %v", err)
	}
	if _, err := svc.Issue("user_1", "", time.Hour); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty role, got %v", err)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: domain.RoleClient,
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// Expired must be reported as expired, never malformed.
	_, err = svc.Verify(signed)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	if _, err := svc.Verify("not-a-token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for garbage, got %v", err)
	}

	// Valid structure, wrong signing key.
	other := NewTokenService("other-secret", time.Hour)
	token, err := other.Issue("user_1", domain.RoleClient, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for bad signature, got %v", err)
	}
}

func TestTokenService_Verify_RejectsForeignAlgorithm(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user_1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for alg=none, got %v", err)
	}
}
