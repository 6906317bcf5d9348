package ports

import "time"

// TokenClaims is the verified content of a session token. Only the subject
// id and role hint are trusted from the token; live account state is always
// re-read from the directory.
type TokenClaims struct {
	SubjectID string
	Role      string
}

// TokenService issues and verifies signed, time-limited session tokens.
// Tokens are stateless: there is no revocation list, and logout is a
// client-side discard. A deactivated account is shut out by the live
// directory check in the gate chain, not by token invalidation.
type TokenService interface {
	// Issue signs a token for the subject with a fixed expiry of now+ttl.
	Issue(subjectID, role string, ttl time.Duration) (string, error)
	// Verify parses and checks a token, returning domain.ErrTokenExpired for
	// a well-signed but stale token and domain.ErrTokenMalformed for
	// anything that fails to parse or verify.
	Verify(token string) (*TokenClaims, error)
}
