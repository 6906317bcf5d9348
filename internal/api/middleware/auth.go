package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

// principalKey is the single echo context key under which the authenticated
// principal is stored. Gates after Authenticate read it; none re-runs the
// token verification or the directory lookup.
const principalKey = "principal"

// Authenticator builds the authorization gates. Each gate is an ordinary
// echo middleware, so route definitions compose them declaratively in order.
type Authenticator struct {
	tokens ports.TokenService
	users  ports.UserRepository
}

func NewAuthenticator(tokens ports.TokenService, users ports.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Principal returns the principal attached by Authenticate, or nil when the
// request is anonymous (no gate ran, or OptionalAuthenticate fell through).
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// Authenticate verifies the bearer credential, re-reads the live directory
// record, and attaches the principal. Failure kinds stay distinct so the
// error handler can tell the caller what actually went wrong:
// missing/garbled header and vanished accounts are unauthenticated, expired
// and malformed tokens each keep their own error, and a deactivated account
// is rejected immediately regardless of token validity.
func (a *Authenticator) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, err := a.resolve(c)
		if err != nil {
			return err
		}
		c.Set(principalKey, principal)
		return next(c)
	}
}

// OptionalAuthenticate attempts the same checks as Authenticate but never
// rejects: on any failure the request proceeds anonymously. Used by
// endpoints that behave differently for logged-in callers but require no
// login.
func (a *Authenticator) OptionalAuthenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if principal, err := a.resolve(c); err == nil {
			c.Set(principalKey, principal)
		}
		return next(c)
	}
}

// RequireRole rejects authenticated principals whose role is not in the
// allowed set. It must run after Authenticate; a missing principal means
// the chain was composed without it and reads as unauthenticated, never as
// forbidden.
func (a *Authenticator) RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[p.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireAccessLevel enforces the admin-only access tier. The ranking is
// fail-closed: an unset or unrecognized access level ranks 0 and never
// satisfies any minimum. Compose after Authenticate and RequireRole(admin).
func (a *Authenticator) RequireAccessLevel(min string) echo.MiddlewareFunc {
	required := domain.AccessRank(min)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil {
				return domain.ErrUnauthenticated
			}
			if p.Role != domain.RoleAdmin {
				return domain.ErrForbidden
			}
			if required <= 0 || domain.AccessRank(p.AccessLevel) < required {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// resolve performs the one credential verification and one directory lookup
// for the request.
func (a *Authenticator) resolve(c echo.Context) (*domain.Principal, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, domain.ErrUnauthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := a.tokens.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	// Live lookup: is_active and access_level are never trusted from the
	// token, so a deactivated account loses access before its token expires.
	user, err := a.users.FindByID(c.Request().Context(), claims.SubjectID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	return domain.PrincipalFromUser(user), nil
}
