package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/pawacademy/training-platform/internal/api/middleware"
	"github.com/pawacademy/training-platform/internal/core/domain"
)

// ctxPrincipal extracts the principal attached by the Authenticate gate.
// A nil principal on a gated route means the route was registered without
// the gate; fail as unauthenticated rather than panicking.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
