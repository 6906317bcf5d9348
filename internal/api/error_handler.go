package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pawacademy/training-platform/internal/api/metrics"
	"github.com/pawacademy/training-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps each domain failure kind to exactly one HTTP status code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Expired token vs
	// malformed token and deactivated vs forbidden stay distinguishable so
	// clients can branch on the message deterministically.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		metrics.AuthRejectionsTotal.WithLabelValues("unauthenticated").Inc()
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.AuthRejectionsTotal.WithLabelValues("expired_token").Inc()
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrTokenMalformed):
		metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrAccountDeactivated):
		metrics.AuthRejectionsTotal.WithLabelValues("deactivated").Inc()
		return http.StatusForbidden, "account deactivated"
	case errors.Is(err, domain.ErrForbidden):
		metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many login attempts"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "account already exists"
	case errors.Is(err, domain.ErrInviteNotFound):
		return http.StatusNotFound, "invite not found"
	case errors.Is(err, domain.ErrInviteExpired):
		return http.StatusGone, "invite expired"
	case errors.Is(err, domain.ErrInviteAlreadyUsed):
		return http.StatusConflict, "invite already used"
	case errors.Is(err, domain.ErrDuplicateInvite):
		return http.StatusConflict, "pending invite already exists for this email"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
