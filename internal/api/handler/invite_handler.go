package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawacademy/training-platform/internal/api/metrics"
	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

type InviteHandler struct {
	inviteService ports.InviteService
}

func NewInviteHandler(inviteService ports.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Create handles POST /v1/invites — an admin invites a staff member.
//
// @Summary      Create a staff invite
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInviteRequest  true  "Invite details"
// @Success      201   {object}  inviteResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/invites [post]
func (h *InviteHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	invite, err := h.inviteService.CreateInvite(c.Request().Context(), ports.CreateInviteInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		Specialties: req.Specialties,
		CreatedBy:   p.ID,
	})
	if err != nil {
		return err
	}

	metrics.InvitesCreatedTotal.WithLabelValues(invite.Role).Inc()
	return c.JSON(http.StatusCreated, toInviteResponse(invite))
}

// List handles GET /v1/invites — admin dashboard listing, optionally
// filtered by ?status=.
//
// @Summary      List invites
// @Tags         invites
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(pending, accepted, expired, cancelled)
// @Success      200     {object}  inviteListResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/invites [get]
func (h *InviteHandler) List(c echo.Context) error {
	status := domain.InviteStatus(c.QueryParam("status"))

	invites, err := h.inviteService.ListInvites(c.Request().Context(), status)
	if err != nil {
		return err
	}

	items := make([]inviteResponse, 0, len(invites))
	for i := range invites {
		items = append(items, toInviteResponse(&invites[i]))
	}
	return c.JSON(http.StatusOK, inviteListResponse{Items: items, Total: len(items)})
}

// Validate handles GET /v1/invites/:token — the public pre-registration
// check the invite link lands on.
//
// @Summary      Validate an invite token
// @Tags         invites
// @Produce      json
// @Param        token  path      string  true  "Invite token"
// @Success      200    {object}  inviteResponse
// @Failure      404    {object}  errorResponse
// @Failure      409    {object}  errorResponse
// @Failure      410    {object}  errorResponse
// @Router       /v1/invites/{token} [get]
func (h *InviteHandler) Validate(c echo.Context) error {
	invite, err := h.inviteService.ValidateInvite(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInviteResponse(invite))
}

// Accept handles POST /v1/invites/:token/accept — public redemption,
// creating the staff account.
//
// @Summary      Redeem an invite
// @Tags         invites
// @Accept       json
// @Produce      json
// @Param        token  path      string               true  "Invite token"
// @Param        body   body      acceptInviteRequest  true  "Registration fields"
// @Success      201    {object}  authResponse
// @Failure      404    {object}  errorResponse
// @Failure      409    {object}  errorResponse
// @Failure      410    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /v1/invites/{token}/accept [post]
func (h *InviteHandler) Accept(c echo.Context) error {
	var req acceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.inviteService.AcceptInvite(c.Request().Context(), c.Param("token"), ports.AcceptInviteInput{
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInviteAlreadyUsed) {
			metrics.InviteConflictsTotal.Inc()
		}
		return err
	}

	metrics.InvitesRedeemedTotal.Inc()
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Cancel handles DELETE /v1/invites/:id — admin revokes a pending invite.
//
// @Summary      Cancel a pending invite
// @Tags         invites
// @Security     BearerAuth
// @Param        id  path  string  true  "Invite id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/invites/{id} [delete]
func (h *InviteHandler) Cancel(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.inviteService.CancelInvite(c.Request().Context(), c.Param("id"), p.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
