package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawacademy/training-platform/internal/api/middleware"
	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

// TrainerHandler serves the public trainer directory.
type TrainerHandler struct {
	users ports.UserRepository
}

func NewTrainerHandler(users ports.UserRepository) *TrainerHandler {
	return &TrainerHandler{users: users}
}

// trainerView is the directory listing entry. Email is populated only for
// authenticated callers.
type trainerView struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Specialties []string `json:"specialties,omitempty"`
	Email       string   `json:"email,omitempty"`
}

type trainerListResponse struct {
	Items []trainerView `json:"items"`
	Total int           `json:"total"`
}

// List handles GET /v1/trainers. The route runs behind OptionalAuthenticate:
// anonymous visitors see the public profile, logged-in callers also see
// contact emails.
//
// @Summary      List active trainers
// @Tags         trainers
// @Produce      json
// @Success      200  {object}  trainerListResponse
// @Router       /v1/trainers [get]
func (h *TrainerHandler) List(c echo.Context) error {
	trainers, err := h.users.ListByRole(c.Request().Context(), domain.RoleTrainer)
	if err != nil {
		return err
	}

	authenticated := middleware.Principal(c) != nil

	items := make([]trainerView, 0, len(trainers))
	for _, t := range trainers {
		if !t.IsActive {
			continue
		}
		v := trainerView{
			ID:          t.ID,
			FirstName:   t.FirstName,
			LastName:    t.LastName,
			Specialties: t.Specialties,
		}
		if authenticated {
			v.Email = t.Email
		}
		items = append(items, v)
	}

	return c.JSON(http.StatusOK, trainerListResponse{Items: items, Total: len(items)})
}
