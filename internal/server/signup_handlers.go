package server

import (
	"inkpost/internal/models"
	"inkpost/internal/views"

	"github.com/gofiber/fiber/v2"
)

type signupForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// SignupForm handles GET /signup
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, views.Signup(""))
}

// Signup handles POST /signup. Accounts are not implemented; the form is shown again.
func (s *Server) Signup(c *fiber.Ctx) error {
	var form signupForm
	if err := c.BodyParser(&form); err != nil {
		if wantsJSON(c) {
			return respondError(c, models.NewValidationError("Invalid request body"))
		}
		return render(c, fiber.StatusUnprocessableEntity, views.Signup(""))
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"username":   form.Username,
			"registered": false,
		})
	}
	return render(c, fiber.StatusOK, views.Signup(form.Username))
}
