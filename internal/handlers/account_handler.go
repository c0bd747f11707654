package handlers

import (
	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/services"
)

type AccountHandler struct {
	accounts services.AccountService
}

func NewAccountHandler(accounts services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// HandleRegister handles POST /auth/register
func (h *AccountHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	user, err := h.accounts.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin handles POST /auth/login
func (h *AccountHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	resp, err := h.accounts.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// HandleMe handles GET /me
func (h *AccountHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}
