package handlers

import (
	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/services"
)

type CompanyHandler struct {
	companies services.CompanyService
}

func NewCompanyHandler(companies services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

func (h *CompanyHandler) HandleGetMine(c *fiber.Ctx) error {
	company, err := h.companies.GetMine(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(company)
}

func (h *CompanyHandler) HandleUpdateMine(c *fiber.Ctx) error {
	var req models.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	company, err := h.companies.UpdateMine(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.JSON(company)
}

// HandleToggle handles POST /companies/me/toggle-recevoir
func (h *CompanyHandler) HandleToggle(c *fiber.Ctx) error {
	company, err := h.companies.ToggleAccepting(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"entrepriseId":         company.ID,
		"recevoirCandidatures": company.AcceptingApplications,
	})
}

func (h *CompanyHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	company, err := h.companies.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(company)
}
