package handlers

import (
	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/services"
)

type OfferHandler struct {
	offers services.OfferService
}

func NewOfferHandler(offers services.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

func offerViews(offers []models.Offer) []models.OfferView {
	views := make([]models.OfferView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, models.OfferView{Offer: offer, CompanyName: offer.Company.Name})
	}
	return views
}

// HandleList handles GET /offres?domaine=&ville=&pays=&q=
func (h *OfferHandler) HandleList(c *fiber.Ctx) error {
	offers, err := h.offers.ListPublic(c.UserContext(), models.OfferFilter{
		Domain:  c.Query("domaine"),
		City:    c.Query("ville"),
		Country: c.Query("pays"),
		Query:   c.Query("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(offerViews(offers))
}

func (h *OfferHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	offer, err := h.offers.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(models.OfferView{Offer: *offer, CompanyName: offer.Company.Name})
}

// HandleListMine handles GET /entreprise/offres
func (h *OfferHandler) HandleListMine(c *fiber.Ctx) error {
	offers, err := h.offers.ListMine(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(offerViews(offers))
}

func (h *OfferHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.OfferRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	offer, err := h.offers.Create(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.OfferView{Offer: *offer, CompanyName: offer.Company.Name})
}

func (h *OfferHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req models.OfferRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	offer, err := h.offers.Update(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(models.OfferView{Offer: *offer, CompanyName: offer.Company.Name})
}

// HandleArchive handles DELETE /offres/:id; offers are archived, never removed.
func (h *OfferHandler) HandleArchive(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	offer, err := h.offers.Archive(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(models.OfferView{Offer: *offer, CompanyName: offer.Company.Name})
}

func (h *OfferHandler) HandleToggle(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	offer, err := h.offers.ToggleAccepting(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"offreId":              offer.ID,
		"recevoirCandidatures": offer.AcceptingApplications,
	})
}
