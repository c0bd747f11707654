package handlers

import (
	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/services"
)

type DocumentHandler struct {
	documents services.DocumentService
	matching  services.MatchingService
}

// NewDocumentHandler accepts a nil matching service when matching is disabled.
func NewDocumentHandler(documents services.DocumentService, matching services.MatchingService) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		matching:  matching,
	}
}

// HandleUpload handles POST /cvs as multipart with fields fichier, nom and type.
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("fichier")
	if err != nil {
		return apperror.Validation("file is required", map[string]string{"fichier": "required"})
	}

	kind := models.DocumentKind(c.FormValue("type", string(models.KindCV)))
	doc, err := h.documents.Upload(c.UserContext(), middleware.CurrentUser(c), c.FormValue("nom"), kind, file)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *DocumentHandler) HandleList(c *fiber.Ctx) error {
	docs, err := h.documents.List(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

func (h *DocumentHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	doc, err := h.documents.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMatches handles GET /cvs/:id/matches?limit=
func (h *DocumentHandler) HandleMatches(c *fiber.Ctx) error {
	if h.matching == nil {
		return apperror.New(apperror.CodeUnavailable, "offer matching is not configured", nil)
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	matches, err := h.matching.SuggestOffers(c.UserContext(), middleware.CurrentUser(c), id, c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"cv_id":   id,
		"matches": matches,
	})
}
