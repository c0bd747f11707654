package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/services"
)

type ApplicationHandler struct {
	applications services.ApplicationService
}

func NewApplicationHandler(applications services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// HandleApply handles POST /envois
func (h *ApplicationHandler) HandleApply(c *fiber.Ctx) error {
	var req models.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	application, err := h.applications.Apply(c.UserContext(), middleware.CurrentUser(c), req.DocumentID, req.OfferID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.NewApplicationView(application))
}

// HandleBulk handles POST /envois/bulk
func (h *ApplicationHandler) HandleBulk(c *fiber.Ctx) error {
	var req models.BulkApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	offerIDs, err := ParseIDList(req.OfferIDs)
	if err != nil {
		return err
	}

	result, err := h.applications.SubmitBulk(c.UserContext(), middleware.CurrentUser(c), req.DocumentID, offerIDs)
	if err != nil {
		return err
	}

	resp := models.BulkApplyResponse{
		Success:      result.Success(),
		CreatedCount: len(result.Created),
		RefusedCount: len(result.Refused),
		Created:      make([]uint, 0, len(result.Created)),
		Details: models.BulkDetails{
			DocumentID:  result.DocumentID,
			OffersTotal: result.OffersTotal,
		},
		Message: result.Message,
	}
	for _, application := range result.Created {
		resp.Created = append(resp.Created, application.ID)
	}
	for _, item := range result.Refused {
		refused := models.RefusedOffer{
			OfferID:    item.OfferID,
			Errors:     []string{item.Refusal.Message},
			Reason:     string(item.Refusal.Reason),
			RetryAfter: item.Refusal.RetryAfter,
		}
		if item.Offer != nil {
			refused.OfferTitle = item.Offer.Title
			refused.CompanyName = item.Offer.Company.Name
		}
		resp.Refused = append(resp.Refused, refused)
	}

	status := fiber.StatusOK
	if resp.Success {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

// ParseIDList accepts JSON numbers and numeric strings.
func ParseIDList(raw []json.RawMessage) ([]uint, error) {
	ids := make([]uint, 0, len(raw))
	for i, item := range raw {
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, invalidOfferID(i)
		}

		var text string
		switch v := value.(type) {
		case json.Number:
			text = v.String()
		case string:
			text = strings.TrimSpace(v)
		default:
			return nil, invalidOfferID(i)
		}

		id, err := strconv.ParseUint(text, 10, 64)
		if err != nil || id == 0 {
			return nil, invalidOfferID(i)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func invalidOfferID(index int) error {
	return apperror.Validation("invalid bulk payload", map[string]string{
		fmt.Sprintf("offerIds[%d]", index): "must be a positive integer id",
	})
}

// HandleList handles GET /envois
func (h *ApplicationHandler) HandleList(c *fiber.Ctx) error {
	applications, stats, err := h.applications.List(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	views := make([]models.ApplicationView, 0, len(applications))
	for i := range applications {
		views = append(views, models.NewApplicationView(&applications[i]))
	}
	return c.JSON(models.ApplicationListResponse{Applications: views, Stats: stats})
}

func (h *ApplicationHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	application, err := h.applications.Get(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(models.NewApplicationView(application))
}

// HandleSetStatus handles PATCH /envois/:id/statut
func (h *ApplicationHandler) HandleSetStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req models.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	application, err := h.applications.SetStatus(c.UserContext(), middleware.CurrentUser(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(models.NewApplicationView(application))
}

func (h *ApplicationHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.applications.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// applyRateKey scopes the single-apply limit to one offer and one user.
func applyRateKey(c *fiber.Ctx) string {
	user := middleware.CurrentUser(c)
	if user == nil {
		return ""
	}
	var req models.ApplyRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.OfferID == 0 {
		return ""
	}
	return fmt.Sprintf("apply:%d:%d", req.OfferID, user.ID)
}

func bulkRateKey(c *fiber.Ctx) string {
	user := middleware.CurrentUser(c)
	if user == nil {
		return ""
	}
	return fmt.Sprintf("bulk:%d", user.ID)
}
