package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/depositdefenders/accounts-service/internal/service"
)

// ContentHandler serves marketing content as JSON.
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler constructs handler.
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{content: contentService}
}

// Landing handles GET /content/landing.
func (h *ContentHandler) Landing(c *fiber.Ctx) error {
	page, err := h.content.LandingPage(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": page})
}

// Pricing handles GET /content/pricing.
func (h *ContentHandler) Pricing(c *fiber.Ctx) error {
	tiers, err := h.content.PricingTiers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tiers})
}
