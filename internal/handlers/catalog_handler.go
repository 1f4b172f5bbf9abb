package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/services"
)

type CatalogHandler struct {
	corpus    services.RoleCorpus
	generator services.FeedbackGenerator
}

func NewCatalogHandler(corpus services.RoleCorpus, generator services.FeedbackGenerator) *CatalogHandler {
	return &CatalogHandler{
		corpus:    corpus,
		generator: generator,
	}
}

// HandleRoles handles GET /api/v1/roles
func (h *CatalogHandler) HandleRoles(c *fiber.Ctx) error {
	entries, err := h.corpus.Entries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Detail: err.Error(),
		})
	}

	roles := make([]string, 0, len(entries))
	for _, entry := range entries {
		roles = append(roles, entry.Role)
	}
	return c.JSON(models.RolesResponse{Roles: roles})
}

// HandleHealth handles GET /api/v1/health. The service stays up when the model is unavailable.
func (h *CatalogHandler) HandleHealth(c *fiber.Ctx) error {
	status := "healthy"
	if !h.generator.Available() {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":          status,
		"time":            time.Now(),
		"model_available": h.generator.Available(),
	})
}
