package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/repositories"
)

type ResultHandler struct {
	screeningRepo repositories.ScreeningRepository
}

func NewResultHandler(screeningRepo repositories.ScreeningRepository) *ResultHandler {
	return &ResultHandler{
		screeningRepo: screeningRepo,
	}
}

// HandleGetScreening handles GET /api/v1/screenings/:id
func (h *ResultHandler) HandleGetScreening(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Detail: "invalid screening ID format",
		})
	}

	screening, err := h.screeningRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
				Detail: "screening not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Detail: "failed to load screening",
		})
	}

	return c.JSON(screening)
}
