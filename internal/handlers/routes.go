package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-screener/internal/models"
)

type Handlers struct {
	Screening *ScreeningHandler
	Result    *ResultHandler
	Catalog   *CatalogHandler
}

func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Post("/screening", h.Screening.HandleScreening)

	api := app.Group("/api/v1")
	api.Get("/health", h.Catalog.HandleHealth)
	api.Get("/roles", h.Catalog.HandleRoles)
	api.Get("/screenings/:id", h.Result.HandleGetScreening)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /screening",
				"GET /api/v1/health",
				"GET /api/v1/roles",
				"GET /api/v1/screenings/:id",
			},
		})
	})
}

// ErrorHandler renders errors that escape the handlers as {"detail": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Detail: err.Error(),
	})
}
