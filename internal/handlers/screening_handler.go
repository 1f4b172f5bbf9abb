package handlers

import (
	"encoding/base64"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/services"
)

type ScreeningHandler struct {
	screeningService services.ScreeningService
	validate         *validator.Validate
	logger           *zap.Logger
}

func NewScreeningHandler(screeningService services.ScreeningService, logger *zap.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		screeningService: screeningService,
		validate:         validator.New(),
		logger:           logger,
	}
}

// HandleScreening handles POST /screening
func (h *ScreeningHandler) HandleScreening(c *fiber.Ctx) error {
	var req models.ScreeningRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{
			Detail: "invalid request payload",
		})
	}

	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{
			Detail: validationDetail(err),
		})
	}

	data, err := base64.StdEncoding.DecodeString(*req.FileData)
	if err != nil {
		return h.screeningFailed(c, fmt.Errorf("decode filedata: %w", err))
	}

	result, err := h.screeningService.Screen(c.UserContext(), &services.ScreeningInput{
		Filename: req.Filename,
		FileData: data,
		Role:     req.Role,
	})
	if err != nil {
		return h.screeningFailed(c, err)
	}

	return c.JSON(models.ScreeningResponse{
		Feedback:    result.Feedback,
		RoleMatched: result.RoleMatched,
		Similarity:  result.Similarity,
		Timing: models.Timing{
			ParseTime:      services.RoundSeconds(result.Timing.Parse),
			RetrievalTime:  services.RoundSeconds(result.Timing.Retrieval),
			GenerationTime: services.RoundSeconds(result.Timing.Generation),
			TotalTime:      services.RoundSeconds(result.Timing.Total),
		},
		ScreeningID: result.ID.String(),
	})
}

func (h *ScreeningHandler) screeningFailed(c *fiber.Ctx, err error) error {
	h.logger.Error("screening request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Detail: fmt.Sprintf("screening failed: %v", err),
	})
}

func validationDetail(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", jsonField(fe.Field()))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", jsonField(fe.Field()), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", jsonField(fe.Field()))
	}
}

func jsonField(field string) string {
	switch field {
	case "FileData":
		return "filedata"
	case "Filename":
		return "filename"
	case "Role":
		return "role"
	}
	return field
}
