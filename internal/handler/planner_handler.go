package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/project-planner/internal/auth"
	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/internal/service"
)

// GenerationServiceInterface defines the interface for token-metered idea generation.
type GenerationServiceInterface interface {
	Generate(ctx context.Context, userID string, req *model.CreationRequest) ([]model.Idea, error)
	Balance(ctx context.Context, userID string) (int, error)
	Creations(ctx context.Context, userID string) ([]model.Creation, error)
}

// PlannerHandler serves the signed-in user's balance, generation and creations.
type PlannerHandler struct {
	service   GenerationServiceInterface
	validator *validator.Validate
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(svc GenerationServiceInterface, v *validator.Validate) *PlannerHandler {
	return &PlannerHandler{service: svc, validator: v}
}

func formatCreationValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "max" {
			return "invalid request: project name exceeds maximum length of 255"
		}
		return "project name must be at least 2 characters"
	case "ProjectType":
		return "invalid request: appType must be one of Frontend, Backend, FullStack"
	case "Complexity":
		return "invalid request: complexity must be one of Easy, Medium, Hard"
	case "AdditionalTechnologies":
		return "invalid request: additionalTech exceeds maximum length of 500"
	}
	return "invalid request: " + fe.Field() + " is invalid"
}

// GenerateIdeas handles POST /api/generate-ideas.
func (h *PlannerHandler) GenerateIdeas(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrUnauthenticated.Error()})
	}

	var req model.CreationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatCreationValidationError(err)})
	}

	ideas, err := h.service.Generate(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientTokens):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "not enough tokens"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		case errors.Is(err, service.ErrGeneration):
			log.Warn().
				Err(err).
				Str("request_id", requestID(c)).
				Str("user_id", userID).
				Msg("idea generation failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "idea generation failed, please try again"})
		}
		log.Error().
			Err(err).
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", userID).
			Str("project_name", req.Name).
			Msg("failed to generate ideas")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", userID).
		Str("project_name", req.Name).
		Int("idea_count", len(ideas)).
		Msg("ideas generated")

	return c.JSON(model.GenerateIdeasResponse{Ideas: ideas})
}

// Balance handles GET /api/tokens.
func (h *PlannerHandler) Balance(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrUnauthenticated.Error()})
	}

	balance, err := h.service.Balance(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Str("user_id", userID).Msg("failed to read balance")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(model.BalanceResponse{TokenCount: balance})
}

// Creations handles GET and POST /api/creations.
func (h *PlannerHandler) Creations(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrUnauthenticated.Error()})
	}

	creations, err := h.service.Creations(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Str("user_id", userID).Msg("failed to list creations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(model.CreationsResponse{Creations: creations})
}
