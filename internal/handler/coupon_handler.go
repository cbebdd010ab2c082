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

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) error
	GetByName(ctx context.Context, name string) (*model.CouponResponse, error)
	Redeem(ctx context.Context, userID, couponName string) (int, error)
}

// CouponHandler handles coupon administration and redemption requests.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// formatValidationError converts validator errors to client-facing messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	tag := fe.Tag()
	switch fe.Field() {
	case "Name":
		switch tag {
		case "required":
			return "invalid request: name is required"
		case "notblank":
			return "invalid request: name cannot be whitespace only"
		case "max":
			return "invalid request: name exceeds maximum length of 255"
		}
		return "invalid request: name is invalid"
	case "Amount", "Credit":
		field := "amount"
		if fe.Field() == "Credit" {
			field = "credit"
		}
		switch tag {
		case "required":
			return "invalid request: " + field + " is required"
		case "gte":
			return "invalid request: " + field + " must be at least 1"
		}
		return "invalid request: " + field + " is invalid"
	case "Code":
		if tag == "max" {
			return "invalid request: coupon code exceeds maximum length of 255"
		}
		return "please enter a coupon code"
	default:
		if tag == "required" {
			return "invalid request: " + fe.Field() + " is required"
		}
		return "invalid request: " + fe.Field() + " is invalid"
	}
}

// CreateCoupon handles POST /api/coupons requests to create a new coupon.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.Create(c.Context(), &req); err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().Err(err).Str("coupon_name", req.Name).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("coupon_name", req.Name).
		Int("amount", *req.Amount).
		Int("credit", *req.Credit).
		Msg("coupon created")

	return c.Status(fiber.StatusCreated).Send(nil)
}

// GetCoupon handles GET /api/coupons/:name requests to retrieve coupon details.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: name is required"})
	}

	coupon, err := h.service.GetByName(c.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "coupon not found"})
		}
		log.Error().Err(err).Str("coupon_name", name).Msg("failed to get coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(coupon)
}

// ApplyCoupon handles POST /api/apply-coupon. The response carries the
// authoritative balance after the credit.
func (h *CouponHandler) ApplyCoupon(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": auth.ErrUnauthenticated.Error()})
	}

	var req model.ApplyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	balance, err := h.service.Redeem(c.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invalid coupon code"})
		case errors.Is(err, service.ErrAlreadyRedeemed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "coupon already redeemed"})
		case errors.Is(err, service.ErrCouponExpired), errors.Is(err, service.ErrCouponExhausted):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "coupon has expired"})
		}
		log.Error().
			Err(err).
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", userID).
			Str("coupon_name", req.Code).
			Msg("failed to apply coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("user_id", userID).
		Str("coupon_name", req.Code).
		Int("token_count", balance).
		Msg("coupon applied")

	return c.JSON(model.ApplyCouponResponse{
		Success:    "Coupon applied successfully",
		TokenCount: balance,
	})
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
