package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/pkg/authclient"
	apperrors "github.com/spec-kit/auth-service/pkg/util/errorutil"
)

// TokenValidator resolves a bearer token through the auth service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*authclient.Profile, error)
}

// GatewayHandler serves the gateway's user endpoints.
type GatewayHandler struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewGatewayHandler constructs handler.
func NewGatewayHandler(validator TokenValidator, logger *zap.Logger) *GatewayHandler {
	return &GatewayHandler{validator: validator, logger: logger}
}

// CurrentUser handles GET /api/gateway/user/me.
func (h *GatewayHandler) CurrentUser(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return err
	}
	profile, err := h.validator.ValidateToken(c.UserContext(), token)
	if err != nil {
		h.logger.Info("rejected gateway request", zap.Error(err))
		return apperrors.NewUnauthorized("unauthorized")
	}
	return c.JSON(fiber.Map{"data": profile})
}
