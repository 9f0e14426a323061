package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util/errorutil"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return apperrors.NewInvalidCredentials()
		}
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	})
}

// Logout handles POST /api/auth/logout. It acknowledges any token, valid or not.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := auth.BearerToken(c)
	if token != "" {
		if err := h.auth.Logout(c.UserContext(), token); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Validate handles GET /api/auth/validate.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	token, _ := auth.BearerToken(c)
	authenticated := token != "" && h.auth.IsAuthenticated(c.UserContext(), token)
	return c.JSON(fiber.Map{"data": dto.ValidateResponse{Authenticated: authenticated}})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return err
	}
	profile, err := h.auth.GetProfile(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return apperrors.NewUnauthorized("invalid token")
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(*profile)})
}

// Register handles POST /api/auth/users. The route is restricted to admins.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	identity, err := h.auth.Register(c.UserContext(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return apperrors.NewConflict("username already registered", map[string]any{"username": req.Username})
		}
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIdentityResponse(identity)})
}
