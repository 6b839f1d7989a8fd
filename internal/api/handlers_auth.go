package api

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/terraincognita07/glowlog/internal/cache"
	"github.com/terraincognita07/glowlog/internal/models"
	"github.com/terraincognita07/glowlog/internal/services"
)

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var request registerRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(request.Email, request.Password, request.ConfirmPassword, handler.now())
	if err != nil {
		return handler.respondError(c, err, "failed to create account")
	}

	session, err := handler.issueSession(c, user)
	if err != nil {
		return handler.respondError(c, err, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var request loginRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, request.Email)
	if wait := handler.loginLimiter.retryAfter(limiterKey, now); wait > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Authenticate(request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.recordFailure(limiterKey, now)
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return handler.respondError(c, err, "failed to authenticate")
	}
	handler.loginLimiter.forget(limiterKey)

	session, err := handler.issueSession(c, user)
	if err != nil {
		return handler.respondError(c, err, "failed to create session")
	}
	return c.JSON(session)
}

// Refresh rotates the refresh token: the presented token is consumed and a
// new pair is issued.
func (handler *Handler) Refresh(c *fiber.Ctx) error {
	var request refreshRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	token := strings.TrimSpace(request.RefreshToken)
	if token == "" {
		return apiError(c, fiber.StatusUnauthorized, "invalid refresh token")
	}

	userID, err := handler.sessions.ConsumeRefreshToken(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return apiError(c, fiber.StatusUnauthorized, "invalid refresh token")
		}
		return handler.respondError(c, err, "failed to refresh session")
	}

	user, err := handler.authService.FindByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return apiError(c, fiber.StatusUnauthorized, "invalid refresh token")
		}
		return handler.respondError(c, err, "failed to refresh session")
	}

	session, err := handler.issueSession(c, user)
	if err != nil {
		return handler.respondError(c, err, "failed to create session")
	}
	return c.JSON(session)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	var request refreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	ctx := c.UserContext()
	if token := strings.TrimSpace(request.RefreshToken); token != "" {
		user, ok := currentUser(c)
		if !ok {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		err := handler.sessions.RevokeUserRefreshToken(ctx, token, user.ID)
		if err != nil && !errors.Is(err, cache.ErrSessionNotOwned) {
			return handler.respondError(c, err, "failed to revoke session")
		}
	}

	if claims, ok := currentClaims(c); ok && claims.ExpiresAt != nil {
		remaining := claims.ExpiresAt.Time.Sub(handler.now())
		if err := handler.sessions.DenyAccessToken(ctx, claims.ID, remaining); err != nil {
			return handler.respondError(c, err, "failed to revoke session")
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) issueSession(c *fiber.Ctx, user models.User) (sessionView, error) {
	accessToken, _, err := services.BuildAccessToken(handler.secretKey, user.ID, handler.accessTokenTTL, handler.now())
	if err != nil {
		return sessionView{}, err
	}
	refreshToken, err := services.GenerateRefreshToken()
	if err != nil {
		return sessionView{}, err
	}
	if err := handler.sessions.SaveRefreshToken(c.UserContext(), refreshToken, user.ID, handler.refreshTokenTTL); err != nil {
		return sessionView{}, err
	}

	handler.logger.Debug("session issued", zap.Uint("user_id", user.ID), zap.String("request_id", requestID(c)))
	return sessionView{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(handler.accessTokenTTL.Seconds()),
		User:         newUserView(user, handler.location),
	}, nil
}
