package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/glowlog/internal/models"
	"github.com/terraincognita07/glowlog/internal/services"
)

const (
	contextUserKey   = "current_user"
	contextClaimsKey = "current_claims"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func currentClaims(c *fiber.Ctx) (*services.AccessClaims, bool) {
	claims, ok := c.Locals(contextClaimsKey).(*services.AccessClaims)
	return claims, ok
}

// AuthRequired resolves the bearer token into a user. Users who have not
// finished onboarding may only reach onboarding, logout and /api/me.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, claims, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	c.Locals(contextClaimsKey, claims)
	if !user.OnboardingCompleted && !allowedBeforeOnboarding(c.Path()) {
		return apiError(c, fiber.StatusForbidden, "onboarding required")
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, *services.AccessClaims, error) {
	claims, err := services.ParseAccessToken(handler.secretKey, bearerToken(c), handler.now())
	if err != nil {
		return nil, nil, err
	}

	denied, err := handler.sessions.IsAccessTokenDenied(c.UserContext(), claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if denied {
		return nil, nil, services.ErrAccessTokenInvalid
	}
	cutoff, found, err := handler.sessions.AccessCutoff(c.UserContext(), claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if found && (claims.IssuedAt == nil || claims.IssuedAt.Time.Before(cutoff)) {
		return nil, nil, services.ErrAccessTokenInvalid
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return &user, claims, nil
}

func allowedBeforeOnboarding(path string) bool {
	cleanPath := strings.TrimSuffix(strings.TrimSpace(path), "/")
	switch cleanPath {
	case "/api/auth/logout", "/api/me":
		return true
	}
	return strings.HasPrefix(cleanPath, "/api/onboarding/")
}
