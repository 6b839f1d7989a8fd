package api

import (
	"github.com/gofiber/fiber/v2"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(newUserView(*user, handler.location))
}

// ChangePassword signs the user out everywhere once the new password is stored.
func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request changePasswordRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := handler.authService.ChangePassword(user.ID, request.CurrentPassword, request.NewPassword, request.ConfirmPassword); err != nil {
		return handler.respondError(c, err, "failed to update password")
	}
	if err := handler.revokeSessions(c, user.ID); err != nil {
		return handler.respondError(c, err, "failed to revoke sessions")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request deleteAccountRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := handler.authService.DeleteAccount(user.ID, request.Password); err != nil {
		return handler.respondError(c, err, "failed to delete account")
	}
	if err := handler.revokeSessions(c, user.ID); err != nil {
		return handler.respondError(c, err, "failed to revoke sessions")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// revokeSessions drops every refresh token of the user, rejects access tokens
// issued to other devices and deny-lists the access token of this request.
func (handler *Handler) revokeSessions(c *fiber.Ctx, userID uint) error {
	ctx := c.UserContext()
	if err := handler.sessions.RevokeAllSessions(ctx, userID); err != nil {
		return err
	}
	if err := handler.sessions.RevokeAccessIssuedBefore(ctx, userID, handler.now(), handler.accessTokenTTL); err != nil {
		return err
	}
	if claims, ok := currentClaims(c); ok && claims.ExpiresAt != nil {
		return handler.sessions.DenyAccessToken(ctx, claims.ID, claims.ExpiresAt.Time.Sub(handler.now()))
	}
	return nil
}
