package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/glowlog/internal/services"
)

func (handler *Handler) ListChallenges(c *fiber.Ctx) error {
	challenges, err := handler.challengeSvc.ListCatalog()
	if err != nil {
		return handler.respondError(c, err, "failed to load challenges")
	}
	return c.JSON(fiber.Map{"challenges": challenges})
}

func (handler *Handler) JoinChallenge(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	challengeID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	now := handler.now()
	participation, err := handler.challengeSvc.Join(user.ID, challengeID, now)
	if err != nil {
		return handler.respondError(c, err, "failed to join challenge")
	}

	progress := services.BuildChallengeProgress(participation, nil, services.StorageDay(now, handler.location))
	return c.Status(fiber.StatusCreated).JSON(newUserChallengeView(services.UserChallengeView{
		Participation: participation,
		Progress:      progress,
	}, handler.location))
}

func (handler *Handler) ListUserChallenges(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	views, err := handler.challengeSvc.ListForUser(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "failed to load challenges")
	}
	return c.JSON(fiber.Map{"user_challenges": newUserChallengeViews(views, handler.location)})
}

func (handler *Handler) CheckInChallenge(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	participationID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	view, err := handler.challengeSvc.CheckIn(user.ID, participationID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "failed to check in")
	}
	return c.JSON(newUserChallengeView(view, handler.location))
}

func (handler *Handler) AbandonChallenge(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	participationID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.challengeSvc.Abandon(user.ID, participationID, handler.now()); err != nil {
		return handler.respondError(c, err, "failed to abandon challenge")
	}
	return c.JSON(fiber.Map{"ok": true})
}
