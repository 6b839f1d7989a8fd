package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GenerateRecommendations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := handler.recommendations.Generate(c.UserContext(), user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "failed to generate recommendations")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"recommendations": newRecommendationViews(items, handler.location),
	})
}

func (handler *Handler) LatestRecommendations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := handler.recommendations.Latest(user.ID)
	if err != nil {
		return handler.respondError(c, err, "failed to load recommendations")
	}
	return c.JSON(fiber.Map{
		"available":       handler.recommendations.Available(),
		"recommendations": newRecommendationViews(items, handler.location),
	})
}
