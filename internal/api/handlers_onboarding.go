package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/glowlog/internal/services"
)

type onboardingProfileRequest struct {
	Nickname  string `json:"nickname"`
	BirthYear int    `json:"birth_year"`
	Gender    string `json:"gender"`
}

type onboardingConcernsRequest struct {
	Concerns []string `json:"concerns"`
}

func (handler *Handler) OnboardingProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request onboardingProfileRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	profile, err := handler.onboardingSvc.SaveProfile(user.ID, services.OnboardingProfileInput{
		Nickname:  request.Nickname,
		BirthYear: request.BirthYear,
		Gender:    request.Gender,
	}, handler.now())
	if err != nil {
		return handler.respondError(c, err, "failed to save profile")
	}
	return c.JSON(fiber.Map{
		"nickname":   profile.Nickname,
		"birth_year": profile.BirthYear,
		"gender":     profile.Gender,
	})
}

func (handler *Handler) OnboardingConcerns(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request onboardingConcernsRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	concerns, err := handler.onboardingSvc.SaveConcerns(user.ID, request.Concerns)
	if err != nil {
		return handler.respondError(c, err, "failed to save concerns")
	}
	return c.JSON(fiber.Map{"concerns": concerns})
}

func (handler *Handler) OnboardingComplete(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := handler.onboardingSvc.Complete(user.ID); err != nil {
		return handler.respondError(c, err, "failed to complete onboarding")
	}
	return c.JSON(fiber.Map{"ok": true})
}
