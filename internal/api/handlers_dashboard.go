package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	dashboard, err := handler.dashboardSvc.Build(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "failed to load dashboard")
	}
	return c.JSON(newDashboardView(dashboard, handler.location))
}
