package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/refresh", handler.Refresh)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	api.Get("/me", handler.AuthRequired, handler.Me)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Post("/change-password", handler.ChangePassword)
	settings.Delete("/account", handler.DeleteAccount)

	onboarding := api.Group("/onboarding", handler.AuthRequired)
	onboarding.Post("/profile", handler.OnboardingProfile)
	onboarding.Post("/concerns", handler.OnboardingConcerns)
	onboarding.Post("/complete", handler.OnboardingComplete)

	api.Get("/dashboard", handler.AuthRequired, handler.Dashboard)

	calendar := api.Group("/calendar", handler.AuthRequired)
	calendar.Get("/monthly", handler.CalendarMonthly)
	calendar.Get("/daily", handler.CalendarDaily)
	calendar.Get("/events/:id/downtime", handler.CalendarEventDowntime)

	procedures := api.Group("/procedures", handler.AuthRequired)
	procedures.Get("", handler.ListProcedures)
	procedures.Get("/search", handler.SearchProcedures)
	procedures.Post("/scheduled", handler.ScheduleProcedure)
	procedures.Get("/scheduled/export", handler.ExportScheduledProcedures)
	procedures.Get("/scheduled/:id", handler.GetScheduledProcedure)
	procedures.Delete("/scheduled/:id", handler.DeleteScheduledProcedure)

	api.Get("/challenges", handler.AuthRequired, handler.ListChallenges)
	api.Post("/challenges/:id/join", handler.AuthRequired, handler.JoinChallenge)

	userChallenges := api.Group("/user-challenges", handler.AuthRequired)
	userChallenges.Get("", handler.ListUserChallenges)
	userChallenges.Post("/:id/check-in", handler.CheckInChallenge)
	userChallenges.Delete("/:id", handler.AbandonChallenge)

	recommendations := api.Group("/recommendations", handler.AuthRequired)
	recommendations.Post("", handler.GenerateRecommendations)
	recommendations.Get("", handler.LatestRecommendations)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
