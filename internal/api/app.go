package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

const accessLogFormat = "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n"

// NewApp builds the fiber application with middleware and routes attached.
func NewApp(handler *Handler, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "Glowlog",
		DisableStartupMessage: true,
		ErrorHandler:          jsonErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: accessLogFormat,
		Output: zap.NewStdLog(log.Named("http")).Writer(),
	}))
	app.Use(compress.New())

	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
